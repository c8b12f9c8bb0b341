package parser

import (
	"regexp"
	"strings"
)

// Example is a single example section extracted from a comment body.
type Example struct {
	Code           string
	ExpectedOutput string
}

var (
	// fencedExamplePattern matches an @example tag (with an optional caption)
	// followed by a fenced code block. The fence info string is ignored.
	fencedExamplePattern = regexp.MustCompile("(?s)@example[^\\n`]*[\\s*]*```[^\\n]*\\n(.*?)```")

	// indentedExamplePattern matches an @example tag followed by continuation
	// lines indented by at least two spaces (or a tab) after the asterisk.
	indentedExamplePattern = regexp.MustCompile(`@example[^\n]*\n((?:[ \t]*\*(?: {2,}|\t)[^\n]*(?:\n|$))+)`)

	continuationMarker = regexp.MustCompile(`^\s*\* ?`)
)

// ExtractExamples returns the examples of a comment body in occurrence order.
// Fenced blocks are preferred; indented blocks are only considered when the
// comment has no fenced example at all.
func ExtractExamples(body string) []Example {
	var examples []Example

	for _, m := range fencedExamplePattern.FindAllStringSubmatch(body, -1) {
		code := CleanCode(m[1])
		examples = append(examples, Example{
			Code:           code,
			ExpectedOutput: AnnotateExpectation(code),
		})
	}
	if len(examples) > 0 {
		return examples
	}

	for _, m := range indentedExamplePattern.FindAllStringSubmatch(body, -1) {
		code := dedent(CleanCode(m[1]))
		if strings.TrimSpace(code) == "" {
			continue
		}
		examples = append(examples, Example{
			Code:           code,
			ExpectedOutput: AnnotateExpectation(code),
		})
	}

	return examples
}

// CleanCode removes one leading comment-continuation marker from every line
// and trims blank lines from both ends of the block.
func CleanCode(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		lines[i] = continuationMarker.ReplaceAllString(line, "")
	}
	return trimBlankLines(lines)
}

// trimBlankLines joins lines after dropping whitespace-only lines at either end.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// dedent removes the indentation shared by every non-blank line.
func dedent(code string) string {
	lines := strings.Split(code, "\n")

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return code
	}

	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
