package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/doctest/internal/models"
)

// exampleLanguages maps the fence languages that can carry runnable
// examples to the language recorded on the example.
var exampleLanguages = map[string]string{
	"js":         "js",
	"javascript": "js",
	"mjs":        "js",
	"ts":         "ts",
	"typescript": "ts",
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// MarkdownParser extracts examples from fenced code blocks in Markdown documents.
// Only blocks whose info string names a script language and carries an
// "example" or "doctest" word are treated as examples:
//
//	```ts example
//	assertEqual(1 + 1, 2)
//	```
type MarkdownParser struct {
	markdown goldmark.Markdown
}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// Parse returns the examples found in source, named after the closest
// preceding heading.
func (p *MarkdownParser) Parse(path string, source []byte) []models.DocExample {
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	var (
		examples []models.DocExample
		counts   = make(map[string]int)
		heading  string
	)

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			heading = slugify(extractText(node, source))
		case *ast.FencedCodeBlock:
			info := fenceInfo(node, source)
			if !isExampleFence(info) {
				return ast.WalkSkipChildren, nil
			}
			lines := node.Lines()
			if lines.Len() == 0 {
				return ast.WalkSkipChildren, nil
			}

			var buf bytes.Buffer
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(source))
			}
			code := trimBlankLines(strings.Split(strings.ReplaceAll(buf.String(), "\r\n", "\n"), "\n"))
			if code == "" {
				return ast.WalkSkipChildren, nil
			}

			// The fence sits on the line before the first content line.
			line := bytes.Count(source[:lines.At(0).Start], []byte("\n"))
			name := heading
			if name == "" {
				name = models.AnonymousName(line)
			}
			counts[name]++

			examples = append(examples, models.DocExample{
				OriginFile:     path,
				Line:           line,
				Name:           name,
				Code:           code,
				ExpectedOutput: AnnotateExpectation(code),
				Language:       fenceLanguage(info),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	// Number examples that share a heading so names stay unique in the file.
	seen := make(map[string]int)
	for i := range examples {
		name := examples[i].Name
		if counts[name] > 1 {
			seen[name]++
			examples[i].Name = fmt.Sprintf("%s_example%d", name, seen[name])
		}
	}

	return examples
}

func fenceInfo(node *ast.FencedCodeBlock, source []byte) string {
	if node.Info == nil {
		return ""
	}
	return string(node.Info.Segment.Value(source))
}

// isExampleFence reports whether a fence info string such as "ts example"
// marks a runnable example.
func isExampleFence(info string) bool {
	fields := strings.Fields(strings.ToLower(info))
	if len(fields) < 2 || exampleLanguages[fields[0]] == "" {
		return false
	}
	for _, f := range fields[1:] {
		if f == "example" || f == "doctest" {
			return true
		}
	}
	return false
}

func fenceLanguage(info string) string {
	fields := strings.Fields(strings.ToLower(info))
	if len(fields) == 0 {
		return ""
	}
	return exampleLanguages[fields[0]]
}

func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.WriteString(extractText(c, source))
	}
	return buf.String()
}

func slugify(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "_"), "_")
}
