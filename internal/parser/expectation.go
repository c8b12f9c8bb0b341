package parser

import (
	"regexp"
	"strings"
)

// outputAnnotation matches the trailing "// => value", "// → value" and
// "// output: value" forms. The "//" must start the line or follow
// whitespace, so URLs such as "http://host" are not comments. A " // =>"
// inside a string literal still matches; lines are not tokenized.
var outputAnnotation = regexp.MustCompile(`(?:^|\s)//\s*(?:=>|→|(?i:output)\s*:)\s*(\S.*?)\s*$`)

// AnnotateExpectation returns the value of the first output annotation in
// code, or "" when there is none. The code itself is never modified.
func AnnotateExpectation(code string) string {
	for _, line := range strings.Split(code, "\n") {
		if m := outputAnnotation.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
