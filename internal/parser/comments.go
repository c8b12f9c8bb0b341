package parser

import (
	"regexp"
	"strings"

	"github.com/harrison/doctest/internal/models"
)

// Comment is a documentation comment together with the declaration it documents.
type Comment struct {
	Body  string // Text between the /** and */ markers
	Line  int    // 1-based line of the opening marker
	Owner string // Declaration name, or anonymous_<line> when none follows
}

var (
	// docCommentPattern matches /** ... */ blocks. Nested comments are not supported.
	docCommentPattern = regexp.MustCompile(`(?s)/\*\*(.*?)\*/`)

	// ownerPattern matches the declaration immediately following a comment,
	// skipping visibility and async modifiers. "const enum" is tried before
	// "const" so the enum name is captured.
	ownerPattern = regexp.MustCompile(`^\s*(?:(?:export|default|declare|abstract|async)\s+)*(?:function\s*\*?\s*|(?:const\s+enum|const|let|var|class|interface|type|enum)\s+)([A-Za-z_$][\w$]*)`)
)

// ExtractComments returns every documentation comment in src in source order.
func ExtractComments(src string) []Comment {
	matches := docCommentPattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return nil
	}

	comments := make([]Comment, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		line := strings.Count(src[:start], "\n") + 1

		owner := models.AnonymousName(line)
		if sub := ownerPattern.FindStringSubmatch(src[end:]); len(sub) == 2 {
			owner = sub[1]
		}

		comments = append(comments, Comment{
			Body:  src[m[2]:m[3]],
			Line:  line,
			Owner: owner,
		})
	}

	return comments
}
