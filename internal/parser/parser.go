// Package parser discovers runnable examples in source files.
//
// Extraction is pattern based, not grammar aware: documentation comments are
// located by their /** and */ markers, examples by the @example tag, and the
// owning declaration by a keyword match right after the comment. Known
// limitations follow from that, e.g. a closing fence inside a string literal
// ends the example early.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/doctest/internal/models"
)

// Format represents the kind of file examples are extracted from
type Format int

const (
	// FormatSource represents a script source file with documentation comments
	FormatSource Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) document
	FormatMarkdown
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	default:
		return "source"
	}
}

// DetectFormat detects the file format based on file extension.
// Anything that is not Markdown is scanned for documentation comments.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatSource
	}
}

// Parser turns files into DocExamples.
type Parser struct {
	markdown *MarkdownParser
}

// New creates a Parser.
func New() *Parser {
	return &Parser{markdown: NewMarkdownParser()}
}

// ParseSource extracts the examples of every documentation comment in src.
// Parsing the same text always yields the same examples in the same order.
func (p *Parser) ParseSource(path, src string) []models.DocExample {
	var examples []models.DocExample

	for _, comment := range ExtractComments(src) {
		found := ExtractExamples(comment.Body)
		for i, ex := range found {
			name := comment.Owner
			if len(found) > 1 {
				name = fmt.Sprintf("%s_example%d", comment.Owner, i+1)
			}
			examples = append(examples, models.DocExample{
				OriginFile:     path,
				Line:           comment.Line,
				Name:           name,
				Code:           ex.Code,
				ExpectedOutput: ex.ExpectedOutput,
			})
		}
	}

	return examples
}

// ParseFile reads path and extracts its examples.
func (p *Parser) ParseFile(path string) ([]models.DocExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.DiscoveryError{File: path, Err: err}
	}

	if DetectFormat(path) == FormatMarkdown {
		return p.markdown.Parse(path, data), nil
	}
	return p.ParseSource(path, string(data)), nil
}

// ParseFiles parses every path in order. Files that cannot be read are
// collected as DiscoveryErrors and the remaining files are still parsed.
func (p *Parser) ParseFiles(paths []string) ([]models.DocExample, []*models.DiscoveryError) {
	var (
		examples []models.DocExample
		errs     []*models.DiscoveryError
	)

	for _, path := range paths {
		found, err := p.ParseFile(path)
		if err != nil {
			var de *models.DiscoveryError
			if errors.As(err, &de) {
				errs = append(errs, de)
			} else {
				errs = append(errs, &models.DiscoveryError{File: path, Err: err})
			}
			continue
		}
		examples = append(examples, found...)
	}

	return examples, errs
}
