package models

import "fmt"

// DocExample is one runnable example extracted from a documentation comment.
// Values are created once by the parser and never modified afterwards.
type DocExample struct {
	OriginFile     string // Source file the example was found in
	Line           int    // 1-based line of the owning documentation comment
	Name           string // Owner declaration name, anonymous_<line>, or <name>_exampleN
	Code           string // Cleaned example body, imports included
	ExpectedOutput string // Value of the first "// =>" style annotation (advisory only)
	Language       string // "ts" or "js" for Markdown fences; empty when taken from the origin extension
}

// Key returns the file:line pair used to tell examples apart in reports.
func (e DocExample) Key() string {
	return fmt.Sprintf("%s:%d", e.OriginFile, e.Line)
}

// HasExpectation returns true if an output annotation was found in the code.
func (e DocExample) HasExpectation() bool {
	return e.ExpectedOutput != ""
}

// AnonymousName returns the fallback name for a comment with no owner declaration.
func AnonymousName(line int) string {
	return fmt.Sprintf("anonymous_%d", line)
}

// DiscoveryError records a source file that could not be read or parsed.
// It is reported as a diagnostic and never stops the run.
type DiscoveryError struct {
	File string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
