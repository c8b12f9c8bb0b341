// Package synth turns extracted examples into standalone programs.
//
// A synthesized unit has a fixed layout:
//
//	import * as __doctest_module from "/abs/path/origin.ts";   // origin namespace
//	import { helper } from "/abs/path/helper.ts";               // user imports, resolved
//	const { add, multiply } = __doctest_module;                 // origin exports
//	function assert(condition, message) { ... }                 // assertion prelude
//	function assertEqual(actual, expected, message) { ... }
//	async function __doctest_main() { <example body> }
//	__doctest_main().catch(...)                                 // non-zero exit on error
//
// Every step is a pure text transform so each can be tested on its own.
package synth

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/doctest/internal/models"
)

const (
	// NamespaceName is the private binding for the origin module namespace.
	NamespaceName = "__doctest_module"
	// MainName is the async routine wrapping the example body.
	MainName = "__doctest_main"
)

// Unit is a synthesized program ready to be written to disk and executed.
type Unit struct {
	Source string // Complete program text
	Ext    string // File extension the artifact must carry, e.g. ".ts"

	// ExportError is set when the origin's exports could not be resolved
	// and export injection was skipped.
	ExportError error
}

// ExportResolver returns the names exported by a source file.
type ExportResolver func(path string) ([]string, error)

// Synthesizer builds Units from DocExamples.
type Synthesizer struct {
	resolveExports ExportResolver
}

// NewSynthesizer creates a Synthesizer that reads exports from disk.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{resolveExports: ResolveExports}
}

// NewSynthesizerWithResolver creates a Synthesizer with a custom export resolver.
func NewSynthesizerWithResolver(resolve ExportResolver) *Synthesizer {
	return &Synthesizer{resolveExports: resolve}
}

// Synthesize produces the standalone program for ex. A failure to resolve
// exports is not an error: the unit is still produced without them.
func (s *Synthesizer) Synthesize(ex models.DocExample) (*Unit, error) {
	origin, err := filepath.Abs(ex.OriginFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve origin %s: %w", ex.OriginFile, err)
	}
	dir := filepath.Dir(origin)

	imports, body := SplitImports(ex.Code)
	for i, stmt := range imports {
		imports[i] = ResolveImport(stmt, dir)
	}

	unit := &Unit{Ext: unitExtension(origin, ex.Language)}

	var namespace string
	var exports []string
	if !isMarkdown(origin) {
		namespace = ModuleSpecifier(origin)
		exports, unit.ExportError = s.resolveExports(origin)
	}

	var sb strings.Builder
	sb.WriteString(Prelude(namespace, imports, exports))
	sb.WriteString(WrapBody(body))
	unit.Source = sb.String()

	return unit, nil
}

// Prelude renders everything that precedes the wrapped body: the namespace
// import, the user imports, the export destructuring and the assertion
// helpers. Exports and helpers already bound by a user import are left out.
func Prelude(namespace string, imports []string, exports []string) string {
	imported := make(map[string]bool)
	for _, stmt := range imports {
		for _, name := range ImportedNames(stmt) {
			imported[name] = true
		}
	}

	var sb strings.Builder

	if namespace != "" {
		fmt.Fprintf(&sb, "import * as %s from %q;\n", NamespaceName, namespace)
	}
	for _, stmt := range imports {
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}

	var bindings []string
	for _, name := range exports {
		if !imported[name] && IsBindable(name) {
			bindings = append(bindings, name)
		}
	}
	if namespace != "" && len(bindings) > 0 {
		fmt.Fprintf(&sb, "const { %s } = %s;\n", strings.Join(bindings, ", "), NamespaceName)
	}

	sb.WriteString("\n")
	if !imported["assert"] {
		sb.WriteString(assertSource)
	}
	sb.WriteString(formatSource)
	if !imported["assertEqual"] {
		sb.WriteString(assertEqualSource)
	}

	return sb.String()
}

// WrapBody places body inside an async routine that is invoked immediately.
// Any error escaping the routine is printed and exits the process with 1.
func WrapBody(body string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "async function %s() {\n", MainName)
	if body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")
	fmt.Fprintf(&sb, "%s().catch((error) => {\n", MainName)
	sb.WriteString("  console.error(error);\n")
	sb.WriteString("  process.exit(1);\n")
	sb.WriteString("});\n")
	return sb.String()
}

const assertSource = `function assert(condition, message) {
  if (!condition) {
    throw new Error(message || "Assertion failed");
  }
}

`

const formatSource = `function __doctest_format(value) {
  try {
    const json = JSON.stringify(value);
    return json === undefined ? String(value) : json;
  } catch {
    return String(value);
  }
}

`

const assertEqualSource = `function assertEqual(actual, expected, message) {
  if (actual !== expected) {
    throw new Error(message || "Expected " + __doctest_format(expected) + " but got " + __doctest_format(actual));
  }
}

`

// ModuleSpecifier returns the import specifier for an absolute file path.
// Separators are normalized to "/"; paths with a volume name become file URLs.
func ModuleSpecifier(abs string) string {
	slashed := filepath.ToSlash(abs)
	if filepath.VolumeName(abs) != "" {
		return "file:///" + strings.TrimPrefix(slashed, "/")
	}
	return slashed
}

// unitExtension picks the artifact extension from the origin file so the
// interpreter applies the same syntax rules to the unit. Markdown origins
// follow the fence language instead.
func unitExtension(origin, language string) string {
	if isMarkdown(origin) {
		if language == "ts" {
			return ".ts"
		}
		return ".mjs"
	}
	switch strings.ToLower(filepath.Ext(origin)) {
	case ".ts", ".mts", ".cts":
		return ".ts"
	case ".tsx":
		return ".tsx"
	case ".jsx":
		return ".jsx"
	default:
		return ".mjs"
	}
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
