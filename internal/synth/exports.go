package synth

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	// declaredExportPattern matches "export [async] <keyword> Name".
	// "const enum" is tried before "const" so the enum name is captured.
	declaredExportPattern = regexp.MustCompile(`(?m)^\s*export\s+(?:declare\s+)?(?:async\s+)?(?:abstract\s+)?(?:function\s*\*?\s*|(?:const\s+enum|const|let|var|class|interface|type|enum)\s+)([A-Za-z_$][\w$]*)`)

	// namedExportPattern matches "export { a, b as c }" lists, including
	// "export type { ... }" and re-exports with a from clause.
	namedExportPattern = regexp.MustCompile(`(?m)^\s*export\s+(?:type\s+)?\{([^}]*)\}`)

	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

// reservedWords cannot appear as binding names in a destructuring
// declaration, so exports captured under these names are dropped.
var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// IsBindable reports whether name can be declared as a local binding.
func IsBindable(name string) bool {
	return identifierPattern.MatchString(name) && !reservedWords[name]
}

// ResolveExports returns the names exported by the file at path, in order of
// first occurrence. An unreadable file yields no names and the read error,
// which callers log when export injection is skipped.
func ResolveExports(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseExports(string(data)), nil
}

// ParseExports scans source text for declaration-level exports and named
// export lists. For "a as b" entries the local name a is taken; wildcard
// re-exports and default exports contribute nothing.
func ParseExports(src string) []string {
	type hit struct {
		offset int
		name   string
	}
	var hits []hit

	for _, m := range declaredExportPattern.FindAllStringSubmatchIndex(src, -1) {
		hits = append(hits, hit{offset: m[2], name: src[m[2]:m[3]]})
	}

	for _, m := range namedExportPattern.FindAllStringSubmatchIndex(src, -1) {
		offset := m[2]
		for _, entry := range strings.Split(src[m[2]:m[3]], ",") {
			name := exportEntryName(entry)
			if name != "" {
				hits = append(hits, hit{offset: offset, name: name})
			}
			offset += len(entry) + 1
		}
	}

	// Restore source order across both patterns.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].offset < hits[j].offset
	})

	seen := make(map[string]bool)
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.name] || !IsBindable(h.name) {
			continue
		}
		seen[h.name] = true
		names = append(names, h.name)
	}
	return names
}

// exportEntryName returns the pre-alias name of one entry of an export list.
func exportEntryName(entry string) string {
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return ""
	}
	if fields[0] == "type" && len(fields) > 1 {
		fields = fields[1:]
	}
	name := fields[0]
	if name == "default" || !identifierPattern.MatchString(name) {
		return ""
	}
	return name
}
