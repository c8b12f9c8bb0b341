package synth

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// importStartPattern matches a static import statement. Dynamic import()
	// calls and import.meta are expressions and stay in the body.
	importStartPattern = regexp.MustCompile(`^\s*import(?:\s|\{|\*|['"])`)

	// moduleSpecifierPattern matches the module specifier that ends a static
	// import, either after "from" or directly after "import".
	moduleSpecifierPattern = regexp.MustCompile(`(\bfrom\s*|^\s*import\s*)(['"])([^'"\n]+)(['"])`)

	importClausePattern = regexp.MustCompile(`(?s)^\s*import\s+(?:type\s+)?(.*?)\s*\bfrom\s*['"]`)

	// importEqualsPattern matches the TypeScript form `import fs = require("fs")`,
	// which always fits on one line.
	importEqualsPattern = regexp.MustCompile(`^\s*import\s+(?:type\s+)?([A-Za-z_$][\w$]*)\s*=`)

	requireSpecifierPattern = regexp.MustCompile(`(\brequire\(\s*)(['"])([^'"\n]+)(['"])`)
)

// SplitImports separates import statements from the rest of the code,
// preserving order within each group. Statements spanning several lines are
// kept together.
func SplitImports(code string) (imports []string, body string) {
	lines := strings.Split(code, "\n")
	var rest []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !importStartPattern.MatchString(line) {
			rest = append(rest, line)
			continue
		}

		if importEqualsPattern.MatchString(line) {
			imports = append(imports, line)
			continue
		}

		stmt := []string{line}
		for !importComplete(stmt) && i+1 < len(lines) {
			i++
			stmt = append(stmt, lines[i])
		}
		imports = append(imports, strings.Join(stmt, "\n"))
	}

	return imports, trimBlankLines(rest)
}

// importComplete reports whether the collected lines form a whole statement:
// the module specifier was seen or the last line is terminated by ";".
func importComplete(stmt []string) bool {
	if strings.HasSuffix(strings.TrimSpace(stmt[len(stmt)-1]), ";") {
		return true
	}
	return moduleSpecifierPattern.MatchString(strings.Join(stmt, "\n"))
}

// ResolveImport rewrites a relative module specifier ("./x", "../x") in stmt
// to an absolute one anchored at dir. Package specifiers are left alone.
func ResolveImport(stmt string, dir string) string {
	pattern := moduleSpecifierPattern
	if importEqualsPattern.MatchString(stmt) {
		pattern = requireSpecifierPattern
	}
	return pattern.ReplaceAllStringFunc(stmt, func(match string) string {
		m := pattern.FindStringSubmatch(match)
		specifier := m[3]
		if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
			return match
		}
		abs := filepath.Join(dir, filepath.FromSlash(specifier))
		return m[1] + m[2] + ModuleSpecifier(abs) + m[4]
	})
}

// ImportedNames returns the local names bound by an import statement.
func ImportedNames(stmt string) []string {
	if m := importEqualsPattern.FindStringSubmatch(stmt); m != nil {
		return []string{m[1]}
	}
	m := importClausePattern.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}
	clause := m[1]

	var names []string
	if open := strings.Index(clause, "{"); open >= 0 {
		if end := strings.Index(clause[open:], "}"); end >= 0 {
			for _, entry := range strings.Split(clause[open+1:open+end], ",") {
				fields := strings.Fields(entry)
				if len(fields) == 0 {
					continue
				}
				names = append(names, fields[len(fields)-1])
			}
			clause = clause[:open] + clause[open+end+1:]
		}
	}

	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(part)
		switch {
		case len(fields) == 1:
			names = append(names, fields[0])
		case len(fields) == 3 && fields[0] == "*" && fields[1] == "as":
			names = append(names, fields[2])
		}
	}

	return names
}

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
