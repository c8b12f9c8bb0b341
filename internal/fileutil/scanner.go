package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DeclarationSuffix marks TypeScript declaration files, which never carry
// runnable code.
const DeclarationSuffix = ".d.ts"

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Extensions is a list of file extensions to include (e.g., ".ts", ".js")
	Extensions []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to exclude (e.g., "node_modules")
	ExcludeDirs []string
	// SkipSuffixes drops files whose name ends with any of these (case-insensitive)
	SkipSuffixes []string
}

// DefaultScanOptions returns recursive scanning over extensions that skips
// declaration files.
func DefaultScanOptions(extensions, excludeDirs []string) ScanOptions {
	return ScanOptions{
		Extensions:   extensions,
		Recursive:    true,
		ExcludeDirs:  excludeDirs,
		SkipSuffixes: []string{DeclarationSuffix},
	}
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the absolute paths of all matched files
	Files []string
	// Errors contains any errors encountered during scanning
	Errors []error
}

type matcher struct {
	extensions map[string]bool
	excluded   map[string]bool
	skip       []string
}

func newMatcher(opts ScanOptions) *matcher {
	m := &matcher{
		extensions: make(map[string]bool),
		excluded:   make(map[string]bool),
	}
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range opts.ExcludeDirs {
		m.excluded[dir] = true
	}
	for _, suffix := range opts.SkipSuffixes {
		m.skip = append(m.skip, strings.ToLower(suffix))
	}
	return m
}

func (m *matcher) skipDir(name string) bool {
	return m.excluded[name] || strings.HasPrefix(name, ".")
}

func (m *matcher) matchFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range m.skip {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	if len(m.extensions) == 0 {
		return true
	}
	return m.extensions[filepath.Ext(lower)]
}

// ScanDirectory scans a directory for files matching the provided options
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}
	m := newMatcher(opts)

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		if path == dir {
			return nil
		}

		if d.IsDir() {
			if m.skipDir(d.Name()) || !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if !m.matchFile(d.Name()) {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}

		result.Files = append(result.Files, absPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)

	return result, nil
}

// Discover expands paths into the files to read. Explicit file arguments are
// kept regardless of extension; directories are scanned with opts. Paths
// that cannot be accessed are reported in Errors.
func Discover(paths []string, opts ScanOptions) *ScanResult {
	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}
	seen := make(map[string]bool)
	add := func(file string) {
		if !seen[file] {
			seen[file] = true
			result.Files = append(result.Files, file)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to access %s: %w", path, err))
			continue
		}

		if !info.IsDir() {
			absPath, err := filepath.Abs(path)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
				continue
			}
			add(absPath)
			continue
		}

		scanned, err := ScanDirectory(path, opts)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		for _, file := range scanned.Files {
			add(file)
		}
		result.Errors = append(result.Errors, scanned.Errors...)
	}

	sort.Strings(result.Files)
	return result
}
