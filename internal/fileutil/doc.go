// Package fileutil finds the source files doctest reads examples from.
//
// Discover expands the command-line paths: a file is taken as-is, a
// directory is walked with ScanDirectory. Walking filters by extension
// (case-insensitive), skips hidden directories and the configured
// ExcludeDirs, and drops files matching SkipSuffixes (declaration files
// such as "x.d.ts" by default).
//
// Results are absolute, sorted and deduplicated. Problems that only affect
// part of the tree (an unreadable subdirectory, a missing path argument) are
// collected in ScanResult.Errors and never stop the scan.
//
//	result, err := fileutil.Discover([]string{"src", "README.md"}, fileutil.ScanOptions{
//	    Extensions:  []string{".ts", ".js"},
//	    Recursive:   true,
//	    ExcludeDirs: []string{"node_modules"},
//	})
package fileutil
