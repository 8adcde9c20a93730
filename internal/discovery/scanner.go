package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs map[string]bool
	patterns []string
}

// NewScanner creates a new Scanner with the given directories to skip and
// the file name patterns that identify test files.
func NewScanner(skipDirs, patterns []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, patterns: patterns}
}

// Scan finds all test files in the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path == root {
				return nil
			}
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") && name != "." && name != ".." {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if s.IsTestFile(d.Name()) {
			testfiles = append(testfiles, path)
		}
		return nil
	})

	return testfiles, err
}

// IsTestFile reports whether a file name matches one of the test patterns.
func (s *Scanner) IsTestFile(name string) bool {
	for _, pattern := range s.patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// Expand resolves inputs into test files. An input naming an existing file
// is used as is, an existing directory is scanned, and anything else is
// tried as a glob. Inputs matching nothing are returned as lost. Both lists
// keep input order and contain no duplicates.
func (s *Scanner) Expand(inputs []string) (found, lost []string, err error) {
	seen := make(map[string]bool)
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			found = append(found, path)
		}
	}
	addPath := func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			add(path)
			return nil
		}
		files, err := s.Scan(path)
		if err != nil {
			return err
		}
		for _, file := range files {
			add(file)
		}
		return nil
	}

	lostSeen := make(map[string]bool)
	for _, input := range inputs {
		if info, statErr := os.Stat(input); statErr == nil {
			if err := addPath(input, info); err != nil {
				return nil, nil, err
			}
			continue
		}

		matches, globErr := filepath.Glob(input)
		if globErr != nil {
			return nil, nil, fmt.Errorf("invalid pattern %q: %w", input, globErr)
		}
		if len(matches) == 0 {
			if !lostSeen[input] {
				lostSeen[input] = true
				lost = append(lost, input)
			}
			continue
		}
		for _, match := range matches {
			info, statErr := os.Stat(match)
			if statErr != nil {
				continue
			}
			if err := addPath(match, info); err != nil {
				return nil, nil, err
			}
		}
	}

	return found, lost, nil
}
