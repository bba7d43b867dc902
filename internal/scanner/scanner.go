package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner collects the files under a directory tree for attaching
type Scanner struct {
	rootPath string
}

// NewScanner creates a new scanner for the given root path
func NewScanner(rootPath string) *Scanner {
	return &Scanner{
		rootPath: rootPath,
	}
}

// GetRootPath returns the root path for resolving relative paths
func (s *Scanner) GetRootPath() string {
	return s.rootPath
}

// Scan recursively collects regular files and returns paths relative to the
// root. Hidden files and directories (dot-prefixed) are skipped.
func (s *Scanner) Scan() ([]string, error) {
	var files []string

	// Get absolute path of root for reliable relative path calculation
	absRoot, err := filepath.Abs(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute root path: %w", err)
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}

		// Skip hidden directories entirely, but never the root itself
		if info.IsDir() {
			if path != absRoot && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip hidden files and anything that is not a regular file
		if strings.HasPrefix(info.Name(), ".") || !info.Mode().IsRegular() {
			return nil
		}

		// Store relative path from root for portability
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		// Normalize to forward slashes for cross-platform compatibility
		relPath = filepath.ToSlash(relPath)
		files = append(files, relPath)

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	return files, nil
}

// ScanWithCallback scans for files and calls the callback for each file found
func (s *Scanner) ScanWithCallback(callback func(path string, index, total int) error) error {
	// First, get all files
	files, err := s.Scan()
	if err != nil {
		return err
	}

	total := len(files)

	// Process each file
	for i, file := range files {
		if err := callback(file, i+1, total); err != nil {
			return fmt.Errorf("callback error for file %s: %w", file, err)
		}
	}

	return nil
}
