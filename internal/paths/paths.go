// Package paths centralizes the filesystem path checks shared by the
// scanner and the layout linter.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot reports a path that escapes the corpus root.
var ErrOutsideRoot = errors.New("path is outside the corpus root")

// EnsureWithin verifies that path stays inside root after cleaning. Walks
// use it to skip symlinked strays instead of following them out of the
// corpus.
func EnsureWithin(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return nil
}

// Rel returns path relative to root when possible, otherwise the path
// unchanged. Display helper for reports and rendered pages.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
