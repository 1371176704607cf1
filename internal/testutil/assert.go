package testutil

import (
	"os"
	"path/filepath"
	"strings"
)

// AssertFileExists fails the test if the file does not exist.
func (c *TestCorpus) AssertFileExists(relPath string) {
	c.t.Helper()
	if _, err := os.Stat(filepath.Join(c.Root, relPath)); os.IsNotExist(err) {
		c.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (c *TestCorpus) AssertFileNotExists(relPath string) {
	c.t.Helper()
	if _, err := os.Stat(filepath.Join(c.Root, relPath)); err == nil {
		c.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (c *TestCorpus) AssertFileContains(relPath, substr string) {
	c.t.Helper()
	content := c.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		c.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertDirExists fails the test if the directory does not exist.
func (c *TestCorpus) AssertDirExists(relPath string) {
	c.t.Helper()
	info, err := os.Stat(filepath.Join(c.Root, relPath))
	if os.IsNotExist(err) {
		c.t.Errorf("expected directory to exist: %s", relPath)
		return
	}
	if err == nil && !info.IsDir() {
		c.t.Errorf("expected %s to be a directory, but it's a file", relPath)
	}
}
