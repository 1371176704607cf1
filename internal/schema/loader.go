package schema

import (
	"fmt"
	"os"
)

// LoadFile reads and parses a YAML document from path. Callers decide
// whether a missing or unreadable file is a violation or a fatal error.
func LoadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	v, err := FromYAML(data)
	if err != nil {
		return Null(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}
