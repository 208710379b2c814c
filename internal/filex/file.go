// Package filex contains helpers for writing client artifacts to disk.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (and parents) if needed and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// WriteFile stores data as name inside dir, creating dir when missing.
// name is reduced to its base element so a server-supplied file name cannot
// escape dir. The full path of the written file is returned.
func WriteFile(dir, name string, data []byte) (string, error) {
	base := SafeName(name)
	if base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	abs, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(abs, base)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// SafeName strips directory components and quoting from name.
func SafeName(name string) string {
	name = strings.Trim(strings.TrimSpace(name), `"`)
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(name)
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return base
}
