package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ProjectRoot walks up from this source file until it finds the module
// root, identified by a go.mod sitting next to the ocrval command tree.
// Integration tests use it to build the binary and locate feature files
// no matter which package directory the test runs from.
func ProjectRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("caller information unavailable")
	}
	for dir := filepath.Dir(file); ; dir = filepath.Dir(dir) {
		if FileExists(filepath.Join(dir, "go.mod")) {
			if !FileExists(filepath.Join(dir, "cmd", "ocrval")) {
				return "", fmt.Errorf("%s has a go.mod but no cmd/ocrval, wrong module root", dir)
			}
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("no go.mod above %s", filepath.Dir(file))
		}
	}
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}

// FileExists reports whether path exists, file or directory alike.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
