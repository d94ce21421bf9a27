package support

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TestContext holds the state shared by the CLI integration steps.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir string
	TempDir    string
	EnvVars    []string

	// Dataset layout of the running scenario. DataDir and OutputDir live
	// under TempDir; Language is set by the dataset steps.
	DataDir   string
	OutputDir string
	Language  string

	// In-process HTTP server state
	TestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
}

// NewTestContext prepares a scenario context with its own temp directory.
// Commands run from the project root regardless of where the test binary
// was started.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	for dir := workingDir; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			workingDir = dir
			break
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	tempDir, err := os.MkdirTemp("", "ocrval-test-*")
	if err != nil {
		return nil, fmt.Errorf("creating scenario temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: workingDir,
		TempDir:    tempDir,
		EnvVars:    []string{},
		DataDir:    filepath.Join(tempDir, "data"),
		OutputDir:  filepath.Join(tempDir, "output"),
	}, nil
}

// Cleanup stops any running server and removes the scenario's temp files.
func (tc *TestContext) Cleanup() error {
	var errs []error

	if tc.TestServer != nil {
		if err := tc.stopTestHTTPServer(); err != nil {
			errs = append(errs, fmt.Errorf("stopping test server: %w", err))
		}
	}

	if err := os.RemoveAll(tc.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("removing %s: %w", tc.TempDir, err))
	}

	return errors.Join(errs...)
}

// AddEnvVar adds an environment variable for command execution.
func (tc *TestContext) AddEnvVar(name, value string) {
	tc.EnvVars = append(tc.EnvVars, fmt.Sprintf("%s=%s", name, value))
}
