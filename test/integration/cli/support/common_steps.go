package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// commandTimeout bounds a single CLI invocation. Validation over the small
// scenario datasets finishes well inside it even with real recognition.
const commandTimeout = 30 * time.Second

// iRunCommand executes a CLI invocation and records its outcome.
func (tc *TestContext) iRunCommand(command string) error {
	command = tc.substituteVariables(command)
	tc.LastCommand = command
	tc.LastStartTime = time.Now()

	argv := strings.Fields(command)
	if len(argv) == 0 {
		return errors.New("blank command in scenario")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = tc.WorkingDir
	cmd.Env = append(os.Environ(), tc.EnvVars...)

	out, err := cmd.CombinedOutput()
	tc.LastOutput = string(out)
	tc.LastError = err
	tc.LastDuration = time.Since(tc.LastStartTime)
	tc.LastExitCode = exitCodeOf(err)
	return nil
}

// exitCodeOf maps a CombinedOutput error to an exit code: 0 on success,
// the process code on clean exits, -1 when the process never ran.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	exitErr := &exec.ExitError{}
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// substituteVariables replaces the {data}, {output} and {tmp} placeholders
// with the scenario's directories.
func (tc *TestContext) substituteVariables(s string) string {
	s = strings.ReplaceAll(s, "{data}", tc.DataDir)
	s = strings.ReplaceAll(s, "{output}", tc.OutputDir)
	s = strings.ReplaceAll(s, "{tmp}", tc.TempDir)
	return s
}

func (tc *TestContext) theCommandShouldSucceed() error {
	if tc.LastExitCode != 0 {
		return fmt.Errorf("exit code %d (%v)\noutput:\n%s", tc.LastExitCode, tc.LastError, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theCommandShouldFail() error {
	if tc.LastExitCode == 0 {
		return fmt.Errorf("expected a non-zero exit, output:\n%s", tc.LastOutput)
	}
	return nil
}

// theCommandMightFail accepts either outcome. Used for runs whose result
// depends on OCR quality.
func (tc *TestContext) theCommandMightFail() error {
	return nil
}

func (tc *TestContext) theOutputShouldContain(want string) error {
	if !strings.Contains(tc.LastOutput, want) {
		return fmt.Errorf("output missing %q, got:\n%s", want, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(tc.LastOutput, text) {
		return fmt.Errorf("output unexpectedly holds %q:\n%s", text, tc.LastOutput)
	}
	return nil
}

// jsonPartOfOutput cuts the JSON document out of the output, skipping any
// preceding log or progress lines.
func (tc *TestContext) jsonPartOfOutput() (string, error) {
	out := strings.TrimSpace(tc.LastOutput)
	if i := strings.IndexAny(out, "{["); i >= 0 {
		return out[i:], nil
	}
	return "", fmt.Errorf("no JSON document in output:\n%s", tc.LastOutput)
}

func (tc *TestContext) theOutputShouldBeValidJSON() error {
	doc, err := tc.jsonPartOfOutput()
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return fmt.Errorf("output is not JSON (%w):\n%s", err, doc)
	}
	return nil
}

// theJSONShouldContain checks a field exists in the JSON output. Nested
// fields are addressed with dots, e.g. "summary.total_steps".
func (tc *TestContext) theJSONShouldContain(field string) error {
	doc, err := tc.jsonPartOfOutput()
	if err != nil {
		return err
	}

	var node map[string]any
	if err := json.Unmarshal([]byte(doc), &node); err != nil {
		return fmt.Errorf("parsing JSON output: %w", err)
	}

	path := strings.Split(field, ".")
	for i, key := range path {
		val, ok := node[key]
		if !ok {
			return fmt.Errorf("JSON has no field %q", strings.Join(path[:i+1], "."))
		}
		if i == len(path)-1 {
			return nil
		}
		node, ok = val.(map[string]any)
		if !ok {
			return fmt.Errorf("JSON field %q is not an object", strings.Join(path[:i+1], "."))
		}
	}
	return nil
}

func (tc *TestContext) theOutputShouldBeValidCSV() error {
	body := strings.TrimSpace(tc.LastOutput)
	if body == "" {
		return errors.New("expected CSV, output is empty")
	}
	header, _, _ := strings.Cut(body, "\n")
	if !strings.Contains(header, ",") {
		return fmt.Errorf("expected a CSV header row, got %q", header)
	}
	return nil
}

// theErrorShouldMention looks for text in the combined output and error,
// case-insensitively, so wording assertions survive capitalization changes.
func (tc *TestContext) theErrorShouldMention(fragment string) error {
	if tc.LastError == nil && tc.LastExitCode == 0 {
		return fmt.Errorf("expected a failure mentioning %q, command succeeded", fragment)
	}

	haystack := tc.LastOutput
	if tc.LastError != nil {
		haystack += " " + tc.LastError.Error()
	}
	if !strings.Contains(strings.ToLower(haystack), strings.ToLower(fragment)) {
		return fmt.Errorf("failure does not mention %q:\n%s", fragment, haystack)
	}
	return nil
}

// resolvePath substitutes placeholders and anchors relative paths at the
// scenario working directory.
func (tc *TestContext) resolvePath(name string) string {
	path := tc.substituteVariables(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(tc.WorkingDir, path)
	}
	return path
}

func (tc *TestContext) theFileShouldExist(name string) error {
	path := tc.resolvePath(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected file at %s: %w", path, err)
	}
	return nil
}

func (tc *TestContext) theFileShouldContain(name, want string) error {
	path := tc.resolvePath(name)
	content, err := os.ReadFile(path) //nolint:gosec // G304: scenario-controlled path
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !strings.Contains(string(content), want) {
		return fmt.Errorf("%s missing %q, content:\n%s", name, want, content)
	}
	return nil
}

// aFileContaining writes a file with the given content under the temp dir.
func (tc *TestContext) aFileContaining(name, content string) error {
	path := filepath.Join(tc.TempDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("preparing directory for %s: %w", name, err)
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// theEnvironmentVariableIsSetTo applies an env override to every command
// the scenario runs afterwards.
func (tc *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	tc.AddEnvVar(name, value)
	return nil
}

func (tc *TestContext) theOutputShouldContainUsageInformation() error {
	low := strings.ToLower(tc.LastOutput)
	if !strings.Contains(low, "usage:") {
		return fmt.Errorf("no usage section in output:\n%s", tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theOutputShouldListAvailableSubcommands() error {
	for _, sub := range []string{"validate", "coords", "report", "screenshots", "serve", "config", "version"} {
		if !strings.Contains(tc.LastOutput, sub) {
			return fmt.Errorf("help does not list the %q subcommand", sub)
		}
	}
	return nil
}

func (tc *TestContext) buildInformationShouldBeIncluded() error {
	for _, part := range []string{"ocrval", "commit:", "built:"} {
		if !strings.Contains(tc.LastOutput, part) {
			return fmt.Errorf("version output missing %q:\n%s", part, tc.LastOutput)
		}
	}
	return nil
}

// RegisterCommonSteps binds command execution, output, error, file,
// environment and help steps.
func (tc *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, tc.iRunCommand)
	sc.Step(`^the command should succeed$`, tc.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, tc.theCommandShouldFail)
	sc.Step(`^the command might fail$`, tc.theCommandMightFail)

	sc.Step(`^the output should contain "([^"]*)"$`, tc.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, tc.theOutputShouldNotContain)
	sc.Step(`^the output should be valid JSON$`, tc.theOutputShouldBeValidJSON)
	sc.Step(`^the output should be valid CSV$`, tc.theOutputShouldBeValidCSV)
	sc.Step(`^the JSON should contain "([^"]*)"$`, tc.theJSONShouldContain)

	sc.Step(`^the error should mention "([^"]*)"$`, tc.theErrorShouldMention)

	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, tc.aFileContaining)
	sc.Step(`^the file "([^"]*)" should exist$`, tc.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, tc.theFileShouldContain)

	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, tc.theEnvironmentVariableIsSetTo)

	sc.Step(`^the output should contain usage information$`, tc.theOutputShouldContainUsageInformation)
	sc.Step(`^the output should list available subcommands$`, tc.theOutputShouldListAvailableSubcommands)
	sc.Step(`^build information should be included$`, tc.buildInformationShouldBeIncluded)
}
