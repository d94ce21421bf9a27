package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

var protocolColumns = []string{"StepID", "ScreenID", "ExpectedStringID"}

// LoadTestProtocol reads the ordered step list. Rows missing any required
// identifier are skipped with a warning; a protocol yielding zero valid
// steps is a load error.
func (l *FileLoader) LoadTestProtocol(ctx context.Context) ([]model.TestStep, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(l.ProtocolPath); err != nil {
		return nil, loadErr(TableProtocol, l.ProtocolPath, "protocol file not found: %w", err)
	}

	var (
		steps []model.TestStep
		err   error
	)
	switch extensionOf(l.ProtocolPath) {
	case ".json":
		steps, err = loadProtocolJSON(l.ProtocolPath)
	default:
		steps, err = loadProtocolCSV(l.ProtocolPath)
	}
	if err != nil {
		return nil, err
	}

	if len(steps) == 0 {
		return nil, loadErr(TableProtocol, l.ProtocolPath, "no valid test steps found")
	}
	slog.Info("Loaded test protocol", "steps", len(steps), "path", l.ProtocolPath)
	return steps, nil
}

func loadProtocolCSV(path string) ([]model.TestStep, error) {
	table, err := readCSVTable(path, protocolColumns)
	if err != nil {
		return nil, loadErr(TableProtocol, path, "%w", err)
	}

	steps := make([]model.TestStep, 0, len(table.rows))
	for i, row := range table.rows {
		step := model.TestStep{
			StepID:           table.cell(row, "StepID"),
			ScreenID:         table.cell(row, "ScreenID"),
			ExpectedStringID: table.cell(row, "ExpectedStringID"),
		}
		if err := step.Validate(); err != nil {
			slog.Warn("Skipping protocol row", "row", i+2, "error", err)
			continue
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func loadProtocolJSON(path string) ([]model.TestStep, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: dataset paths come from configuration
	if err != nil {
		return nil, loadErr(TableProtocol, path, "%w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, loadErr(TableProtocol, path, "file must contain an array of step objects: %w", err)
	}

	steps := make([]model.TestStep, 0, len(raw))
	for i, entry := range raw {
		step, err := protocolStepFromJSON(entry)
		if err != nil {
			slog.Warn("Skipping protocol entry", "index", i, "error", err)
			continue
		}
		if err := step.Validate(); err != nil {
			slog.Warn("Skipping protocol entry", "index", i, "error", err)
			continue
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func protocolStepFromJSON(entry map[string]any) (model.TestStep, error) {
	var step model.TestStep
	fields := []struct {
		key string
		dst *string
	}{
		{"step_id", &step.StepID},
		{"screen_id", &step.ScreenID},
		{"expected_string_id", &step.ExpectedStringID},
	}
	for _, f := range fields {
		v, ok := entry[f.key]
		if !ok {
			return step, fmt.Errorf("missing field %q", f.key)
		}
		text, err := coerceScalar(v)
		if err != nil {
			return step, fmt.Errorf("field %q: %w", f.key, err)
		}
		*f.dst = strings.TrimSpace(text)
	}
	return step, nil
}
