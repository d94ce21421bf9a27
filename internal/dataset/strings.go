package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// LoadExpectedStrings reads the string-id to localized-text map. The
// source must be a flat object; scalar values that are not strings are
// coerced to text rather than rejected.
func (l *FileLoader) LoadExpectedStrings(ctx context.Context) (model.ExpectedStrings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.StringsPath) //nolint:gosec // G304: dataset paths come from configuration
	if err != nil {
		return nil, loadErr(TableExpectedStrings, l.StringsPath, "expected strings file not found: %w", err)
	}

	var raw map[string]any
	switch extensionOf(l.StringsPath) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, loadErr(TableExpectedStrings, l.StringsPath, "invalid YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, loadErr(TableExpectedStrings, l.StringsPath, "file must contain a JSON object: %w", err)
		}
	}

	table := make(model.ExpectedStrings, len(raw))
	for id, value := range raw {
		text, err := coerceScalar(value)
		if err != nil {
			return nil, loadErr(TableExpectedStrings, l.StringsPath,
				"value for %q is not a flat scalar: %w", id, err)
		}
		if _, isString := value.(string); !isString {
			slog.Warn("Coerced non-string expected value", "id", id, "value", text)
		}
		table[id] = text
	}

	slog.Info("Loaded expected strings", "count", len(table), "path", l.StringsPath)
	return table, nil
}
