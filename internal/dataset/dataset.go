// Package dataset loads the three correlated tables consumed by the
// validation engine: the test protocol, the expected-strings map, and the
// coordinate index. Sources are CSV or JSON files (YAML additionally for
// expected strings), selected by file extension.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// Table names used in load errors.
const (
	TableProtocol        = "test protocol"
	TableExpectedStrings = "expected strings"
	TableCoordinates     = "coordinates"
)

// Loader produces the three dataset tables. Implementations fail with a
// *LoadError when a table is missing, malformed, or empty.
type Loader interface {
	LoadTestProtocol(ctx context.Context) ([]model.TestStep, error)
	LoadExpectedStrings(ctx context.Context) (model.ExpectedStrings, error)
	LoadCoordinates(ctx context.Context) (model.CoordinateIndex, error)
}

// LoadError reports a fatal dataset load failure for one table.
type LoadError struct {
	Table  string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s from %s: %v", e.Table, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(table, source string, format string, args ...any) *LoadError {
	return &LoadError{Table: table, Source: source, Err: fmt.Errorf(format, args...)}
}

// coerceScalar renders a decoded scalar value as text. Strings pass
// through, numbers keep their source representation, nil becomes empty.
// Composite values (objects, arrays) are rejected.
func coerceScalar(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
