package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

var coordinateColumns = []string{
	"StepID", "ScreenID", "ExpectedStringID",
	"Left", "Top", "Right", "Bottom",
}

// LoadCoordinates reads the region annotation table. Rows with missing
// fields, non-integer values, negative values, or inverted bounds are
// skipped with a warning. Duplicate composite keys resolve
// last-write-wins. An index yielding zero valid entries is a load error.
func (l *FileLoader) LoadCoordinates(ctx context.Context) (model.CoordinateIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(l.CoordinatesPath); err != nil {
		return nil, loadErr(TableCoordinates, l.CoordinatesPath, "coordinates file not found: %w", err)
	}

	var (
		index model.CoordinateIndex
		err   error
	)
	switch extensionOf(l.CoordinatesPath) {
	case ".json":
		index, err = loadCoordinatesJSON(l.CoordinatesPath)
	default:
		index, err = loadCoordinatesCSV(l.CoordinatesPath)
	}
	if err != nil {
		return nil, err
	}

	if len(index) == 0 {
		return nil, loadErr(TableCoordinates, l.CoordinatesPath, "no valid coordinates found")
	}
	slog.Info("Loaded coordinate index", "entries", len(index), "path", l.CoordinatesPath)
	return index, nil
}

func loadCoordinatesCSV(path string) (model.CoordinateIndex, error) {
	table, err := readCSVTable(path, coordinateColumns)
	if err != nil {
		return nil, loadErr(TableCoordinates, path, "%w", err)
	}

	index := make(model.CoordinateIndex, len(table.rows))
	for i, row := range table.rows {
		rowNum := i + 2

		key := model.CoordinateKey{
			StepID:   table.cell(row, "StepID"),
			ScreenID: table.cell(row, "ScreenID"),
			StringID: table.cell(row, "ExpectedStringID"),
		}
		if key.StepID == "" || key.ScreenID == "" || key.StringID == "" {
			slog.Warn("Skipping coordinate row", "row", rowNum, "error", "missing required data")
			continue
		}

		coord, err := parseBox(
			table.cell(row, "Left"), table.cell(row, "Top"),
			table.cell(row, "Right"), table.cell(row, "Bottom"),
		)
		if err != nil {
			slog.Warn("Skipping coordinate row", "row", rowNum, "error", err)
			continue
		}

		storeCoordinate(index, key, coord)
	}
	return index, nil
}

func loadCoordinatesJSON(path string) (model.CoordinateIndex, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: dataset paths come from configuration
	if err != nil {
		return nil, loadErr(TableCoordinates, path, "%w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, loadErr(TableCoordinates, path, "file must contain an array of coordinate objects: %w", err)
	}

	index := make(model.CoordinateIndex, len(raw))
	for i, entry := range raw {
		key, coord, err := coordinateFromJSON(entry)
		if err != nil {
			slog.Warn("Skipping coordinate entry", "index", i, "error", err)
			continue
		}
		storeCoordinate(index, key, coord)
	}
	return index, nil
}

func coordinateFromJSON(entry map[string]any) (model.CoordinateKey, model.Coordinate, error) {
	var key model.CoordinateKey
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"step_id", &key.StepID},
		{"screen_id", &key.ScreenID},
		{"expected_string_id", &key.StringID},
	} {
		v, ok := entry[f.name]
		if !ok {
			return key, model.Coordinate{}, fmt.Errorf("missing field %q", f.name)
		}
		text, err := coerceScalar(v)
		if err != nil {
			return key, model.Coordinate{}, fmt.Errorf("field %q: %w", f.name, err)
		}
		*f.dst = strings.TrimSpace(text)
	}
	if key.StepID == "" || key.ScreenID == "" || key.StringID == "" {
		return key, model.Coordinate{}, fmt.Errorf("missing required data")
	}

	sides := make(map[string]string, 4)
	for _, name := range []string{"left", "top", "right", "bottom"} {
		v, ok := entry[name]
		if !ok {
			return key, model.Coordinate{}, fmt.Errorf("missing field %q", name)
		}
		text, err := coerceScalar(v)
		if err != nil {
			return key, model.Coordinate{}, fmt.Errorf("field %q: %w", name, err)
		}
		sides[name] = text
	}
	coord, err := parseBox(sides["left"], sides["top"], sides["right"], sides["bottom"])
	if err != nil {
		return key, model.Coordinate{}, err
	}
	return key, coord, nil
}

// parseBox parses and validates the four sides of a bounding box.
func parseBox(left, top, right, bottom string) (model.Coordinate, error) {
	values := make([]int, 4)
	for i, raw := range []string{left, top, right, bottom} {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return model.Coordinate{}, fmt.Errorf("invalid coordinate value %q", raw)
		}
		values[i] = v
	}
	coord := model.Coordinate{Left: values[0], Top: values[1], Right: values[2], Bottom: values[3]}
	if err := coord.Validate(); err != nil {
		return model.Coordinate{}, err
	}
	return coord, nil
}

func storeCoordinate(index model.CoordinateIndex, key model.CoordinateKey, coord model.Coordinate) {
	if prev, exists := index[key]; exists {
		slog.Warn("Duplicate coordinate entry, using latest", "key", key.String(), "previous", prev.String())
	}
	index[key] = coord
}
