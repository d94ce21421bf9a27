package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader reads the dataset tables from local files. The format of
// each table is chosen by its file extension.
type FileLoader struct {
	ProtocolPath    string
	StringsPath     string
	CoordinatesPath string
}

// NewFileLoader creates a loader over the three dataset files.
func NewFileLoader(protocolPath, stringsPath, coordinatesPath string) *FileLoader {
	return &FileLoader{
		ProtocolPath:    protocolPath,
		StringsPath:     stringsPath,
		CoordinatesPath: coordinatesPath,
	}
}

// csvTable is a header-indexed CSV file. Rows may be ragged; missing
// cells read as empty strings.
type csvTable struct {
	columns map[string]int
	rows    [][]string
}

// readCSVTable parses a CSV file with a required header row. Header names
// match case-insensitively with surrounding whitespace ignored.
func readCSVTable(path string, required []string) (*csvTable, error) {
	f, err := os.Open(path) //nolint:gosec // G304: dataset paths come from configuration
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing dataset file: %v\n", cerr)
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := columns[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return &csvTable{columns: columns, rows: rows}, nil
}

// cell returns the trimmed value of the named column in the given row,
// or an empty string when the row is too short.
func (t *csvTable) cell(row []string, column string) string {
	idx, ok := t.columns[strings.ToLower(column)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func extensionOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
