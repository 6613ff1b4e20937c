package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHeader is returned for an empty CSV file
var ErrNoHeader = errors.New("csv has no header row")

// Table is a header-addressed CSV in memory
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadTable reads a whole CSV file
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := DecodeTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// DecodeTable parses CSV from r; ragged rows are tolerated
func DecodeTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	t := &Table{Header: records[0], Rows: records[1:]}
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := normalize(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

// Column returns the index of the first header matching any name
// (case-insensitive, trimmed), or -1.
func (t *Table) Column(names ...string) int {
	for _, n := range names {
		if i, ok := t.index[normalize(n)]; ok {
			return i
		}
	}
	return -1
}

// Cell returns row[col] or "" when col is absent or the row is short
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func normalize(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(s))
}

// writeCSV fully rewrites path with header and rows
func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := rows(w); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

// CountRows returns the number of data rows of a CSV file
func CountRows(path string) (int, error) {
	t, err := ReadTable(path)
	if err != nil {
		return 0, err
	}
	return len(t.Rows), nil
}
