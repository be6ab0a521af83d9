package sqlite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
)

// ImportJSONL builds a SQLite snapshot at path from a directory written by
// ExportJSONL. Missing files load as empty tables. Malformed lines and
// records without their key column are skipped. Unknown fields are ignored,
// so exports from newer clients still load.
func ImportJSONL(ctx context.Context, dir, path string) (map[string]int, error) {
	tables, err := readTables(dir)
	if err != nil {
		return nil, err
	}
	return writeDatabase(ctx, path, tables)
}

func readTables(dir string) ([]snapshot.Table, error) {
	tables := make([]snapshot.Table, 0, len(snapshot.Layouts))
	for _, l := range snapshot.Layouts {
		t := snapshot.Table{Name: l.Name, Sheet: l.Sheet, Columns: l.Columns}
		records, err := readJSONL(filepath.Join(dir, t.File()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", t.File(), err)
		}
		for _, rec := range records {
			row, ok := recordRow(rec, l.Columns)
			if ok && row[0] != nil {
				t.Rows = append(t.Rows, row)
			}
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// recordRow extracts columns from a JSON object. Only listed columns are
// read.
func recordRow(rec json.RawMessage, columns []string) ([]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(rec))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}

	row := make([]any, len(columns))
	for i, col := range columns {
		switch v := obj[col].(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				row[i] = n
			} else if f, err := v.Float64(); err == nil {
				row[i] = f
			}
		case map[string]any, []any:
			b, err := json.Marshal(v)
			if err == nil {
				row[i] = string(b)
			}
		default:
			row[i] = v
		}
	}
	return row, true
}
