package sqlite

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// encodeRecord renders one row as a JSON object with keys in column order.
func encodeRecord(columns []string, row []any) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(row[i])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", col, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExportJSONL writes one JSONL file per snapshot table into dir. Each file
// is replaced atomically, so readers never see a partial export of a table.
func ExportJSONL(dir string, snap snapshot.Snapshot) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range snap.Tables() {
		records := make([]json.RawMessage, 0, len(t.Rows))
		for _, row := range t.Rows {
			rec, err := encodeRecord(t.Columns, row)
			if err != nil {
				return nil, fmt.Errorf("encoding %s: %w", t.Name, err)
			}
			records = append(records, rec)
		}
		if err := writeJSONL(filepath.Join(dir, t.File()), records); err != nil {
			return nil, fmt.Errorf("writing %s: %w", t.File(), err)
		}
		counts[t.Name] = len(records)
	}
	return counts, nil
}
