package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
)

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strains.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	records := []json.RawMessage{json.RawMessage(`{"id":1}`), json.RawMessage(`{"id":2}`)}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1}\n{\"id\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteJSONLMissingDir(t *testing.T) {
	err := writeJSONL(filepath.Join(t.TempDir(), "absent", "x.jsonl"), nil)
	assert.Error(t, err)
}

func TestReadJSONLSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees.jsonl")
	content := `{"id":1}

not json
{"id":2, "broken":
{"id":3}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":3}`, string(records[1]))
}

func TestEncodeRecordKeepsColumnOrder(t *testing.T) {
	rec, err := encodeRecord([]string{"id", "batch_code", "started_date"}, []any{int64(4), "KB-7", nil})
	require.NoError(t, err)
	assert.Equal(t, `{"id":4,"batch_code":"KB-7","started_date":null}`, string(rec))
}

func TestExportJSONL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	counts, err := ExportJSONL(dir, sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[snapshot.TableStrains])

	for _, l := range snapshot.Layouts {
		_, err := os.Stat(filepath.Join(dir, l.Name+".jsonl"))
		assert.NoError(t, err, l.Name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "trees.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `{"id":2,"nickname":"Jade","strain_id":7,`))
	assert.Contains(t, lines[0], `"yield_amount":40.25`)
	assert.Contains(t, lines[1], `"batch_id":null`)
}
