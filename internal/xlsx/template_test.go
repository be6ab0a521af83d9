package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func TestWriteTemplateHeadersOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data-templates", "mytree-template.xlsx")
	require.NoError(t, WriteTemplate(path, nil))

	sheets, err := Inspect(path)
	require.NoError(t, err)
	require.Len(t, sheets, len(snapshot.Layouts))
	for i, l := range snapshot.Layouts {
		assert.Equal(t, l.Sheet, sheets[i].Name)
		assert.Equal(t, l.Columns, sheets[i].Headers)
		assert.Zero(t, sheets[i].Rows)
	}
}

func TestWriteTemplateWithData(t *testing.T) {
	y := types.Decimal(7.5)
	snap := &snapshot.Snapshot{
		Strains: []types.Strain{{ID: 3, Name: "Kush"}},
		Trees: []types.Tree{{ID: 9, Nickname: "Jade", Strain: &types.Strain{ID: 3}, YieldAmount: &y,
			Images: []types.Image{{ID: 1, Image: "a.jpg"}}}},
	}
	path := filepath.Join(t.TempDir(), "filled.xlsx")
	require.NoError(t, WriteTemplate(path, snap))

	sheets, err := Inspect(path)
	require.NoError(t, err)
	rows := map[string]int{}
	for _, s := range sheets {
		rows[s.Name] = s.Rows
	}
	assert.Equal(t, map[string]int{"Strains": 1, "Batches": 0, "Images": 1, "Trees": 1, "TreeImages": 1}, rows)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Trees", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Jade", v)
	v, err = f.GetCellValue("Trees", "C2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestInspectMissingFile(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}
