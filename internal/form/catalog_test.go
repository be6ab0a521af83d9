package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/internal/api"
	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

type fakeCatalog struct {
	strainIn  []api.StrainInput
	batchIn   []api.BatchInput
	updatedID int64
	logs      map[int64]*api.Multipart
}

func (c *fakeCatalog) CreateStrain(_ context.Context, in api.StrainInput) (types.Strain, error) {
	c.strainIn = append(c.strainIn, in)
	return types.Strain{ID: 100, Name: in.Name}, nil
}

func (c *fakeCatalog) UpdateStrain(_ context.Context, id int64, in api.StrainInput) (types.Strain, error) {
	c.updatedID = id
	c.strainIn = append(c.strainIn, in)
	return types.Strain{ID: id, Name: in.Name}, nil
}

func (c *fakeCatalog) CreateBatch(_ context.Context, in api.BatchInput) (types.Batch, error) {
	c.batchIn = append(c.batchIn, in)
	return types.Batch{ID: 200, BatchCode: in.BatchCode}, nil
}

func (c *fakeCatalog) UpdateBatch(_ context.Context, id int64, in api.BatchInput) (types.Batch, error) {
	c.updatedID = id
	c.batchIn = append(c.batchIn, in)
	return types.Batch{ID: id, BatchCode: in.BatchCode}, nil
}

func (c *fakeCatalog) CreateLog(_ context.Context, treeID int64, m *api.Multipart) (types.TreeLog, error) {
	if c.logs == nil {
		c.logs = make(map[int64]*api.Multipart)
	}
	c.logs[treeID] = m
	return types.TreeLog{ID: 1, Tree: treeID}, nil
}

func TestStrainForm(t *testing.T) {
	existing := func() []types.Strain { return []types.Strain{{ID: 1, Name: "Kush"}, {ID: 2, Name: "Haze"}} }

	t.Run("name required", func(t *testing.T) {
		f := NewStrainForm(&fakeCatalog{}, existing, types.LanguageEnglish)
		f.Name = "   "
		assert.ErrorIs(t, f.Validate(), types.ErrValidation)
	})

	t.Run("duplicate is trimmed and case sensitive", func(t *testing.T) {
		f := NewStrainForm(&fakeCatalog{}, existing, types.LanguageEnglish)
		f.Name = " Kush "
		assert.ErrorIs(t, f.Validate(), types.ErrValidation)
		assert.ErrorIs(t, f.Validate(), types.ErrDuplicateName)
		f.Name = "kush"
		assert.NoError(t, f.Validate())
	})

	t.Run("editing keeps own name", func(t *testing.T) {
		svc := &fakeCatalog{}
		f := NewStrainForm(svc, existing, types.LanguageEnglish)
		f.SetForEdit(types.Strain{ID: 1, Name: "Kush"})
		s, err := f.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), svc.updatedID)
		assert.Equal(t, "Kush", s.Name)
	})

	t.Run("create trims", func(t *testing.T) {
		svc := &fakeCatalog{}
		f := NewStrainForm(svc, existing, types.LanguageEnglish)
		f.Name = "  Mango "
		_, err := f.Submit(context.Background())
		require.NoError(t, err)
		require.Len(t, svc.strainIn, 1)
		assert.Equal(t, "Mango", svc.strainIn[0].Name)
	})
}

func TestBatchForm(t *testing.T) {
	existing := func() []types.Batch { return []types.Batch{{ID: 1, BatchCode: "B-1"}} }

	svc := &fakeCatalog{}
	f := NewBatchForm(svc, existing, types.LanguageEnglish)
	assert.ErrorIs(t, f.Validate(), types.ErrValidation)

	f.BatchCode = "B-1"
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, svc.batchIn)

	f.BatchCode = "B-2"
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, svc.batchIn, 1)
	assert.Nil(t, svc.batchIn[0].StartedDate)

	f.SetForEdit(types.Batch{ID: 1, BatchCode: "B-1", StartedDate: "2026-01-05"})
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), svc.updatedID)
	require.NotNil(t, svc.batchIn[1].StartedDate)
	assert.Equal(t, "2026-01-05", *svc.batchIn[1].StartedDate)
}

func TestLogForm(t *testing.T) {
	svc := &fakeCatalog{}
	f := NewLogForm(svc, 8, WithClock(fixedNow), WithLanguage(types.LanguageEnglish))
	assert.Equal(t, types.ActionNote, f.ActionType)
	assert.Equal(t, "2026-03-14", f.ActionDate)

	f.ActionType = "dance"
	assert.ErrorIs(t, f.Validate(), types.ErrValidation)

	f.ActionType = types.ActionWater
	f.PH = "six"
	assert.ErrorIs(t, f.Validate(), types.ErrValidation)

	f.PH = "6.3"
	f.Title = "morning"
	require.NoError(t, f.SetImages([]upload.File{jpeg("leaf.jpg")}))
	assert.ErrorIs(t, f.SetImages([]upload.File{upload.FromBytes("x.bmp", "image/bmp", nil)}), types.ErrFileType)

	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	m := svc.logs[8]
	require.NotNil(t, m)
	v, _ := m.Value("ph")
	assert.Equal(t, "6.3", v)
	_, ok := m.Value("ec")
	assert.False(t, ok, "empty readings omitted")
	_, ok = m.Value("notes")
	assert.False(t, ok)
	assert.Len(t, m.Files("images"), 1)

	assert.Equal(t, types.ActionNote, f.ActionType, "reset after submit")
	assert.Equal(t, "", f.PH)
}
