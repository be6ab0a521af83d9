package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func sampleSnapshot() snapshot.Snapshot {
	y := types.Decimal(40.25)
	return snapshot.Snapshot{
		Strains: []types.Strain{{ID: 3, Name: "Kush", Description: "indica"}, {ID: 7, Name: "Haze"}},
		Batches: []types.Batch{{ID: 1, BatchCode: "KB-7", StartedDate: "2026-01-02"}},
		Trees: []types.Tree{
			{ID: 2, Nickname: "Jade", Strain: &types.Strain{ID: 7, Name: "Haze"}, Batch: &types.Batch{ID: 1, BatchCode: "KB-7"},
				Status: types.StatusAlive, YieldAmount: &y,
				Images: []types.Image{{ID: 11, Image: "a.jpg"}, {ID: 12, Image: "b.jpg"}}},
			{ID: 1, Nickname: "Ruby", Strain: &types.Strain{ID: 3, Name: "Kush"}},
		},
	}
}

func TestExportAndInspect(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snapshot.db")

	counts, err := Export(ctx, path, sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[snapshot.TableTrees])
	assert.Equal(t, 2, counts[snapshot.TableTreeImages])

	r, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		snapshot.TableStrains: 2, snapshot.TableBatches: 1, snapshot.TableImages: 2,
		snapshot.TableTrees: 2, snapshot.TableTreeImages: 2,
	}, got)

	trees, err := r.Trees(ctx)
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, int64(2), trees[0].ID, "newest first")
	assert.Equal(t, "Haze", trees[0].StrainName())
	assert.Equal(t, "KB-7", trees[0].BatchCode())
	require.NotNil(t, trees[0].YieldAmount)
	assert.InDelta(t, 40.25, float64(*trees[0].YieldAmount), 1e-9)
	assert.Len(t, trees[0].Images, 2)
	assert.Nil(t, trees[1].Batch)
	assert.Nil(t, trees[1].YieldAmount)
}

func TestExportReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o644))

	_, err := Export(ctx, path, sampleSnapshot())
	require.NoError(t, err)
	_, err = Export(ctx, path, snapshot.Snapshot{Strains: []types.Strain{{ID: 1, Name: "Solo"}}})
	require.NoError(t, err)

	r, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer r.Close()
	counts, err := r.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[snapshot.TableStrains])
	assert.Equal(t, 0, counts[snapshot.TableTrees])
}

func TestExportFailureRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	dup := snapshot.Snapshot{Strains: []types.Strain{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}}

	_, err := Export(context.Background(), path, dup)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "partial snapshot removed")
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Export(ctx, filepath.Join(t.TempDir(), "snapshot.db"), sampleSnapshot())
	assert.Error(t, err)
}

func TestOpenSnapshotMissing(t *testing.T) {
	_, err := OpenSnapshot(filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}
