package preview

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/internal/upload"
)

func TestMemoryRegistry(t *testing.T) {
	r := NewMemoryRegistry()

	a, err := r.Create(upload.FromBytes("a.jpg", "image/jpeg", []byte("aaa")))
	require.NoError(t, err)
	b, err := r.Create(upload.FromBytes("b.png", "image/png", []byte("bbb")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, Scheme))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())

	f, ok := r.Open(a)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", f.Name)
	rc, err := f.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "aaa", string(data))

	r.Revoke(a)
	r.Revoke(a)
	r.Revoke("blob:mytree/unknown")
	assert.Equal(t, 1, r.Len())
	_, ok = r.Open(a)
	assert.False(t, ok)
	_, ok = r.Open("https://elsewhere/b.png")
	assert.False(t, ok)
}

func TestCreateFailsWithoutContent(t *testing.T) {
	r := NewMemoryRegistry()
	_, err := r.Create(upload.File{Name: "ghost.jpg"})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}
