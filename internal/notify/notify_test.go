package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastsExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCenter(0, func() time.Time { return now })
	assert.Equal(t, DefaultTTL, c.TTL())

	c.PushSuccess("deleted 2 of 2")
	now = now.Add(2 * time.Second)
	c.PushError("delete failed")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, Success, active[0].Kind)

	now = now.Add(1500 * time.Millisecond)
	active = c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "delete failed", active[0].Text)

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, Error, latest.Kind)

	now = now.Add(2 * time.Second)
	_, ok = c.Latest()
	assert.False(t, ok)
}
