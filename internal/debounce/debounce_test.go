package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.got = append(r.got, v)
	r.mu.Unlock()
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func TestDebouncerFiresLastValueAfterQuiet(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(300*time.Millisecond, clock, rec.record)

	d.Trigger("K")
	clock.Advance(100 * time.Millisecond)
	d.Trigger("Ku")
	clock.Advance(100 * time.Millisecond)
	d.Trigger("Kush")
	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, rec.values())
	assert.True(t, d.Pending())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"Kush"}, rec.values())
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"Kush"}, rec.values(), "fires once")
}

func TestDebouncerStop(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(0, clock, rec.record)

	d.Trigger("a")
	d.Stop()
	clock.Advance(DefaultDelay)
	assert.Empty(t, rec.values())
}

func TestDebouncerFlush(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(time.Second, clock, rec.record)

	d.Flush()
	assert.Empty(t, rec.values(), "nothing pending")

	d.Trigger("now")
	d.Flush()
	assert.Equal(t, []string{"now"}, rec.values())
	clock.Advance(time.Second)
	assert.Equal(t, []string{"now"}, rec.values())
}

func TestDebouncerRealClock(t *testing.T) {
	rec := &recorder{}
	d := New(10*time.Millisecond, nil, rec.record)
	d.Trigger("x")
	d.Trigger("y")
	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"y"}, rec.values())
}
