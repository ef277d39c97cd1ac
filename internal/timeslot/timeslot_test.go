package timeslot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(start, end string) Span[string] {
	return Span[string]{Start: start, End: end}
}

func TestSpanValid(t *testing.T) {
	assert.True(t, span("09:00", "10:00").Valid())
	assert.False(t, span("09:00", "09:00").Valid())
	assert.False(t, span("10:00", "09:00").Valid())
}

func TestOverlapsSymmetry(t *testing.T) {
	pairs := []struct {
		a, b Span[string]
	}{
		{span("09:00", "10:00"), span("09:30", "10:30")},
		{span("09:00", "10:00"), span("10:00", "11:00")},
		{span("08:00", "12:00"), span("09:00", "10:00")},
		{span("09:00", "10:00"), span("13:00", "14:00")},
	}
	for _, p := range pairs {
		assert.Equal(t, p.a.Overlaps(p.b), p.b.Overlaps(p.a), "overlap must be symmetric for %v / %v", p.a, p.b)
	}
}

func TestOverlapsIdenticalSlot(t *testing.T) {
	s := span("09:00", "10:00")
	assert.True(t, s.Overlaps(s))
}

func TestOverlapsAdjacentSlots(t *testing.T) {
	// Touching endpoints are legal: back-to-back bookings never conflict.
	assert.False(t, span("09:00", "10:00").Overlaps(span("10:00", "11:00")))
	assert.False(t, span("10:00", "11:00").Overlaps(span("09:00", "10:00")))
}

func TestOverlapsStrictSubInterval(t *testing.T) {
	assert.True(t, span("09:00", "11:00").Overlaps(span("09:30", "10:30")))
	assert.True(t, span("09:30", "10:30").Overlaps(span("09:00", "11:00")))
}

func TestOverlapsPartial(t *testing.T) {
	assert.True(t, span("09:00", "10:00").Overlaps(span("09:59", "11:00")))
	assert.False(t, span("09:00", "10:00").Overlaps(span("11:00", "12:00")))
}

func TestOverlapsUnixSeconds(t *testing.T) {
	a := Span[int64]{Start: 1000, End: 2000}
	b := Span[int64]{Start: 2000, End: 3000}
	c := Span[int64]{Start: 1500, End: 2500}
	assert.False(t, a.Overlaps(b))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}

func TestFirstOverlapReturnsEarliestCreated(t *testing.T) {
	entries := []Entry[string]{
		{ID: "first", Span: span("09:00", "11:00")},
		{ID: "second", Span: span("10:00", "12:00")},
	}

	match, found := FirstOverlap(entries, span("10:00", "10:30"), "")
	require.True(t, found)
	assert.Equal(t, "first", match.ID)
}

func TestFirstOverlapExcludesOwnID(t *testing.T) {
	entries := []Entry[string]{
		{ID: "self", Span: span("09:00", "10:00")},
	}

	_, found := FirstOverlap(entries, span("09:00", "10:00"), "self")
	assert.False(t, found)

	match, found := FirstOverlap(entries, span("09:00", "10:00"), "")
	require.True(t, found)
	assert.Equal(t, "self", match.ID)
}

func TestFirstOverlapNoMatch(t *testing.T) {
	entries := []Entry[string]{
		{ID: "a", Span: span("08:00", "09:00")},
		{ID: "b", Span: span("09:00", "10:00")},
	}

	_, found := FirstOverlap(entries, span("10:00", "11:00"), "")
	assert.False(t, found)
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()

	var mu sync.Mutex
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("room-1")
			defer unlock()
			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestKeyedMutexLockAllSkipsEmptyKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlock := km.LockAll("", "room-1", "")
	unlock()

	// Key must be free again after unlock.
	unlock = km.Lock("room-1")
	unlock()
}
