// Package timeslot implements the half-open interval rule shared by booking
// and class session validation. Bookings instantiate spans over Unix seconds,
// class sessions over "HH:MM" wall-clock strings; both axes use the exact
// same overlap predicate so adjacency and symmetry behave identically
// everywhere.
package timeslot

import "cmp"

// Span is a half-open interval [Start, End).
type Span[T cmp.Ordered] struct {
	Start T
	End   T
}

// Valid reports whether the span has positive duration. Equal or inverted
// bounds are invalid and must be rejected before any conflict scan runs.
func (s Span[T]) Valid() bool {
	return s.Start < s.End
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not count: back-to-back slots are legal.
func (s Span[T]) Overlaps(o Span[T]) bool {
	return s.Start < o.End && s.End > o.Start
}

// Entry associates a stored record with its span for conflict scanning.
type Entry[T cmp.Ordered] struct {
	ID   string
	Span Span[T]
}

// FirstOverlap returns the first entry whose span overlaps the candidate,
// skipping the entry with excludeID (the record being updated). Callers
// supply entries ordered earliest-created-first so the reported conflict is
// deterministic. The second result is false when no entry overlaps.
func FirstOverlap[T cmp.Ordered](entries []Entry[T], candidate Span[T], excludeID string) (Entry[T], bool) {
	for _, e := range entries {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if e.Span.Overlaps(candidate) {
			return e, true
		}
	}
	var zero Entry[T]
	return zero, false
}
