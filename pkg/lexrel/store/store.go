// Package store defines the storage capability interfaces consumed by the
// predictor and the feature blender. Concrete backends live in the sqlite
// and memstore subpackages and are injected at construction.
package store

import "context"

// CoocStore is a read-only lookup of serialized co-occurrence records.
// The record payload is the raw stored text; decoding lives in the cooc
// package. Absence of a word is an expected case, not an error.
type CoocStore interface {
	// Get returns the serialized record for word, or ok=false when the
	// store has no entry for it.
	Get(ctx context.Context, word string) (payload string, ok bool, err error)
	Close() error
}

// Entry is a dictionary headword record.
type Entry struct {
	Word        string
	Probability float64 // 0 when the source record carries none
	Grade       int
	Parents     []string
	Children    []string
	Related     []string
	Features    map[string]float64
}

// EntrySearcher is the dictionary search backend.
type EntrySearcher interface {
	// SearchExact returns all entries whose indexed form matches word.
	// Backends may index inflections, so callers must still compare the
	// Word field when an exact headword is required.
	SearchExact(ctx context.Context, word string) ([]Entry, error)

	// SearchByGrade returns one page of entries in grade order.
	// pageIndex starts at 1; an empty page signals the end.
	SearchByGrade(ctx context.Context, pageSize, pageIndex int, ascending bool) ([]Entry, error)

	Close() error
}
