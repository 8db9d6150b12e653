// Package memstore provides in-memory implementations of the store
// interfaces for tests and small fixtures.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/lexrel/pkg/lexrel/store"
)

// CoocStore is an in-memory store.CoocStore.
type CoocStore struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewCoocStore creates an empty in-memory co-occurrence store.
func NewCoocStore() *CoocStore {
	return &CoocStore{records: make(map[string]string)}
}

// Close implements store.CoocStore.
func (s *CoocStore) Close() error { return nil }

// Get implements store.CoocStore.
func (s *CoocStore) Get(ctx context.Context, word string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.records[word]
	return payload, ok, nil
}

// Put stores a serialized record.
func (s *CoocStore) Put(word, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[word] = payload
}

// EntrySearcher is an in-memory store.EntrySearcher.
type EntrySearcher struct {
	mu      sync.RWMutex
	entries []store.Entry
	byWord  map[string][]int
}

// NewEntrySearcher creates an empty in-memory entry backend.
func NewEntrySearcher() *EntrySearcher {
	return &EntrySearcher{byWord: make(map[string][]int)}
}

// Close implements store.EntrySearcher.
func (s *EntrySearcher) Close() error { return nil }

// Add appends an entry. Insertion order is the tiebreak within a grade,
// matching the sqlite backend's rowid ordering.
func (s *EntrySearcher) Add(entry store.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byWord[entry.Word] = append(s.byWord[entry.Word], len(s.entries))
	s.entries = append(s.entries, entry)
}

// AddAlias indexes an existing word's entries under an alternate form,
// emulating backends that match inflections.
func (s *EntrySearcher) AddAlias(alias, word string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byWord[alias] = append(s.byWord[alias], s.byWord[word]...)
}

// SearchExact implements store.EntrySearcher.
func (s *EntrySearcher) SearchExact(ctx context.Context, word string) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indexes := s.byWord[word]
	out := make([]store.Entry, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, copyEntry(s.entries[i]))
	}
	return out, nil
}

// SearchByGrade implements store.EntrySearcher.
func (s *EntrySearcher) SearchByGrade(ctx context.Context, pageSize, pageIndex int, ascending bool) ([]store.Entry, error) {
	if pageSize <= 0 || pageIndex <= 0 {
		return nil, fmt.Errorf("invalid page size %d / index %d", pageSize, pageIndex)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := make([]int, len(s.entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ga, gb := s.entries[order[a]].Grade, s.entries[order[b]].Grade
		if ascending {
			return ga < gb
		}
		return ga > gb
	})

	start := (pageIndex - 1) * pageSize
	if start >= len(order) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(order) {
		end = len(order)
	}
	out := make([]store.Entry, 0, end-start)
	for _, i := range order[start:end] {
		out = append(out, copyEntry(s.entries[i]))
	}
	return out, nil
}

func copyEntry(e store.Entry) store.Entry {
	out := e
	out.Parents = append([]string(nil), e.Parents...)
	out.Children = append([]string(nil), e.Children...)
	out.Related = append([]string(nil), e.Related...)
	if e.Features != nil {
		out.Features = make(map[string]float64, len(e.Features))
		for k, v := range e.Features {
			out.Features[k] = v
		}
	}
	return out
}
