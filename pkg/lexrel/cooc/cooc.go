// Package cooc decodes stored co-occurrence records and turns them into
// real-valued relevance scores.
package cooc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/lexrel/pkg/lexrel/internalerr"
	"github.com/cognicore/lexrel/pkg/lexrel/lang"
	"github.com/cognicore/lexrel/pkg/lexrel/store"
)

// Score constants. BaseScore is the integer scale the store builder used
// when quantizing probabilities; all raw strengths and idf weights are
// expressed in units of 1/BaseScore.
const (
	BaseScore         = 1000
	NumericWordWeight = 0.2
	StopWordWeight    = 0.5
	MaxProbScore      = 0.05
)

// Pair is one stored neighbor with its raw integer strength.
type Pair struct {
	Word     string
	Strength int
}

// Record is a decoded co-occurrence record.
type Record struct {
	IDF   int
	Pairs []Pair
}

// WordScore is a word with a derived relevance score.
type WordScore struct {
	Word  string
	Score float64
}

// ParseRecord decodes a stored payload: the first tab-separated field is
// the idf weight, each following field is "neighbor strength" with a
// space between word and strength.
func ParseRecord(payload string) (Record, error) {
	fields := strings.Split(payload, "\t")
	idf, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: bad idf field %q", internalerr.ErrInvalidRecord, fields[0])
	}
	if idf < 0 {
		return Record{}, fmt.Errorf("%w: negative idf %d", internalerr.ErrInvalidRecord, idf)
	}
	rec := Record{IDF: idf, Pairs: make([]Pair, 0, len(fields)-1)}
	for _, field := range fields[1:] {
		word, raw, ok := strings.Cut(field, " ")
		if !ok {
			return Record{}, fmt.Errorf("%w: bad pair field %q", internalerr.ErrInvalidRecord, field)
		}
		strength, err := strconv.Atoi(raw)
		if err != nil || strength < 0 {
			return Record{}, fmt.Errorf("%w: bad strength %q", internalerr.ErrInvalidRecord, raw)
		}
		rec.Pairs = append(rec.Pairs, Pair{Word: word, Strength: strength})
	}
	return rec, nil
}

// Scorer converts stored records into scored word lists for one language.
type Scorer struct {
	store    store.CoocStore
	language string
}

// NewScorer creates a scorer reading from st. The scorer does not own the
// store handle and never closes it.
func NewScorer(st store.CoocStore, language string) *Scorer {
	return &Scorer{store: st, language: language}
}

// CoocWords returns the scored word list for word: the word's own entry
// first, then each stored neighbor in record order. A word absent from
// the store yields an empty list and no error.
//
// Self score is MaxProbScore·idf²/BaseScore²; neighbor scores are
// idf·strength/BaseScore². Numeric words are dampened by
// NumericWordWeight, stop words by StopWordWeight; the numeric check
// wins when both apply.
func (s *Scorer) CoocWords(ctx context.Context, word string) ([]WordScore, error) {
	payload, ok, err := s.store.Get(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("cooc lookup %q: %w", word, err)
	}
	if !ok {
		return nil, nil
	}
	rec, err := ParseRecord(payload)
	if err != nil {
		return nil, fmt.Errorf("cooc record %q: %w", word, err)
	}

	idf := float64(rec.IDF)
	out := make([]WordScore, 0, len(rec.Pairs)+1)
	self := MaxProbScore * idf * idf / (BaseScore * BaseScore)
	out = append(out, WordScore{Word: word, Score: self * s.dampening(word)})
	for _, p := range rec.Pairs {
		score := float64(p.Strength) * idf / (BaseScore * BaseScore)
		out = append(out, WordScore{Word: p.Word, Score: score * s.dampening(p.Word)})
	}
	return out, nil
}

func (s *Scorer) dampening(word string) float64 {
	if lang.IsNumericWord(word) {
		return NumericWordWeight
	}
	if lang.IsStopWord(s.language, word) {
		return StopWordWeight
	}
	return 1.0
}
