// Package feature builds per-headword feature vectors by propagating
// features from related dictionary entries with decayed weights.
package feature

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/lexrel/pkg/lexrel/internalerr"
	"github.com/cognicore/lexrel/pkg/lexrel/store"
)

const (
	// PageSize is the fixed page size used when iterating entries by grade.
	PageSize = 100
	// MaxFeatures caps the emitted vector length.
	MaxFeatures = 100
	// MinProbability floors entry probabilities before they are used as
	// divisors or ratio numerators.
	MinProbability = 1e-6
	// RelationDecay multiplies the weight of each successive word in a
	// relation list.
	RelationDecay = 0.9

	internalLabelPrefix = "__"
)

// Feature is one labeled score in a blended vector.
type Feature struct {
	Label string
	Score float64
}

// Blender merges features from an entry's related words into the entry's
// own vector. It owns the searcher handle; Close releases it.
type Blender struct {
	searcher store.EntrySearcher
	pageSize int
}

// NewBlender creates a Blender over the given search backend.
func NewBlender(searcher store.EntrySearcher) *Blender {
	return &Blender{searcher: searcher, pageSize: PageSize}
}

// Close releases the search backend handle.
func (b *Blender) Close() error {
	return b.searcher.Close()
}

// Run iterates all entries in ascending grade order, page by page, and
// writes one blended TSV line per entry to w.
func (b *Blender) Run(ctx context.Context, w io.Writer) error {
	for pageIndex := 1; ; pageIndex++ {
		entries, err := b.searcher.SearchByGrade(ctx, b.pageSize, pageIndex, true)
		if err != nil {
			return fmt.Errorf("search page %d: %w", pageIndex, err)
		}
		if len(entries) == 0 {
			return nil
		}
		for _, entry := range entries {
			features, err := b.BlendEntry(ctx, entry)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, FormatLine(entry.Word, features)); err != nil {
				return fmt.Errorf("write %q: %w", entry.Word, err)
			}
		}
	}
}

// BlendEntry computes the blended, normalized feature vector for one
// entry. The entry's own features are never mutated; blending works on
// an owned accumulator. An entry with no non-internal features after
// blending is a contract violation upstream and yields ErrNoFeatures.
func (b *Blender) BlendEntry(ctx context.Context, entry store.Entry) ([]Feature, error) {
	features := make(map[string]float64, len(entry.Features))
	for label, score := range entry.Features {
		features[label] = score
	}

	coreProb := math.Max(entry.Probability, MinProbability)
	for word, weight := range relationWeights(entry) {
		if err := b.addFeatures(ctx, word, weight, coreProb, features); err != nil {
			return nil, err
		}
	}

	for label := range features {
		if strings.HasPrefix(label, internalLabelPrefix) {
			delete(features, label)
		}
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("entry %q: %w", entry.Word, internalerr.ErrNoFeatures)
	}

	maxScore := math.Inf(-1)
	for _, score := range features {
		if score > maxScore {
			maxScore = score
		}
	}

	// Two-stage cap: take at most MaxFeatures labels before normalizing,
	// then sort and cap again. The first cut is in map order, which only
	// matters for entries carrying more than MaxFeatures labels.
	out := make([]Feature, 0, len(features))
	for label, score := range features {
		if len(out) >= MaxFeatures {
			break
		}
		out = append(out, Feature{Label: label, Score: score / maxScore})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > MaxFeatures {
		out = out[:MaxFeatures]
	}
	return out, nil
}

// addFeatures folds the features of every entry exactly matching word
// into the accumulator, damped by the relation weight and by the square
// root of the probability ratio against the headword.
func (b *Blender) addFeatures(ctx context.Context, word string, weight, coreProb float64, features map[string]float64) error {
	entries, err := b.searcher.SearchExact(ctx, word)
	if err != nil {
		return fmt.Errorf("search %q: %w", word, err)
	}
	for _, entry := range entries {
		// The backend may return fuzzy or inflected matches.
		if entry.Word != word {
			continue
		}
		prob := math.Max(entry.Probability, MinProbability)
		ratio := math.Min(prob/coreProb, 1.0)
		for label, score := range entry.Features {
			if strings.HasPrefix(label, internalLabelPrefix) {
				continue
			}
			features[label] += score * weight * math.Sqrt(ratio)
		}
	}
	return nil
}

// relationWeights assigns a weight to each related word. Parents start
// at 1/min(n+1,5), children and related words at 1/min(n+2,5); each
// subsequent word in a list decays by RelationDecay. A word appearing in
// several lists keeps its strongest weight.
func relationWeights(entry store.Entry) map[string]float64 {
	weights := make(map[string]float64)
	merge := func(words []string, initial float64) {
		weight := initial
		for _, w := range words {
			if weight > weights[w] {
				weights[w] = weight
			}
			weight *= RelationDecay
		}
	}
	if n := len(entry.Parents); n > 0 {
		merge(entry.Parents, 1.0/math.Min(float64(n+1), 5))
	}
	if n := len(entry.Children); n > 0 {
		merge(entry.Children, 1.0/math.Min(float64(n+2), 5))
	}
	if n := len(entry.Related); n > 0 {
		merge(entry.Related, 1.0/math.Min(float64(n+2), 5))
	}
	return weights
}

// FormatLine renders one output line: the word, then alternating label
// and %.3f-formatted score columns, tab-separated.
func FormatLine(word string, features []Feature) string {
	var sb strings.Builder
	sb.WriteString(word)
	for _, f := range features {
		sb.WriteByte('\t')
		sb.WriteString(f.Label)
		sb.WriteByte('\t')
		sb.WriteString(fmt.Sprintf("%.3f", f.Score))
	}
	sb.WriteByte('\n')
	return sb.String()
}
