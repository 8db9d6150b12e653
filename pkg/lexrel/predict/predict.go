// Package predict implements the related-words predictor: two-hop
// expansion over the co-occurrence graph followed by a cosine-similarity
// rerank of the candidate pool against the seed profile.
package predict

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/lexrel/pkg/lexrel/cooc"
	"github.com/cognicore/lexrel/pkg/lexrel/internalerr"
	"github.com/cognicore/lexrel/pkg/lexrel/lang"
	"github.com/cognicore/lexrel/pkg/lexrel/store"
)

// Expansion limits. TraceCoocWords bounds the first-hop words whose own
// neighbors are explored; CheckCoocWords and CheckRelWords bound how many
// first-hop and second-hop words enter the rerank pool; NumFeatures is
// the seed-profile support used by the similarity function.
const (
	TraceCoocWords = 32
	CheckCoocWords = 16
	CheckRelWords  = 128
	NumFeatures    = 256
)

// DefaultCacheSize is the default capacity of the decoded-record cache.
const DefaultCacheSize = 4096

// Options configures a Predictor.
type Options struct {
	// Language selects the stop-word rules applied by the score function.
	Language string
	// CacheSize overrides DefaultCacheSize when positive.
	CacheSize int
}

// Result holds one prediction. RelWords is ranked by similarity to the
// seed profile, CoocWords by aggregate co-occurrence score; both orders
// are deterministic for a fixed input and store state.
type Result struct {
	ID        string
	RelWords  []cooc.WordScore
	CoocWords []cooc.WordScore
}

// Predictor computes related words from an opened co-occurrence store.
// It owns the store handle: Close releases it exactly once, and a failed
// construction releases it before returning.
type Predictor struct {
	store    store.CoocStore
	scorer   *cooc.Scorer
	cache    *lru.Cache[string, []cooc.WordScore]
	language string
	entropy  *ulid.MonotonicEntropy
}

// New creates a Predictor over st, taking ownership of the handle.
func New(st store.CoocStore, opts Options) (*Predictor, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: nil cooc store", internalerr.ErrInvalidInput)
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []cooc.WordScore](size)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create record cache: %w", err)
	}
	return &Predictor{
		store:    st,
		scorer:   cooc.NewScorer(st, opts.Language),
		cache:    cache,
		language: opts.Language,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the underlying store handle.
func (p *Predictor) Close() error {
	return p.store.Close()
}

// Predict computes related words for text. Empty text yields a Result
// with empty word lists, not an error.
func (p *Predictor) Predict(ctx context.Context, text string) (Result, error) {
	result := Result{ID: ulid.MustNew(ulid.Now(), p.entropy).String()}

	seeds := make(map[string]struct{})
	for _, w := range lang.Tokenize(p.language, text) {
		seeds[w] = struct{}{}
	}
	if len(seeds) > 1 {
		// Multi-word input: the whole normalized phrase may have its own
		// record (e.g. "new york").
		seeds[lang.NormalizeText(text)] = struct{}{}
	}

	// Aggregate co-occurrence scores across all seeds.
	coocScores := make(map[string]float64)
	for seed := range seeds {
		list, err := p.coocWords(ctx, seed)
		if err != nil {
			return Result{}, err
		}
		for _, ws := range list {
			coocScores[ws.Word] += ws.Score
		}
	}
	result.CoocWords = sortScores(coocScores)

	// Two-hop expansion: a candidate's score is its strongest path,
	// hop1_score * hop2_score.
	relScores := make(map[string]float64)
	traces := 0
	for _, hop1 := range result.CoocWords {
		if traces >= TraceCoocWords {
			break
		}
		if _, ok := seeds[hop1.Word]; ok {
			continue
		}
		list, err := p.coocWords(ctx, hop1.Word)
		if err != nil {
			return Result{}, err
		}
		for _, hop2 := range list {
			if _, ok := seeds[hop2.Word]; ok {
				continue
			}
			if score := hop1.Score * hop2.Score; score > relScores[hop2.Word] {
				relScores[hop2.Word] = score
			}
		}
		traces++
	}
	sortedRel := sortScores(relScores)

	// Candidate pool: seeds, then the top first-hop and second-hop words.
	// Only newly added words consume the quotas.
	pool := make(map[string]struct{}, len(seeds)+CheckCoocWords+CheckRelWords)
	for seed := range seeds {
		pool[seed] = struct{}{}
	}
	addCandidates(pool, result.CoocWords, CheckCoocWords)
	addCandidates(pool, sortedRel, CheckRelWords)

	// Rerank every candidate by profile similarity to the seed.
	scored := make([]cooc.WordScore, 0, len(pool))
	for word := range pool {
		list, err := p.coocWords(ctx, word)
		if err != nil {
			return Result{}, err
		}
		scored = append(scored, cooc.WordScore{
			Word:  word,
			Score: Similarity(result.CoocWords, list),
		})
	}
	sortWordScores(scored)
	result.RelWords = scored

	return result, nil
}

// coocWords is the cached read path for scored word lists. Negative
// results (absent words) are cached as well.
func (p *Predictor) coocWords(ctx context.Context, word string) ([]cooc.WordScore, error) {
	if list, ok := p.cache.Get(word); ok {
		return list, nil
	}
	list, err := p.scorer.CoocWords(ctx, word)
	if err != nil {
		return nil, err
	}
	p.cache.Add(word, list)
	return list, nil
}

func addCandidates(pool map[string]struct{}, ranked []cooc.WordScore, quota int) {
	added := 0
	for _, ws := range ranked {
		if added >= quota {
			break
		}
		if _, ok := pool[ws.Word]; ok {
			continue
		}
		pool[ws.Word] = struct{}{}
		added++
	}
}

func sortScores(scores map[string]float64) []cooc.WordScore {
	out := make([]cooc.WordScore, 0, len(scores))
	for word, score := range scores {
		out = append(out, cooc.WordScore{Word: word, Score: score})
	}
	sortWordScores(out)
	return out
}

// sortWordScores orders by score descending; ties break on the word so
// identical inputs always produce identical orderings.
func sortWordScores(list []cooc.WordScore) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].Word < list[j].Word
	})
}
