package feature

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexrel/pkg/lexrel/internalerr"
	"github.com/cognicore/lexrel/pkg/lexrel/store"
	"github.com/cognicore/lexrel/pkg/lexrel/store/memstore"
)

func TestRelationWeightsParentDecay(t *testing.T) {
	entry := store.Entry{
		Word:    "w",
		Parents: []string{"p1", "p2", "p3"},
	}
	weights := relationWeights(entry)
	// First parent weight is 1/min(3+1,5); each next decays by 0.9.
	assert.InDelta(t, 0.25, weights["p1"], 1e-12)
	assert.InDelta(t, 0.25*0.9, weights["p2"], 1e-12)
	assert.InDelta(t, 0.25*0.9*0.9, weights["p3"], 1e-12)
}

func TestRelationWeightsChildAndRelated(t *testing.T) {
	entry := store.Entry{
		Word:     "w",
		Children: []string{"c1", "c2"},
		Related:  []string{"r1"},
	}
	weights := relationWeights(entry)
	// c1 starts at 1/min(2+2,5), c2 decays by 0.9, r1 at 1/min(1+2,5).
	assert.InDelta(t, 0.25, weights["c1"], 1e-12)
	assert.InDelta(t, 0.225, weights["c2"], 1e-12)
	assert.InDelta(t, 1.0/3.0, weights["r1"], 1e-12)
}

func TestRelationWeightsLongListsClampAtFive(t *testing.T) {
	entry := store.Entry{
		Word:    "w",
		Parents: []string{"p1", "p2", "p3", "p4", "p5", "p6"},
	}
	weights := relationWeights(entry)
	assert.InDelta(t, 0.2, weights["p1"], 1e-12) // 1/min(7,5)
}

func TestRelationWeightsMaxMerge(t *testing.T) {
	// x gets 1/2 from the parent list and 1/min(4,5)*0.9 = 0.225 from
	// the related list; the stronger weight wins.
	entry := store.Entry{
		Word:    "w",
		Parents: []string{"x"},
		Related: []string{"other", "x"},
	}
	weights := relationWeights(entry)
	assert.InDelta(t, 0.5, weights["x"], 1e-12)
}

func TestBlendEntryPropagatesRelatedFeatures(t *testing.T) {
	ctx := context.Background()
	backend := memstore.NewEntrySearcher()
	backend.Add(store.Entry{
		Word:        "river",
		Probability: 0.002,
		Features:    map[string]float64{"water": 0.8},
	})

	blender := NewBlender(backend)
	features, err := blender.BlendEntry(ctx, store.Entry{
		Word:        "bank",
		Probability: 0.001,
		Related:     []string{"river"},
		Features:    map[string]float64{"fin": 0.9},
	})
	require.NoError(t, err)

	byLabel := make(map[string]float64, len(features))
	for _, f := range features {
		byLabel[f.Label] = f.Score
	}
	require.Contains(t, byLabel, "fin")
	require.Contains(t, byLabel, "water")

	// river is more probable than bank, so the ratio clamps to 1 and
	// water propagates at the bare relation weight 1/3. After
	// normalization by fin's 0.9: (0.8/3)/0.9.
	assert.Equal(t, 1.0, byLabel["fin"])
	assert.InDelta(t, 0.8/3.0/0.9, byLabel["water"], 1e-12)

	// Output is sorted descending.
	assert.Equal(t, "fin", features[0].Label)
}

func TestBlendEntryProbabilityRatio(t *testing.T) {
	ctx := context.Background()
	backend := memstore.NewEntrySearcher()
	backend.Add(store.Entry{
		Word:        "rare",
		Probability: 0.0001,
		Features:    map[string]float64{"x": 1.0},
	})

	blender := NewBlender(backend)
	features, err := blender.BlendEntry(ctx, store.Entry{
		Word:        "common",
		Probability: 0.01,
		Related:     []string{"rare"},
		Features:    map[string]float64{"y": 1.0},
	})
	require.NoError(t, err)

	byLabel := make(map[string]float64, len(features))
	for _, f := range features {
		byLabel[f.Label] = f.Score
	}
	// ratio = 0.0001/0.01 = 0.01, sqrt = 0.1, weight = 1/3. y stays the
	// maximum at 1.0, so x normalizes to 0.1/3.
	assert.InDelta(t, 0.1/3.0, byLabel["x"], 1e-12)
}

func TestBlendEntrySkipsFuzzyMatches(t *testing.T) {
	ctx := context.Background()
	backend := memstore.NewEntrySearcher()
	backend.Add(store.Entry{
		Word:        "running",
		Probability: 0.002,
		Features:    map[string]float64{"motion": 1.0},
	})
	// The backend also surfaces "running" for the query "run".
	backend.AddAlias("run", "running")

	blender := NewBlender(backend)
	features, err := blender.BlendEntry(ctx, store.Entry{
		Word:        "walk",
		Probability: 0.001,
		Related:     []string{"run"},
		Features:    map[string]float64{"gait": 0.5},
	})
	require.NoError(t, err)
	for _, f := range features {
		assert.NotEqual(t, "motion", f.Label, "fuzzy match must not propagate")
	}
}

func TestBlendEntryExcludesInternalLabels(t *testing.T) {
	ctx := context.Background()
	backend := memstore.NewEntrySearcher()
	backend.Add(store.Entry{
		Word:        "rel",
		Probability: 0.002,
		Features:    map[string]float64{"ok": 0.5, "__hidden": 9.0},
	})

	blender := NewBlender(backend)
	features, err := blender.BlendEntry(ctx, store.Entry{
		Word:        "w",
		Probability: 0.001,
		Related:     []string{"rel"},
		Features:    map[string]float64{"keep": 1.0, "__meta": 2.0},
	})
	require.NoError(t, err)
	for _, f := range features {
		assert.False(t, strings.HasPrefix(f.Label, "__"), "internal label %q leaked", f.Label)
	}
}

func TestBlendEntryNoFeaturesIsError(t *testing.T) {
	ctx := context.Background()
	blender := NewBlender(memstore.NewEntrySearcher())
	_, err := blender.BlendEntry(ctx, store.Entry{
		Word:     "w",
		Features: map[string]float64{"__only_internal": 1.0},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrNoFeatures))
}

func TestBlendEntryNormalizationAndCap(t *testing.T) {
	ctx := context.Background()
	blender := NewBlender(memstore.NewEntrySearcher())

	features := make(map[string]float64, 120)
	for i := 0; i < 120; i++ {
		features[fmt.Sprintf("label%03d", i)] = float64(i + 1)
	}
	out, err := blender.BlendEntry(ctx, store.Entry{Word: "big", Features: features})
	require.NoError(t, err)

	assert.Len(t, out, MaxFeatures)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score, "not sorted at %d", i)
	}
	for _, f := range out {
		assert.LessOrEqual(t, f.Score, 1.0)
		assert.GreaterOrEqual(t, f.Score, 0.0)
	}
}

func TestBlendEntryMaxIsExactlyOne(t *testing.T) {
	ctx := context.Background()
	blender := NewBlender(memstore.NewEntrySearcher())
	out, err := blender.BlendEntry(ctx, store.Entry{
		Word:     "w",
		Features: map[string]float64{"a": 0.3, "b": 0.7, "c": 0.1},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 1.0, out[0].Score)
	assert.Equal(t, "b", out[0].Label)
	assert.Equal(t, "1.000", fmt.Sprintf("%.3f", out[0].Score))
}

func TestBlendEntryDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	backend := memstore.NewEntrySearcher()
	backend.Add(store.Entry{
		Word:        "rel",
		Probability: 0.002,
		Features:    map[string]float64{"extra": 0.5},
	})

	blender := NewBlender(backend)
	in := store.Entry{
		Word:        "w",
		Probability: 0.001,
		Related:     []string{"rel"},
		Features:    map[string]float64{"own": 1.0},
	}
	_, err := blender.BlendEntry(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"own": 1.0}, in.Features)
}

func TestRunPagesAllEntries(t *testing.T) {
	ctx := context.Background()
	backend := memstore.NewEntrySearcher()
	for i := 0; i < PageSize+3; i++ {
		backend.Add(store.Entry{
			Word:     fmt.Sprintf("word%03d", i),
			Grade:    i,
			Features: map[string]float64{"f": 1.0},
		})
	}

	blender := NewBlender(backend)
	var sb strings.Builder
	require.NoError(t, blender.Run(ctx, &sb))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, PageSize+3)
	assert.Equal(t, "word000\tf\t1.000", lines[0])
	assert.Equal(t, fmt.Sprintf("word%03d\tf\t1.000", PageSize+2), lines[len(lines)-1])
}

func TestFormatLine(t *testing.T) {
	line := FormatLine("bank", []Feature{
		{Label: "fin", Score: 1.0},
		{Label: "water", Score: 0.2963},
	})
	assert.Equal(t, "bank\tfin\t1.000\twater\t0.296\n", line)
}
