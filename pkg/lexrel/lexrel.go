// Package lexrel ties the related-words predictor and the feature
// blending engine together behind one engine facade.
package lexrel

import (
	"context"
	"errors"
	"io"

	"github.com/cognicore/lexrel/pkg/lexrel/feature"
	"github.com/cognicore/lexrel/pkg/lexrel/predict"
	"github.com/cognicore/lexrel/pkg/lexrel/store"
)

// Options configures an Engine. CoocStore and Entries must be opened by
// the caller; the Engine takes ownership and releases both on Close.
type Options struct {
	CoocStore store.CoocStore
	Entries   store.EntrySearcher
	Language  string
	CacheSize int
}

// Engine is the main lexrel facade.
type Engine struct {
	predictor *predict.Predictor
	blender   *feature.Blender
}

// New creates an Engine with the given dependencies. On failure every
// handle passed in Options has been released.
func New(opts Options) (*Engine, error) {
	predictor, err := predict.New(opts.CoocStore, predict.Options{
		Language:  opts.Language,
		CacheSize: opts.CacheSize,
	})
	if err != nil {
		if opts.Entries != nil {
			opts.Entries.Close()
		}
		return nil, err
	}
	var blender *feature.Blender
	if opts.Entries != nil {
		blender = feature.NewBlender(opts.Entries)
	}
	return &Engine{predictor: predictor, blender: blender}, nil
}

// Close releases the store handles exactly once.
func (e *Engine) Close() error {
	err := e.predictor.Close()
	if e.blender != nil {
		err = errors.Join(err, e.blender.Close())
	}
	return err
}

// RelatedWords predicts related words for the given text.
func (e *Engine) RelatedWords(ctx context.Context, text string) (predict.Result, error) {
	return e.predictor.Predict(ctx, text)
}

// ExtractFeatures blends and writes the feature vectors of every entry
// in the backend to w, one TSV line per headword.
func (e *Engine) ExtractFeatures(ctx context.Context, w io.Writer) error {
	if e.blender == nil {
		return errors.New("no entry backend configured")
	}
	return e.blender.Run(ctx, w)
}
