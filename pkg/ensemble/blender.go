// Package ensemble blends the outputs of every model in a bundle into the final match
// predictions. Each task degrades to a fixed fallback on any failure, so callers always
// receive a well-formed result.
package ensemble

import (
	"errors"
	"fmt"

	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/features"
	"github.com/richard-senior/matchcast/pkg/form"
	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/richard-senior/matchcast/pkg/model"
)

var (
	errNoBundle    = errors.New("no model bundle")
	errNoScaler    = errors.New("bundle has no scaler")
	errEmptyFamily = errors.New("model family is empty")
	errNoSource    = errors.New("no history source")
)

// Blender answers prediction requests from one immutable bundle and a history source.
// It holds no mutable state and may be shared between goroutines.
type Blender struct {
	bundle *model.Bundle
	source history.Source
	window int
}

type Option func(*Blender)

// WithWindow sets how many recent matches feed each side's mean vector
func WithWindow(n int) Option {
	return func(b *Blender) {
		if n > 0 {
			b.window = n
		}
	}
}

func New(bundle *model.Bundle, source history.Source, opts ...Option) *Blender {
	b := &Blender{bundle: bundle, source: source, window: form.DefaultWindow}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// guard runs fn and converts a returned error or a panic into a logged failure
func guard(task, home, away string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn(fmt.Sprintf("Recovered from panic during %s prediction for %s vs %s:", task, home, away), fmt.Sprint(r))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		logger.Warn(fmt.Sprintf("Falling back for %s prediction of %s vs %s:", task, home, away), err)
		return false
	}
	return true
}

// meanVector averages the features of a team's recent matches and scales the result
func (b *Blender) meanVector(team string) ([]float64, error) {
	matches, err := b.source.TeamHistory(team)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", team, err)
	}
	rows, _ := features.Build(form.Recent(matches, b.window))
	mean, err := features.Mean(rows)
	if err != nil {
		return nil, fmt.Errorf("features of %s: %w", team, err)
	}
	scaled, err := b.bundle.Scaler.Transform(mean)
	if err != nil {
		return nil, fmt.Errorf("scale %s: %w", team, err)
	}
	return scaled, nil
}

// prepare returns the scaled mean vectors of both sides for a family
func (b *Blender) prepare(home, away string, family model.Family) ([]float64, []float64, error) {
	if len(family) == 0 {
		return nil, nil, errEmptyFamily
	}
	h, err := b.meanVector(home)
	if err != nil {
		return nil, nil, err
	}
	a, err := b.meanVector(away)
	if err != nil {
		return nil, nil, err
	}
	return h, a, nil
}

func (b *Blender) ready() error {
	switch {
	case b.bundle == nil:
		return errNoBundle
	case b.bundle.Scaler == nil:
		return errNoScaler
	case b.source == nil:
		return errNoSource
	}
	return nil
}
