// Package sched drives keyframe playback from a wall-clock ticker. It is
// the external-scheduler collaborator of package kfinterp: the
// interpolator itself stays synchronous and single-threaded, and a Runner
// feeds it Advance calls at the interpolation period.
package sched

import (
	"context"
	"errors"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/spath/kfinterp"
)

// tracer writes to trace with key 'sched'
func tracer() tracing.Trace {
	return tracing.Select("sched")
}

// ErrNoKeyFrames indicates playback was requested on an empty path.
var ErrNoKeyFrames = errors.New("interpolator has no keyframes")

// Runner drives one Interpolator. All interpolator calls happen on the
// goroutine executing Run, preserving the engine's single-threaded model.
type Runner struct {
	ipl *kfinterp.Interpolator

	// Notify, if non-nil, is invoked after every tick that reported an
	// event (playback end, loop wrap, ordinary evaluation).
	Notify func(kfinterp.Event)
}

// New creates a Runner for ipl.
func New(ipl *kfinterp.Interpolator) *Runner {
	return &Runner{ipl: ipl}
}

// Run starts playback and calls Advance once per interpolation period
// until playback stops or ctx is cancelled. A positive period replaces the
// interpolator's current period. Run returns nil when playback ran to the
// end of the path, ctx.Err() on cancellation, and ErrNoKeyFrames when
// there is nothing to play.
func (r *Runner) Run(ctx context.Context, period time.Duration) error {
	if r.ipl.N() == 0 {
		return ErrNoKeyFrames
	}
	r.ipl.Start(period)
	if !r.ipl.IsPlaying() {
		// The immediate evaluation in Start already finished playback
		// (a one-keyframe path does this).
		return nil
	}
	ticker := time.NewTicker(r.ipl.Period())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.ipl.Stop()
			return ctx.Err()
		case <-ticker.C:
			ev := r.ipl.Advance()
			if ev != 0 && r.Notify != nil {
				r.Notify(ev)
			}
			if ev.Has(kfinterp.EventEndReached) {
				tracer().Debugf("playback reached path end at t=%g", r.ipl.Time())
			}
			if !r.ipl.IsPlaying() {
				return nil
			}
		}
	}
}
