package kfinterp

import (
	"fmt"
	"time"

	"github.com/npillmayer/spath"
)

// Event is a bitmask reporting what an evaluation did. Callers inspect it
// after Advance or InterpolateAt; there is no hidden listener graph.
type Event int

// Events reported by Advance and InterpolateAt.
const (
	// EventInterpolated is set whenever a pose was evaluated and written
	// into the target.
	EventInterpolated Event = 1 << iota
	// EventEndReached is set when playback time crossed the first or last
	// keyframe's time, i.e. after a loop wrap-around or a final evaluation.
	EventEndReached
)

// Has is a predicate: does e contain event flag f?
func (e Event) Has(f Event) bool {
	return e&f != 0
}

// DefaultPeriod is the tick granularity a fresh Interpolator advertises to
// its scheduler.
const DefaultPeriod = 40 * time.Millisecond

// Interpolator owns a time-ordered keyframe sequence and evaluates the
// smooth path through it. All methods are synchronous and must be called
// from a single goroutine.
type Interpolator struct {
	frames []*KeyFrame
	target Target // externally owned sink, may be nil

	time    float64
	speed   float64
	period  time.Duration
	playing bool
	loop    bool
	closed  bool

	// Validity flags, each gating a distinct cache. They are independent;
	// invalidating one never implies invalidating another.
	valuesValid bool
	pathValid   bool
	cursorValid bool
	splineValid bool

	cursor      cursorWindow
	coeff       splineCoeff
	path        []spath.Pose
	cursorMoves int // cursor walk instrumentation
}

// New creates an Interpolator writing into target. The target may be nil
// and (re)bound later with SetTarget; evaluation without a target is a
// no-op. Speed defaults to 1.0 and period to DefaultPeriod.
func New(target Target) *Interpolator {
	return &Interpolator{
		target:      target,
		speed:       1.0,
		period:      DefaultPeriod,
		valuesValid: true,
	}
}

// SetTarget (re)binds the externally owned pose sink. A nil target detaches
// the interpolator from its sink.
func (ipl *Interpolator) SetTarget(target Target) {
	ipl.target = target
}

// Target returns the currently bound pose sink, or nil.
func (ipl *Interpolator) Target() Target {
	return ipl.target
}

// === Keyframe Sequence =====================================================

// AddKeyFrameAt appends a frozen copy of pose at time t. Times must be
// monotonously non-decreasing over keyframes; a violating append leaves the
// sequence untouched and returns ErrTimeNotMonotone. Appending stops
// playback and rewinds the playback time to the first keyframe's time.
func (ipl *Interpolator) AddKeyFrameAt(pose spath.Pose, t float64) error {
	return ipl.appendFrame(newKeyFrame(pose, t), t)
}

// AddKeyFrame appends a frozen copy of pose, at the last keyframe's time
// plus one second (or 0.0 on an empty sequence).
func (ipl *Interpolator) AddKeyFrame(pose spath.Pose) error {
	return ipl.AddKeyFrameAt(pose, ipl.nextTime())
}

// TrackKeyFrameAt appends a keyframe tracking the live source src at time
// t: the keyframe re-reads src's current pose whenever values have been
// invalidated, which allows editing the path even while it plays. A nil
// src is silently ignored. The interpolator never owns src.
func (ipl *Interpolator) TrackKeyFrameAt(src Source, t float64) error {
	if src == nil {
		return nil
	}
	return ipl.appendFrame(newTrackingKeyFrame(src, t), t)
}

// TrackKeyFrame appends a keyframe tracking src, at the last keyframe's
// time plus one second (or 0.0 on an empty sequence).
func (ipl *Interpolator) TrackKeyFrame(src Source) error {
	return ipl.TrackKeyFrameAt(src, ipl.nextTime())
}

func (ipl *Interpolator) nextTime() float64 {
	if len(ipl.frames) == 0 {
		return 0.0
	}
	return ipl.LastTime() + 1.0
}

func (ipl *Interpolator) appendFrame(kf *KeyFrame, t float64) error {
	if len(ipl.frames) == 0 {
		ipl.time = t
	} else if last := ipl.LastTime(); last > t {
		tracer().Errorf("keyframe time %g is before last keyframe time %g", t, last)
		return fmt.Errorf("%w: %g after %g", ErrTimeNotMonotone, t, last)
	}
	ipl.frames = append(ipl.frames, kf)
	ipl.valuesValid = false
	ipl.pathValid = false
	ipl.cursorValid = false
	ipl.Reset()
	return nil
}

// DeletePath removes all keyframes. Playback stops and N() drops to 0.
func (ipl *Interpolator) DeletePath() {
	ipl.Stop()
	ipl.frames = ipl.frames[:0]
	ipl.valuesValid = false
	ipl.pathValid = false
	ipl.cursorValid = false
}

// N returns the number of keyframes.
func (ipl *Interpolator) N() int {
	return len(ipl.frames)
}

// KeyFrame returns the pose of keyframe i. For a keyframe tracking a live
// source, the source's current pose is returned. The index has to be in
// the range 0..N()-1.
func (ipl *Interpolator) KeyFrame(i int) (spath.Pose, error) {
	if i < 0 || i >= len(ipl.frames) {
		return spath.Origin(), fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(ipl.frames))
	}
	kf := ipl.frames[i]
	if kf.src != nil {
		return kf.src.Pose(), nil
	}
	return kf.Pose(), nil
}

// KeyFrameTime returns the time of keyframe i. The index has to be in the
// range 0..N()-1.
func (ipl *Interpolator) KeyFrameTime(i int) (float64, error) {
	if i < 0 || i >= len(ipl.frames) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(ipl.frames))
	}
	return ipl.frames[i].time, nil
}

// FirstTime returns the time of the first keyframe, 0.0 on an empty
// sequence.
func (ipl *Interpolator) FirstTime() float64 {
	if len(ipl.frames) == 0 {
		return 0.0
	}
	return ipl.frames[0].time
}

// LastTime returns the time of the last keyframe, 0.0 on an empty
// sequence.
func (ipl *Interpolator) LastTime() float64 {
	if len(ipl.frames) == 0 {
		return 0.0
	}
	return ipl.frames[len(ipl.frames)-1].time
}

// Duration returns LastTime() - FirstTime(), which is 0.0 for less than 2
// keyframes.
func (ipl *Interpolator) Duration() float64 {
	return ipl.LastTime() - ipl.FirstTime()
}

// === Playback Parameters ===================================================

// Time returns the current playback time. It is independent of wall-clock
// time and only moves through Advance, InterpolateAt or SetTime.
func (ipl *Interpolator) Time() float64 { return ipl.time }

// SetTime changes the playback time without evaluating the path (use
// InterpolateAt to also update the target).
func (ipl *Interpolator) SetTime(t float64) { ipl.time = t }

// Speed returns the playback rate in path-seconds per wall-second.
func (ipl *Interpolator) Speed() float64 { return ipl.speed }

// SetSpeed changes the playback rate. Negative speeds play backwards.
func (ipl *Interpolator) SetSpeed(speed float64) { ipl.speed = speed }

// Period returns the tick granularity an external scheduler should use
// between Advance calls.
func (ipl *Interpolator) Period() time.Duration { return ipl.period }

// SetPeriod changes the scheduler tick granularity.
func (ipl *Interpolator) SetPeriod(period time.Duration) { ipl.period = period }

// Loop reports whether playback wraps around at the path ends.
func (ipl *Interpolator) Loop() bool { return ipl.loop }

// SetLoop makes playback wrap around at the path ends instead of stopping.
func (ipl *Interpolator) SetLoop(loop bool) { ipl.loop = loop }

// ClosedPath reports whether the path is declared closed.
func (ipl *Interpolator) ClosedPath() bool { return ipl.closed }

// SetClosedPath declares the path closed. The flag is persisted, but seam
// continuity between the last and first keyframe is not yet implemented
// (see the package documentation).
func (ipl *Interpolator) SetClosedPath(closed bool) { ipl.closed = closed }

// IsPlaying reports whether playback is started, i.e. whether an external
// scheduler should keep calling Advance.
func (ipl *Interpolator) IsPlaying() bool { return ipl.playing }

// === Playback State Machine ================================================

// Start begins playback. If period is positive it replaces the current
// Period. If the playback time already sits at or beyond the end of the
// path (in playing direction), it is rewound to the opposite end. An
// immediate evaluation at the current time follows, so the target reflects
// the starting pose right away. On an empty sequence Start does nothing.
//
// Keyframes must be added before Start, or playback stops immediately.
func (ipl *Interpolator) Start(period time.Duration) {
	if period > 0 {
		ipl.period = period
	}
	if len(ipl.frames) == 0 {
		return
	}
	if ipl.speed > 0 && ipl.time >= ipl.LastTime() {
		ipl.time = ipl.FirstTime()
	}
	if ipl.speed < 0 && ipl.time <= ipl.FirstTime() {
		ipl.time = ipl.LastTime()
	}
	ipl.playing = true
	ipl.Advance()
}

// Stop halts playback. The external scheduler must cease calling Advance.
func (ipl *Interpolator) Stop() {
	ipl.playing = false
}

// Toggle starts playback if stopped, with the current period, and stops it
// otherwise.
func (ipl *Interpolator) Toggle() {
	if ipl.playing {
		ipl.Stop()
	} else {
		ipl.Start(0)
	}
}

// Reset stops playback and rewinds the playback time to FirstTime. Call
// InterpolateAt afterwards to actually move the target there.
func (ipl *Interpolator) Reset() {
	ipl.Stop()
	ipl.time = ipl.FirstTime()
}

// Advance evaluates the path at the current playback time, then moves time
// forward by Speed × Period. When time leaves the keyframe range it either
// wraps around (Loop) or evaluates one final pose exactly at the boundary
// keyframe and stops; both report EventEndReached.
//
// An external scheduler calls Advance once per Period while IsPlaying.
func (ipl *Interpolator) Advance() Event {
	ev := ipl.InterpolateAt(ipl.time)
	ipl.time += ipl.speed * ipl.period.Seconds()
	if len(ipl.frames) == 0 {
		return ev
	}
	switch {
	case ipl.time > ipl.LastTime():
		if ipl.loop {
			ipl.time = ipl.FirstTime() + ipl.time - ipl.LastTime()
		} else {
			// Make sure the last keyframe is reached and displayed.
			ev |= ipl.InterpolateAt(ipl.LastTime())
			ipl.Stop()
		}
		ev |= EventEndReached
	case ipl.time < ipl.FirstTime():
		if ipl.loop {
			ipl.time = ipl.LastTime() - (ipl.FirstTime() - ipl.time)
		} else {
			// Make sure the first keyframe is reached and displayed.
			ev |= ipl.InterpolateAt(ipl.FirstTime())
			ipl.Stop()
		}
		ev |= EventEndReached
	}
	return ev
}

// InterpolateAt sets the playback time to t and writes the pose of the
// path at t into the target. On an empty sequence, or without a bound
// target, only the time changes and no event is reported.
func (ipl *Interpolator) InterpolateAt(t float64) Event {
	ipl.time = t
	if len(ipl.frames) == 0 || ipl.target == nil {
		return 0
	}
	if !ipl.valuesValid {
		ipl.refreshValues()
	}
	ipl.locateCursor(t)
	if !ipl.splineValid {
		ipl.updateSplineCache()
	}
	kf1 := ipl.frames[ipl.cursor.c1]
	kf2 := ipl.frames[ipl.cursor.c2]
	alpha := 0.0
	if dt := kf2.time - kf1.time; !spath.Is0(dt) {
		alpha = (t - kf1.time) / dt
	}
	ipl.target.SetPose(spath.Pose{
		Position:    ipl.coeff.at(kf1, alpha),
		Orientation: spath.Squad(kf1.q, kf1.tgQ, kf2.tgQ, kf2.q, alpha),
	})
	return EventInterpolated
}

// === Value & Tangent Refresh ===============================================

// InvalidateValues marks keyframe values dirty. Owners of tracked sources
// call this after mutating a source; the next evaluation or path rebuild
// re-reads all tracked sources and recomputes tangents.
func (ipl *Interpolator) InvalidateValues() {
	ipl.valuesValid = false
	ipl.pathValid = false
	ipl.splineValid = false
}

// refreshValues pulls current poses from tracked sources, makes the
// orientation sequence hemisphere-consistent, and recomputes all tangents.
func (ipl *Interpolator) refreshValues() {
	if len(ipl.frames) == 0 {
		ipl.valuesValid = true
		return
	}
	prevQ := ipl.frames[0].q
	for _, kf := range ipl.frames {
		kf.refreshFromSource()
		kf.flipOrientation(prevQ)
		prevQ = kf.q
	}
	prev := ipl.frames[0]
	for i, kf := range ipl.frames {
		if i+1 < len(ipl.frames) {
			kf.computeTangents(prev, ipl.frames[i+1])
		} else {
			kf.computeTangents(prev, kf)
		}
		prev = kf
	}
	ipl.valuesValid = true
}
