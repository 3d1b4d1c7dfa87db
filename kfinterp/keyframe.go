package kfinterp

import (
	"errors"

	"github.com/golang/geo/r3"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/spath"
)

// tracer writes to trace with key 'kfinterp'
func tracer() tracing.Trace {
	return tracing.Select("kfinterp")
}

var (
	// ErrTimeNotMonotone indicates an appended keyframe time precedes the last
	// keyframe's time.
	ErrTimeNotMonotone = errors.New("keyframe time is not monotone")
	// ErrIndexOutOfRange indicates a keyframe index outside 0..N()-1.
	ErrIndexOutOfRange = errors.New("keyframe index out of range")
)

// Source is a live, externally owned pose a keyframe may track. The
// interpolator only ever reads it, and never assumes ownership.
//
// A source has no push-notification channel; owners signal mutation by
// calling Interpolator.InvalidateValues, after which the next evaluation
// re-reads every tracked source.
type Source interface {
	Pose() spath.Pose
}

// Target receives interpolated poses. It is externally owned; the
// interpolator only writes to it.
type Target interface {
	SetPose(spath.Pose)
}

// KeyFrame is a snapshot of a pose at a given time, with the derived
// tangents steering the spline through it. Keyframes are owned by their
// Interpolator and ordered by non-decreasing time.
type KeyFrame struct {
	time float64
	p    r3.Vector
	q    spath.Quat
	tgP  r3.Vector  // position tangent, derived
	tgQ  spath.Quat // orientation tangent, derived
	src  Source     // non-owning; nil for frozen keyframes
}

func newKeyFrame(pose spath.Pose, t float64) *KeyFrame {
	return &KeyFrame{time: t, p: pose.Position, q: pose.Orientation}
}

func newTrackingKeyFrame(src Source, t float64) *KeyFrame {
	kf := &KeyFrame{time: t, src: src}
	kf.refreshFromSource()
	return kf
}

// Time returns the time this keyframe is anchored to.
func (kf *KeyFrame) Time() float64 {
	return kf.time
}

// Position returns the keyframe's position.
func (kf *KeyFrame) Position() r3.Vector {
	return kf.p
}

// Orientation returns the keyframe's orientation.
func (kf *KeyFrame) Orientation() spath.Quat {
	return kf.q
}

// Pose returns the keyframe's pose.
func (kf *KeyFrame) Pose() spath.Pose {
	return spath.Pose{Position: kf.p, Orientation: kf.q}
}

func (kf *KeyFrame) refreshFromSource() {
	if kf.src == nil {
		return
	}
	pose := kf.src.Pose()
	kf.p = pose.Position
	kf.q = pose.Orientation
}

// Negate the orientation if it sits on the opposite hemisphere of prev.
// q and -q are the same rotation, but SQUAD needs sign-consistent input.
func (kf *KeyFrame) flipOrientation(prev spath.Quat) {
	if prev.Dot(kf.q) < 0 {
		kf.q = kf.q.Negated()
	}
}

// Central-difference tangents from the two neighboring keyframes. At the
// path ends a neighbor degenerates to the keyframe itself, yielding a
// one-sided difference.
func (kf *KeyFrame) computeTangents(prev, next *KeyFrame) {
	kf.tgP = next.p.Sub(prev.p).Mul(0.5)
	kf.tgQ = spath.SquadTangent(prev.q, kf.q, next.q)
}
