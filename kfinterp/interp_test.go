package kfinterp

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/spath"
)

// recorder is a Target capturing the last written pose.
type recorder struct {
	pose  spath.Pose
	calls int
}

func (r *recorder) SetPose(p spath.Pose) {
	r.pose = p
	r.calls++
}

// movingSource is a mutable Source.
type movingSource struct {
	pose spath.Pose
}

func (s *movingSource) Pose() spath.Pose {
	return s.pose
}

var zaxis = r3.Vector{Z: 1}

func poseAt(t float64) spath.Pose {
	return spath.Pose{
		Position:    r3.Vector{X: t, Y: 2 * t, Z: -t / 2},
		Orientation: spath.AxisAngle(zaxis, 0.3*t),
	}
}

func testInterpolator(t *testing.T, times ...float64) (*Interpolator, *recorder) {
	t.Helper()
	rec := &recorder{}
	ipl := New(rec)
	for _, tm := range times {
		if err := ipl.AddKeyFrameAt(poseAt(tm), tm); err != nil {
			t.Fatalf("adding keyframe at t=%g failed: %v", tm, err)
		}
	}
	return ipl, rec
}

func TestAddKeyFrameRejectsNonMonotoneTime(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t, 0, 1)
	err := ipl.AddKeyFrameAt(poseAt(0.5), 0.5)
	if !errors.Is(err, ErrTimeNotMonotone) {
		t.Fatalf("expected ErrTimeNotMonotone, got %v", err)
	}
	if ipl.N() != 2 {
		t.Fatalf("rejected keyframe must not be inserted, N=%d", ipl.N())
	}
	if tm, _ := ipl.KeyFrameTime(1); tm != 1 {
		t.Fatalf("sequence order disturbed, time(1)=%g", tm)
	}
}

func TestAddKeyFrameAllowsEqualTimes(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t, 0, 1)
	if err := ipl.AddKeyFrameAt(poseAt(1), 1); err != nil {
		t.Fatalf("equal time should be accepted, got %v", err)
	}
}

func TestAutoTimeAssignment(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t)
	for i := 0; i < 3; i++ {
		if err := ipl.AddKeyFrame(poseAt(float64(i))); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}
	for i, want := range []float64{0, 1, 2} {
		if tm, _ := ipl.KeyFrameTime(i); tm != want {
			t.Fatalf("auto time of keyframe %d is %g, want %g", i, tm, want)
		}
	}
}

func TestDuration(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t)
	if ipl.Duration() != 0 {
		t.Fail()
	}
	ipl.AddKeyFrameAt(poseAt(3), 3)
	if ipl.Duration() != 0 {
		t.Fail()
	}
	ipl.AddKeyFrameAt(poseAt(5.5), 5.5)
	if d := ipl.Duration(); d != ipl.LastTime()-ipl.FirstTime() || d != 2.5 {
		t.Fatalf("duration is %g, want 2.5", d)
	}
}

func TestEmptySequenceDefaults(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, rec := testInterpolator(t)
	if ipl.FirstTime() != 0 || ipl.LastTime() != 0 || ipl.Duration() != 0 {
		t.Fail()
	}
	if ev := ipl.InterpolateAt(1.5); ev != 0 {
		t.Fatalf("interpolating an empty path should be a no-op, got event %b", ev)
	}
	if ipl.Time() != 1.5 {
		t.Fatalf("interpolating must still set the time, got %g", ipl.Time())
	}
	if rec.calls != 0 {
		t.Fatalf("target must not be written, got %d calls", rec.calls)
	}
	if len(ipl.PathSamples()) != 0 {
		t.Fail()
	}
}

func TestNilTargetIsNoop(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl := New(nil)
	ipl.AddKeyFrameAt(poseAt(0), 0)
	ipl.AddKeyFrameAt(poseAt(1), 1)
	if ev := ipl.InterpolateAt(0.5); ev != 0 {
		t.Fatalf("interpolating without a target should be a no-op, got event %b", ev)
	}
}

func TestNilSourceSilentlyIgnored(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t)
	if err := ipl.TrackKeyFrameAt(nil, 0); err != nil {
		t.Fatalf("nil source must be ignored without error, got %v", err)
	}
	if ipl.N() != 0 {
		t.Fail()
	}
}

func TestInterpolationPassesThroughKeyFrames(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	times := []float64{0, 1, 2.5, 4}
	ipl, rec := testInterpolator(t, times...)
	for i, tm := range times {
		if ev := ipl.InterpolateAt(tm); !ev.Has(EventInterpolated) {
			t.Fatalf("no interpolation event at keyframe %d", i)
		}
		want := poseAt(tm)
		if rec.pose.Position != want.Position {
			t.Fatalf("position at keyframe %d is %v, want %v", i, rec.pose.Position, want.Position)
		}
		if !rec.pose.Orientation.Equal(want.Orientation) {
			t.Fatalf("orientation at keyframe %d is %s, want %s", i, rec.pose.Orientation, want.Orientation)
		}
	}
}

func TestInterpolationIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, rec := testInterpolator(t, 0, 1, 2, 3)
	for _, tm := range []float64{0.0, 0.7, 1.5, 2.9, 3.0} {
		ipl.InterpolateAt(tm)
		first := rec.pose
		ipl.InterpolateAt(tm)
		if rec.pose != first {
			t.Fatalf("re-evaluation at t=%g is not bit-identical: %s vs %s", tm, first, rec.pose)
		}
	}
}

func TestRefreshMakesOrientationsHemisphereConsistent(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rec := &recorder{}
	ipl := New(rec)
	ipl.AddKeyFrameAt(spath.Pose{Orientation: spath.AxisAngle(zaxis, 0.2)}, 0)
	ipl.AddKeyFrameAt(spath.Pose{Orientation: spath.AxisAngle(zaxis, 0.4).Negated()}, 1)
	ipl.AddKeyFrameAt(spath.Pose{Orientation: spath.AxisAngle(zaxis, 0.6)}, 2)
	ipl.InterpolateAt(0.5) // triggers the lazy refresh
	prev := ipl.frames[0].q
	for i, kf := range ipl.frames {
		if prev.Dot(kf.q) < 0 {
			t.Fatalf("keyframes %d-1,%d are on opposite hemispheres", i, i)
		}
		prev = kf.q
	}
}

func TestLoopPlaybackWrapsAround(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t, 0, 1, 2)
	ipl.SetLoop(true)
	ipl.SetPeriod(time.Second)
	ipl.SetTime(0)
	var ev Event
	for i := 0; i < 3; i++ {
		ev = ipl.Advance()
	}
	if !ev.Has(EventEndReached) {
		t.Fatal("crossing the last keyframe must report the end")
	}
	if ipl.Time() != 1 {
		t.Fatalf("time should wrap to firstTime+overshoot = 1, got %g", ipl.Time())
	}
}

func TestPlaybackStopsAtLastKeyFrame(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, rec := testInterpolator(t, 0, 1, 2)
	ipl.Start(time.Second) // evaluates at t=0 and advances to t=1
	if !ipl.IsPlaying() {
		t.Fatal("playback should have started")
	}
	ipl.Advance() // evaluates at t=1, advances to t=2
	ev := ipl.Advance()
	if !ev.Has(EventEndReached) || !ev.Has(EventInterpolated) {
		t.Fatalf("final advance should evaluate and report the end, got %b", ev)
	}
	if ipl.IsPlaying() {
		t.Fatal("playback should have stopped")
	}
	if ipl.Time() != 2 {
		t.Fatalf("time should rest exactly on the last keyframe, got %g", ipl.Time())
	}
	if want := poseAt(2); rec.pose.Position != want.Position {
		t.Fatalf("final pose is %v, want the last keyframe %v", rec.pose.Position, want.Position)
	}
}

func TestNegativeSpeedStopsAtFirstKeyFrame(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, rec := testInterpolator(t, 0, 1, 2)
	ipl.SetSpeed(-1)
	ipl.Start(time.Second) // rewinds to lastTime, evaluates, advances to t=1
	ipl.Advance()          // evaluates at t=1, advances to t=0
	ev := ipl.Advance()
	if !ev.Has(EventEndReached) || ipl.IsPlaying() {
		t.Fatalf("backwards playback should stop at the first keyframe, event %b", ev)
	}
	if ipl.Time() != 0 || rec.pose.Position != poseAt(0).Position {
		t.Fatalf("final pose should be the first keyframe, t=%g pos=%v", ipl.Time(), rec.pose.Position)
	}
}

func TestStartRewindsAfterEnd(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, rec := testInterpolator(t, 0, 1, 2)
	ipl.SetTime(2)
	ipl.Start(time.Second)
	if !ipl.IsPlaying() {
		t.Fatal("playback should restart from the beginning")
	}
	if rec.pose.Position != poseAt(0).Position {
		t.Fatalf("start should have evaluated the first keyframe, got %v", rec.pose.Position)
	}
}

func TestToggle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t, 0, 1)
	ipl.Toggle()
	if !ipl.IsPlaying() {
		t.Fail()
	}
	ipl.Toggle()
	if ipl.IsPlaying() {
		t.Fail()
	}
}

func TestTrackedSourceRefreshesLazily(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rec := &recorder{}
	ipl := New(rec)
	src := &movingSource{pose: poseAt(0)}
	if err := ipl.TrackKeyFrameAt(src, 0); err != nil {
		t.Fatal(err)
	}
	ipl.AddKeyFrameAt(poseAt(1), 1)
	ipl.InterpolateAt(0)
	if rec.pose.Position.X != 0 {
		t.Fatalf("initial tracked position should be 0, got %g", rec.pose.Position.X)
	}
	src.pose.Position.X = 4
	ipl.InterpolateAt(0)
	if rec.pose.Position.X != 0 {
		t.Fatal("source mutation must not leak in before InvalidateValues")
	}
	ipl.InvalidateValues()
	ipl.InterpolateAt(0)
	if rec.pose.Position.X != 4 {
		t.Fatalf("tracked position should follow the source, got %g", rec.pose.Position.X)
	}
}

func TestKeyFrameAccessors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t, 0, 1.5)
	pose, err := ipl.KeyFrame(1)
	if err != nil || !pose.Equal(poseAt(1.5)) {
		t.Fatalf("unexpected keyframe 1: %s (%v)", pose, err)
	}
	if _, err = ipl.KeyFrame(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err = ipl.KeyFrameTime(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestDeletePath(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ipl, _ := testInterpolator(t, 0, 1, 2)
	ipl.Start(0)
	ipl.DeletePath()
	if ipl.N() != 0 || ipl.IsPlaying() || ipl.Duration() != 0 {
		t.Fail()
	}
	if len(ipl.PathSamples()) != 0 {
		t.Fail()
	}
}
