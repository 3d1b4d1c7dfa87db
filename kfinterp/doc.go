// Package kfinterp interpolates a smooth rigid-body trajectory through a
// sparse sequence of timed keyframes.
/*

A keyframe anchors a pose (position + orientation) to a point in time.
Given a time-ordered sequence of keyframes, the Interpolator produces a
C1-continuous path passing through all of them: positions follow a cubic
Hermite spline with Catmull-Rom tangents, orientations follow spherical
quadrangle interpolation (SQUAD). The primary sources of information for
quaternion splines are:

   Animating Rotation with Quaternion Curves -- Ken Shoemake
   SIGGRAPH '85 Proceedings
   https://dl.acm.org/doi/10.1145/325334.325242

and, for the quadrangle construction:

   Quaternion Calculus and Fast Animation -- Ken Shoemake
   SIGGRAPH '87 Course Notes

The playback model follows the camera-path interpolators found in 3D
viewer toolkits: an external clock calls Advance() once per period while
playback is started, and the interpolator writes each evaluated pose into
an externally owned target.

Usage

Clients append keyframes, bind a target, and either evaluate at explicit
times or drive playback through a scheduler (package qualifiers omitted
for clarity and brevity):

   ipl := New(target)
   ipl.AddKeyFrameAt(Pose{Position: r3.Vector{X: 1}, Orientation: Identity()}, 0)
   ipl.AddKeyFrameAt(Pose{Position: r3.Vector{Y: 2}, Orientation: q1}, 1.5)
   ipl.InterpolateAt(0.8)      // writes the pose at t=0.8 into target

or, for timed playback:

   ipl.SetLoop(true)
   runner := sched.New(ipl)
   runner.Run(ctx, 40*time.Millisecond)

Keyframes may alternatively track a live external pose (TrackKeyFrameAt):
the interpolator then re-reads the source's current pose whenever its
values have been invalidated, which allows editing a path while it plays.

The interpolator is synchronous and single-threaded: every operation runs
to completion on the calling goroutine, and repeated evaluation is kept
cheap by a set of lazily rebuilt caches (keyframe tangents, the playback
cursor window, per-segment spline coefficients, and the densely sampled
path polyline).

Caveats

Closed paths (seam continuity between the last and first keyframe) are
declared and persisted but not yet honored by the interpolation itself;
only the linear loop-reset behavior of SetLoop is implemented.


BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package kfinterp
