package kfinterp

import (
	"github.com/golang/geo/r3"
	"github.com/npillmayer/spath"
)

// nbSteps is the number of path samples per keyframe segment.
const nbSteps = 30

// Mask bits selecting what a renderer should draw along the path.
const (
	// DrawPath selects the sampled position polyline.
	DrawPath = 1 << iota
	// DrawCameras selects camera-frustum markers at representative poses.
	DrawCameras
	// DrawAxes selects oriented-axes markers at representative poses.
	DrawAxes
)

// RenderPlan is the data a renderer needs to draw a keyframe path. The
// interpolator supplies sampled geometry only; all drawing happens in the
// rendering collaborator.
type RenderPlan struct {
	Polyline []r3.Vector  // sampled positions, set when DrawPath
	Markers  []spath.Pose // representative poses, set when DrawCameras or DrawAxes
	Mask     int          // the mask the plan was built for
	Scale    float64      // marker scaling, passed through to the renderer
}

// rebuildPath lazily (re)samples the whole path into a dense pose
// sequence, nbSteps samples per segment plus the final keyframe. A single
// keyframe yields exactly one sample.
func (ipl *Interpolator) rebuildPath() {
	if ipl.pathValid {
		return
	}
	ipl.path = ipl.path[:0]
	if len(ipl.frames) == 0 {
		ipl.pathValid = true
		return
	}
	if !ipl.valuesValid {
		ipl.refreshValues()
	}
	if len(ipl.frames) == 1 {
		ipl.path = append(ipl.path, ipl.frames[0].Pose())
		ipl.pathValid = true
		return
	}
	for i := 0; i+1 < len(ipl.frames); i++ {
		kf1, kf2 := ipl.frames[i], ipl.frames[i+1]
		coeff := makeSplineCoeff(kf1, kf2)
		for step := 0; step < nbSteps; step++ {
			alpha := float64(step) / nbSteps
			ipl.path = append(ipl.path, spath.Pose{
				Position:    coeff.at(kf1, alpha),
				Orientation: spath.Squad(kf1.q, kf1.tgQ, kf2.tgQ, kf2.q, alpha),
			})
		}
	}
	last := ipl.frames[len(ipl.frames)-1]
	ipl.path = append(ipl.path, last.Pose())
	ipl.pathValid = true
	tracer().Debugf("path cache rebuilt with %d samples", len(ipl.path))
}

// PathSamples returns the densely sampled pose sequence of the whole path,
// rebuilding it if keyframes or values changed. The returned slice is
// owned by the interpolator and valid until the next mutation.
func (ipl *Interpolator) PathSamples() []spath.Pose {
	ipl.rebuildPath()
	return ipl.path
}

// Plan assembles the render data for the path. The mask selects polyline
// and/or marker output; density is the number of marker objects per
// segment, capped at nbSteps; scale is passed through untouched.
func (ipl *Interpolator) Plan(mask, density int, scale float64) RenderPlan {
	ipl.rebuildPath()
	plan := RenderPlan{Mask: mask, Scale: scale}
	if mask&DrawPath != 0 {
		plan.Polyline = make([]r3.Vector, len(ipl.path))
		for i, pose := range ipl.path {
			plan.Polyline[i] = pose.Position
		}
	}
	if mask&(DrawCameras|DrawAxes) != 0 {
		if density > nbSteps {
			density = nbSteps
		}
		if density < 1 {
			density = 1
		}
		goal := 0.0
		for i, pose := range ipl.path {
			if float64(i) >= goal {
				goal += nbSteps / float64(density)
				plan.Markers = append(plan.Markers, pose)
			}
		}
	}
	return plan
}
