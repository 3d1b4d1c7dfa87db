package kfinterp

// cursorWindow is the playback cursor: four indices into the keyframe
// sequence with c0 ≤ c1 ≤ c2 ≤ c3. The segment being evaluated lies
// between c1 and c2; c0 and c3 supply tangent context and degenerate to
// the boundary keyframes at the path ends.
//
// The indices are plain ints into the owned keyframe slice; structural
// mutation marks the whole window invalid.
type cursorWindow struct {
	c0, c1, c2, c3 int
}

// locateCursor positions the window around time t. Nearby queries walk the
// existing window a bounded number of steps (the common case during
// playback, amortized O(1)); an arbitrary jump degrades to a linear
// directed search. An invalid window restarts from the first keyframe.
//
// Precondition: the keyframe sequence is non-empty and time-ordered.
func (ipl *Interpolator) locateCursor(t float64) {
	// TODO: wrap the window across the seam once closed-path continuity
	// is implemented.
	if !ipl.cursorValid {
		ipl.cursor.c1 = 0
	}
	for ipl.frames[ipl.cursor.c1].time > t {
		ipl.cursorValid = false
		if ipl.cursor.c1 == 0 {
			break
		}
		ipl.cursor.c1--
		ipl.cursorMoves++
	}
	if !ipl.cursorValid {
		ipl.cursor.c2 = ipl.cursor.c1
	}
	for ipl.frames[ipl.cursor.c2].time < t {
		ipl.cursorValid = false
		if ipl.cursor.c2 == len(ipl.frames)-1 {
			break
		}
		ipl.cursor.c2++
		ipl.cursorMoves++
	}
	if !ipl.cursorValid {
		// Rebuild c1 as the keyframe right before c2, then clamp the
		// outer context indices.
		ipl.cursor.c1 = ipl.cursor.c2
		if ipl.cursor.c1 > 0 && t < ipl.frames[ipl.cursor.c2].time {
			ipl.cursor.c1--
		}
		ipl.cursor.c0 = ipl.cursor.c1
		if ipl.cursor.c0 > 0 {
			ipl.cursor.c0--
		}
		ipl.cursor.c3 = ipl.cursor.c2
		if ipl.cursor.c3 < len(ipl.frames)-1 {
			ipl.cursor.c3++
		}
		ipl.cursorValid = true
		ipl.splineValid = false
		tracer().Debugf("cursor window moved to [%d,%d,%d,%d] for t=%g",
			ipl.cursor.c0, ipl.cursor.c1, ipl.cursor.c2, ipl.cursor.c3, t)
	}
}
