package kfinterp

import (
	"github.com/golang/geo/r3"
)

// splineCoeff holds the two derived coefficient vectors of one Hermite
// segment. They only depend on the bounding keyframes, so they are cached
// while the playback cursor stays within the segment.
type splineCoeff struct {
	v1, v2 r3.Vector
}

func makeSplineCoeff(kf1, kf2 *KeyFrame) splineCoeff {
	delta := kf2.p.Sub(kf1.p)
	return splineCoeff{
		v1: delta.Mul(3).Sub(kf1.tgP.Mul(2)).Sub(kf2.tgP),
		v2: delta.Mul(-2).Add(kf1.tgP).Add(kf2.tgP),
	}
}

// at evaluates the segment position at local parameter alpha ∈ [0,1].
// This is the Hermite basis rewritten in Horner form:
//
//	pos = p1 + α·(tgP1 + α·(v1 + α·v2))
func (sc splineCoeff) at(kf1 *KeyFrame, alpha float64) r3.Vector {
	return kf1.p.Add(kf1.tgP.Add(sc.v1.Add(sc.v2.Mul(alpha)).Mul(alpha)).Mul(alpha))
}

// updateSplineCache recomputes the coefficient vectors for the segment the
// cursor currently points at.
func (ipl *Interpolator) updateSplineCache() {
	ipl.coeff = makeSplineCoeff(ipl.frames[ipl.cursor.c1], ipl.frames[ipl.cursor.c2])
	ipl.splineValid = true
}
