package kfinterp

import (
	"io"
	"time"

	"github.com/golang/geo/r3"
	"github.com/npillmayer/spath"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the persistent state of an Interpolator: the ordered
// keyframe tuples plus the scalar playback parameters. The target binding
// is deliberately not part of it; rebind with SetTarget after restoring.
type Snapshot struct {
	KeyFrames  []KeyFrameRecord `msgpack:"keyframes"`
	Time       float64          `msgpack:"time"`
	Speed      float64          `msgpack:"speed"`
	Period     time.Duration    `msgpack:"period"`
	ClosedPath bool             `msgpack:"closedPath"`
	Loop       bool             `msgpack:"loop"`
}

// KeyFrameRecord is one persisted keyframe tuple. Keyframes tracking a
// live source are persisted with the source's current pose; the tracking
// link itself is not restorable.
type KeyFrameRecord struct {
	Position    [3]float64 `msgpack:"p"`
	Orientation [4]float64 `msgpack:"q"` // w, x, y, z
	Time        float64    `msgpack:"t"`
}

// Snapshot captures the interpolator's current persistent state.
func (ipl *Interpolator) Snapshot() Snapshot {
	s := Snapshot{
		Time:       ipl.time,
		Speed:      ipl.speed,
		Period:     ipl.period,
		ClosedPath: ipl.closed,
		Loop:       ipl.loop,
	}
	for i := range ipl.frames {
		pose, _ := ipl.KeyFrame(i)
		s.KeyFrames = append(s.KeyFrames, KeyFrameRecord{
			Position:    [3]float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
			Orientation: [4]float64{pose.Orientation.Real, pose.Orientation.Imag, pose.Orientation.Jmag, pose.Orientation.Kmag},
			Time:        ipl.frames[i].time,
		})
	}
	return s
}

// Restore replaces the interpolator's state with s. All keyframes are
// restored by value, playback is stopped and every cache invalidated. The
// target binding is left untouched. Restoring a snapshot with non-monotone
// keyframe times fails with ErrTimeNotMonotone, leaving the keyframes
// restored so far in place.
func (ipl *Interpolator) Restore(s Snapshot) error {
	ipl.DeletePath()
	for _, rec := range s.KeyFrames {
		pose := spath.Pose{
			Position:    r3.Vector{X: rec.Position[0], Y: rec.Position[1], Z: rec.Position[2]},
			Orientation: spath.Q(rec.Orientation[0], rec.Orientation[1], rec.Orientation[2], rec.Orientation[3]),
		}
		if err := ipl.AddKeyFrameAt(pose, rec.Time); err != nil {
			return err
		}
	}
	ipl.time = s.Time
	ipl.speed = s.Speed
	ipl.period = s.Period
	ipl.closed = s.ClosedPath
	ipl.loop = s.Loop
	ipl.valuesValid = false
	ipl.pathValid = false
	ipl.cursorValid = false
	ipl.Stop()
	return nil
}

// Save writes the interpolator's snapshot to w, encoded as msgpack.
func (ipl *Interpolator) Save(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(ipl.Snapshot())
}

// Load restores the interpolator from a msgpack snapshot read from r. See
// Restore for the exact semantics.
func (ipl *Interpolator) Load(r io.Reader) error {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return err
	}
	return ipl.Restore(s)
}
