package hand

import "strings"

// Raw handedness labels produced by the landmark detector.
const (
	RawLeft  = "Left"
	RawRight = "Right"
)

// MirrorPolicy says whether the detector sees a mirrored view of the scene.
//
// With Mirrored the detector's "Right" is the physical left hand and vice
// versa. Deployments have disagreed on which convention their rig needs, so
// the policy is always passed explicitly and never defaulted inside the
// localizer.
type MirrorPolicy bool

const (
	Unmirrored MirrorPolicy = false
	Mirrored   MirrorPolicy = true
)

// Resolve maps a raw detector label to a physical Label. It reports false for
// labels outside the detector vocabulary.
func (m MirrorPolicy) Resolve(raw string) (Label, bool) {
	var l Label
	switch {
	case strings.EqualFold(raw, RawLeft):
		l = Left
	case strings.EqualFold(raw, RawRight):
		l = Right
	default:
		return "", false
	}
	if m == Mirrored {
		l = l.Opposite()
	}
	return l, true
}

// Opposite returns the other hand.
func (l Label) Opposite() Label {
	if l == Left {
		return Right
	}
	return Left
}

func (m MirrorPolicy) String() string {
	if m == Mirrored {
		return "mirrored"
	}
	return "unmirrored"
}
