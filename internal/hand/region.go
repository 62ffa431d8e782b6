package hand

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// ErrUnknownField is returned when a field selection names a field a Region does not have.
var ErrUnknownField = errors.New("unknown field")

// Label is the physical handedness of a Region.
type Label string

const (
	Left  Label = "left"
	Right Label = "right"
)

// Region is one fully localized hand in camera space, in meters.
//
// A Region only exists when every landmark resolved; there is no partially
// populated state. Anchor always equals Landmarks[AnchorLandmark].
type Region struct {
	Label     Label                   `json:"label"`
	Anchor    r3.Vector               `json:"anchor"`
	Landmarks [NumLandmarks]r3.Vector `json:"landmarks"`
}

// Field names accepted by Fields. The aliases are the names Unity clients
// ask for.
const (
	FieldLabel     = "label"
	FieldAnchor    = "anchor"
	FieldLandmarks = "landmarks"

	aliasAnchor    = "xyz"
	aliasLandmarks = "rotated_world_landmarks"
)

// Fields returns the named subset of the region as plain values, keyed by the
// requested name. Points are rendered as [x, y, z] arrays.
func (r Region) Fields(names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		switch name {
		case FieldLabel:
			out[name] = string(r.Label)
		case FieldAnchor, aliasAnchor:
			out[name] = triple(r.Anchor)
		case FieldLandmarks, aliasLandmarks:
			pts := make([][3]float64, NumLandmarks)
			for i, p := range r.Landmarks {
				pts[i] = triple(p)
			}
			out[name] = pts
		default:
			return nil, fmt.Errorf("region field %q: %w", name, ErrUnknownField)
		}
	}
	return out, nil
}

func triple(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
