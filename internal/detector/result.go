package detector

import "github.com/ayusman/handfuse/internal/hand"

// Landmark2D is a landmark position normalized to the color frame, nominally in [0,1).
// Detectors may report values outside that range for points beyond the frame edge.
type Landmark2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one detected hand: exactly 21 landmarks in MediaPipe order.
type Detection struct {
	Points [hand.NumLandmarks]Landmark2D `json:"points"`
}

// Classification is the detector's raw handedness guess for one detection.
type Classification struct {
	Label string  `json:"label"` // "Left" or "Right", as seen by the detector
	Score float64 `json:"score"`
}

// Result is the detector output for one frame. Handedness is index-aligned
// with Detections.
type Result struct {
	Detections []Detection
	Handedness []Classification
}

// Len returns the number of detections.
func (r Result) Len() int {
	return len(r.Detections)
}

// Append adds a detection together with its classification, keeping both
// lists aligned.
func (r *Result) Append(d Detection, c Classification) {
	r.Detections = append(r.Detections, d)
	r.Handedness = append(r.Handedness, c)
}
