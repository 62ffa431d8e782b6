// Package localize fuses 2D hand landmarks with a depth map into 3D hand regions.
package localize

import (
	"github.com/golang/geo/r3"

	"github.com/ayusman/handfuse/internal/detector"
	"github.com/ayusman/handfuse/internal/hand"
)

// Depth is what the localizer needs from a frame: its pixel extent, a
// per-pixel distance in meters, and deprojection through the sensor intrinsics.
type Depth interface {
	Width() int
	Height() int
	DistanceAt(x, y int) float64
	Deproject(x, y int, meters float64) r3.Vector
}

// Report counts what happened to each detection in one Localize call.
type Report struct {
	Detections   int
	Emitted      int
	OutOfBounds  int
	Unclassified int
}

// Dropped returns the number of detections that produced no region.
func (r Report) Dropped() int {
	return r.OutOfBounds + r.Unclassified
}

// Localize projects every detection into the depth map and returns one Region
// per detection whose 21 landmarks all land inside the frame.
//
// A detection with any landmark outside [0,width)×[0,height) is discarded as
// a whole; the remaining detections are unaffected and keep their order. A
// detection without a usable handedness classification is discarded too.
// Localize has no side effects and keeps no state between calls.
func Localize(depth Depth, res detector.Result, mirror hand.MirrorPolicy) ([]hand.Region, Report) {
	report := Report{Detections: len(res.Detections)}
	if len(res.Detections) == 0 {
		return []hand.Region{}, report
	}

	regions := make([]hand.Region, 0, len(res.Detections))
	for i, det := range res.Detections {
		region, ok := project(depth, det)
		if !ok {
			report.OutOfBounds++
			continue
		}

		if i >= len(res.Handedness) {
			report.Unclassified++
			continue
		}
		label, ok := mirror.Resolve(res.Handedness[i].Label)
		if !ok {
			report.Unclassified++
			continue
		}
		region.Label = label

		regions = append(regions, region)
	}

	report.Emitted = len(regions)
	return regions, report
}

// project resolves all landmarks of one detection, failing on the first one
// outside the frame.
func project(depth Depth, det detector.Detection) (hand.Region, bool) {
	var region hand.Region
	w, h := depth.Width(), depth.Height()

	for j, lm := range det.Points {
		px, ok := pixel(lm.X, w)
		if !ok {
			return hand.Region{}, false
		}
		py, ok := pixel(lm.Y, h)
		if !ok {
			return hand.Region{}, false
		}

		p := depth.Deproject(px, py, depth.DistanceAt(px, py))
		region.Landmarks[j] = p
		if j == hand.AnchorLandmark {
			region.Anchor = p
		}
	}
	return region, true
}

// pixel scales a normalized coordinate to a pixel index, truncating toward
// zero, and reports whether it falls in [0, extent). The range test runs on
// the float so NaN and huge values never reach the int conversion.
func pixel(norm float64, extent int) (int, bool) {
	f := norm * float64(extent)
	if !(f > -1 && f < float64(extent)) {
		return 0, false
	}
	return int(f), true
}
