// Package testdata builds synthetic sensor recordings for end-to-end tests.
package testdata

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/handfuse/internal/capture"
)

// Intrinsics approximates a RealSense D435 color stream at 640x480.
var Intrinsics = capture.Intrinsics{
	Width:  capture.DefaultWidth,
	Height: capture.DefaultHeight,
	Fx:     615.0,
	Fy:     615.0,
	Ppx:    320.0,
	Ppy:    240.0,
}

// Recording is a replayable sequence of frame pairs. Close releases the
// color images once the playback is done.
type Recording struct {
	Frames []capture.PlaybackFrame
	mats   []*gocv.Mat
}

// NewRecording returns n gray frames whose depth reads meters everywhere.
// Every index in desync gets its depth half removed.
func NewRecording(n int, meters float64, desync ...int) (*Recording, error) {
	depth, err := capture.NewUniformDepthMap(Intrinsics.Width, Intrinsics.Height, meters, Intrinsics)
	if err != nil {
		return nil, fmt.Errorf("build depth: %w", err)
	}

	skip := make(map[int]bool, len(desync))
	for _, i := range desync {
		skip[i] = true
	}

	rec := &Recording{}
	for i := 0; i < n; i++ {
		mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0),
			Intrinsics.Height, Intrinsics.Width, gocv.MatTypeCV8UC3)
		rec.mats = append(rec.mats, &mat)

		f := capture.PlaybackFrame{Color: &mat, Depth: depth}
		if skip[i] {
			f.Depth = nil
		}
		rec.Frames = append(rec.Frames, f)
	}
	return rec, nil
}

// Close releases the recorded color images.
func (r *Recording) Close() {
	for _, m := range r.mats {
		m.Close()
	}
}
