package capture

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// ErrNoIntrinsics is returned when camera intrinsics are missing or unusable.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// Intrinsics holds the pinhole parameters of the depth stream, as reported by the sensor.
type Intrinsics struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// CheckValid checks that the intrinsics can be used for deprojection.
func (in Intrinsics) CheckValid() error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("invalid size (%d, %d): %w", in.Width, in.Height, ErrNoIntrinsics)
	}
	if in.Fx <= 0 {
		return fmt.Errorf("invalid focal length fx = %v: %w", in.Fx, ErrNoIntrinsics)
	}
	if in.Fy <= 0 {
		return fmt.Errorf("invalid focal length fy = %v: %w", in.Fy, ErrNoIntrinsics)
	}
	if in.Ppx < 0 || in.Ppy < 0 {
		return fmt.Errorf("invalid principal point (%v, %v): %w", in.Ppx, in.Ppy, ErrNoIntrinsics)
	}
	return nil
}

// Deproject maps a pixel and its depth in meters to a camera-space point in meters.
// Lens distortion is not modeled.
func (in Intrinsics) Deproject(x, y, z float64) r3.Vector {
	return r3.Vector{
		X: (x - in.Ppx) / in.Fx * z,
		Y: (y - in.Ppy) / in.Fy * z,
		Z: z,
	}
}
