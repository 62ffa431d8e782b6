package capture

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/geo/r3"
)

// DefaultDepthScale is the meters-per-unit of a z16 depth stream (1 unit = 1mm).
const DefaultDepthScale = 0.001

// DepthMap is a z16 depth image with the scale and intrinsics needed to turn
// a pixel into a camera-space point.
type DepthMap struct {
	width      int
	height     int
	scale      float64
	data       []uint16
	intrinsics Intrinsics
}

// NewDepthMap wraps raw z16 values laid out row-major. The intrinsics must
// describe an image of the same size as the map.
func NewDepthMap(width, height int, scale float64, data []uint16, in Intrinsics) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid depth size %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("depth data has %d values, want %d", len(data), width*height)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid depth scale %v", scale)
	}
	if err := in.CheckValid(); err != nil {
		return nil, err
	}
	if in.Width != width || in.Height != height {
		return nil, fmt.Errorf("intrinsics for %dx%d used with %dx%d depth: %w",
			in.Width, in.Height, width, height, ErrNoIntrinsics)
	}
	return &DepthMap{
		width:      width,
		height:     height,
		scale:      scale,
		data:       data,
		intrinsics: in,
	}, nil
}

// NewUniformDepthMap returns a depth map reading the same distance everywhere.
func NewUniformDepthMap(width, height int, meters float64, in Intrinsics) (*DepthMap, error) {
	raw := uint16(meters/DefaultDepthScale + 0.5)
	data := make([]uint16, width*height)
	for i := range data {
		data[i] = raw
	}
	return NewDepthMap(width, height, DefaultDepthScale, data, in)
}

// decodeDepth reads little-endian z16 bytes.
func decodeDepth(width, height int, scale float64, raw []byte, in Intrinsics) (*DepthMap, error) {
	if len(raw) != width*height*2 {
		return nil, fmt.Errorf("depth payload has %d bytes, want %d", len(raw), width*height*2)
	}
	data := make([]uint16, width*height)
	for i := range data {
		data[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return NewDepthMap(width, height, scale, data, in)
}

func (dm *DepthMap) Width() int  { return dm.width }
func (dm *DepthMap) Height() int { return dm.height }

// Intrinsics returns the intrinsics used for deprojection.
func (dm *DepthMap) Intrinsics() Intrinsics { return dm.intrinsics }

// Raw returns the z16 value at a pixel. The caller keeps x, y in bounds.
func (dm *DepthMap) Raw(x, y int) uint16 {
	return dm.data[y*dm.width+x]
}

// DistanceAt returns the depth at a pixel in meters; 0 means no reading.
func (dm *DepthMap) DistanceAt(x, y int) float64 {
	return float64(dm.Raw(x, y)) * dm.scale
}

// Deproject returns the camera-space point for a pixel at the given depth.
func (dm *DepthMap) Deproject(x, y int, meters float64) r3.Vector {
	return dm.intrinsics.Deproject(float64(x), float64(y), meters)
}

// Set writes a raw z16 value. Used when building synthetic maps.
func (dm *DepthMap) Set(x, y int, raw uint16) {
	dm.data[y*dm.width+x] = raw
}
