// Package capture provides synchronized color+depth frame acquisition.
package capture

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Default stream settings, matching what the RealSense bridge requests.
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrStreamEnd is returned by Source.Next when no further frames will arrive.
	// It is a normal termination signal, not a failure.
	ErrStreamEnd = errors.New("stream ended")

	// ErrFrameDesync is returned by Source.Next when one half of the
	// color/depth pair is missing for a cycle. The next call may succeed.
	ErrFrameDesync = errors.New("frame pair incomplete")

	// ErrDeviceUnavailable is returned when a sensor cannot be acquired:
	// none connected, the requested device is missing or claimed, or it
	// failed to start.
	ErrDeviceUnavailable = errors.New("device unavailable")
)

// Frame is one synchronized color+depth pair. The depth map is aligned to
// the color image, so both share Width and Height.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	Color     *gocv.Mat
	Depth     *DepthMap
}

// NewFrame pairs a color image with its aligned depth map.
// The caller hands ownership of color to the frame.
func NewFrame(seq uint64, color *gocv.Mat, depth *DepthMap) (*Frame, error) {
	if color == nil || depth == nil {
		return nil, ErrFrameDesync
	}
	if color.Cols() != depth.Width() || color.Rows() != depth.Height() {
		return nil, fmt.Errorf("color %dx%d does not match depth %dx%d",
			color.Cols(), color.Rows(), depth.Width(), depth.Height())
	}
	return &Frame{
		Seq:       seq,
		Timestamp: time.Now(),
		Width:     depth.Width(),
		Height:    depth.Height(),
		Color:     color,
		Depth:     depth,
	}, nil
}

// Close releases the color image.
func (f *Frame) Close() error {
	if f == nil || f.Color == nil {
		return nil
	}
	err := f.Color.Close()
	f.Color = nil
	return err
}

// Source produces synchronized frame pairs.
type Source interface {
	// Next blocks until the next frame pair is available. It returns
	// ErrStreamEnd once the stream is over and ErrFrameDesync for a cycle
	// whose pair was incomplete. The caller must Close the returned frame.
	Next() (*Frame, error)

	// Close releases the underlying device. A blocked Next returns ErrStreamEnd.
	Close() error
}

// Identified is implemented by sources that know the serial number of the
// device behind them.
type Identified interface {
	Serial() string
}
