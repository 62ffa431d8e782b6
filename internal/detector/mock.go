package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handfuse/internal/hand"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
	closed int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close records the call; it never fails.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Closed returns how many times Close has been called.
func (m *MockDetector) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// UniformDetection returns a detection with every landmark at the same normalized position.
func UniformDetection(x, y float64) Detection {
	var d Detection
	for i := range d.Points {
		d.Points[i] = Landmark2D{X: x, Y: y}
	}
	return d
}

// ThumbsUpDetection returns a preset right-hand detection of a thumbs up pose.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpDetection() Detection {
	var d Detection

	d.Points[hand.Wrist] = Landmark2D{X: 0.5, Y: 0.8}

	// Thumb extended upward (Y decreases going up)
	d.Points[hand.ThumbCMC] = Landmark2D{X: 0.55, Y: 0.75}
	d.Points[hand.ThumbMCP] = Landmark2D{X: 0.58, Y: 0.65}
	d.Points[hand.ThumbIP] = Landmark2D{X: 0.58, Y: 0.50}
	d.Points[hand.ThumbTip] = Landmark2D{X: 0.58, Y: 0.35}

	d.Points[hand.IndexMCP] = Landmark2D{X: 0.55, Y: 0.70}
	d.Points[hand.IndexPIP] = Landmark2D{X: 0.55, Y: 0.68}
	d.Points[hand.IndexDIP] = Landmark2D{X: 0.52, Y: 0.70}
	d.Points[hand.IndexTip] = Landmark2D{X: 0.50, Y: 0.72}

	d.Points[hand.MiddleMCP] = Landmark2D{X: 0.50, Y: 0.68}
	d.Points[hand.MiddlePIP] = Landmark2D{X: 0.50, Y: 0.66}
	d.Points[hand.MiddleDIP] = Landmark2D{X: 0.47, Y: 0.68}
	d.Points[hand.MiddleTip] = Landmark2D{X: 0.45, Y: 0.70}

	d.Points[hand.RingMCP] = Landmark2D{X: 0.45, Y: 0.70}
	d.Points[hand.RingPIP] = Landmark2D{X: 0.45, Y: 0.68}
	d.Points[hand.RingDIP] = Landmark2D{X: 0.42, Y: 0.70}
	d.Points[hand.RingTip] = Landmark2D{X: 0.40, Y: 0.72}

	d.Points[hand.PinkyMCP] = Landmark2D{X: 0.40, Y: 0.72}
	d.Points[hand.PinkyPIP] = Landmark2D{X: 0.40, Y: 0.70}
	d.Points[hand.PinkyDIP] = Landmark2D{X: 0.37, Y: 0.72}
	d.Points[hand.PinkyTip] = Landmark2D{X: 0.35, Y: 0.74}

	return d
}

// OpenPalmDetection returns a preset detection of an open palm with all fingers extended.
func OpenPalmDetection() Detection {
	var d Detection

	d.Points[hand.Wrist] = Landmark2D{X: 0.5, Y: 0.8}

	d.Points[hand.ThumbCMC] = Landmark2D{X: 0.55, Y: 0.75}
	d.Points[hand.ThumbMCP] = Landmark2D{X: 0.62, Y: 0.70}
	d.Points[hand.ThumbIP] = Landmark2D{X: 0.68, Y: 0.65}
	d.Points[hand.ThumbTip] = Landmark2D{X: 0.73, Y: 0.60}

	d.Points[hand.IndexMCP] = Landmark2D{X: 0.55, Y: 0.68}
	d.Points[hand.IndexPIP] = Landmark2D{X: 0.57, Y: 0.55}
	d.Points[hand.IndexDIP] = Landmark2D{X: 0.58, Y: 0.45}
	d.Points[hand.IndexTip] = Landmark2D{X: 0.58, Y: 0.35}

	// Middle finger slightly longer
	d.Points[hand.MiddleMCP] = Landmark2D{X: 0.50, Y: 0.66}
	d.Points[hand.MiddlePIP] = Landmark2D{X: 0.50, Y: 0.52}
	d.Points[hand.MiddleDIP] = Landmark2D{X: 0.50, Y: 0.40}
	d.Points[hand.MiddleTip] = Landmark2D{X: 0.50, Y: 0.28}

	d.Points[hand.RingMCP] = Landmark2D{X: 0.45, Y: 0.68}
	d.Points[hand.RingPIP] = Landmark2D{X: 0.43, Y: 0.55}
	d.Points[hand.RingDIP] = Landmark2D{X: 0.42, Y: 0.45}
	d.Points[hand.RingTip] = Landmark2D{X: 0.42, Y: 0.35}

	d.Points[hand.PinkyMCP] = Landmark2D{X: 0.40, Y: 0.70}
	d.Points[hand.PinkyPIP] = Landmark2D{X: 0.37, Y: 0.60}
	d.Points[hand.PinkyDIP] = Landmark2D{X: 0.35, Y: 0.50}
	d.Points[hand.PinkyTip] = Landmark2D{X: 0.34, Y: 0.42}

	return d
}
