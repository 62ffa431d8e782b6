package export

import (
	"sync"

	"github.com/ayusman/handfuse/internal/hand"
)

// Recorded is what MockExporter keeps from one cycle. The frame itself is not
// retained since it is closed once Export returns.
type Recorded struct {
	Seq    uint64
	Serial string
	Hands  []hand.Region
}

// MockExporter is a mock implementation of Exporter for testing.
type MockExporter struct {
	mu     sync.Mutex
	cycles []Recorded
	err    error
	closed int
}

// NewMockExporter creates a new MockExporter.
func NewMockExporter() *MockExporter {
	return &MockExporter{}
}

// SetError makes every following Export fail with err.
func (m *MockExporter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Export records the cycle.
func (m *MockExporter) Export(c Cycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles = append(m.cycles, Recorded{
		Seq:    c.Seq,
		Serial: c.Serial,
		Hands:  append([]hand.Region(nil), c.Hands...),
	})
	return m.err
}

// Cycles returns every cycle exported so far.
func (m *MockExporter) Cycles() []Recorded {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Recorded(nil), m.cycles...)
}

// Close counts the call.
func (m *MockExporter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Closed returns how many times Close was called.
func (m *MockExporter) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
