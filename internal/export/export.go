// Package export hands each localized frame to downstream consumers,
// serializing only the fields each consumer asked for.
package export

import (
	"github.com/ayusman/handfuse/internal/capture"
	"github.com/ayusman/handfuse/internal/hand"
)

// Cycle is everything one driver cycle produced.
//
// Frame is only valid for the duration of Export; exporters must not retain
// it. Hands is freshly allocated per cycle.
type Cycle struct {
	Seq    uint64
	Frame  *capture.Frame
	Hands  []hand.Region
	Serial string
}

// Exporter consumes cycles.
type Exporter interface {
	Export(c Cycle) error
	Close() error
}
