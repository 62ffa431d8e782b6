package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// PlaybackFrame is one recorded cycle. A nil Color or Depth replays as a desync.
type PlaybackFrame struct {
	Color *gocv.Mat
	Depth *DepthMap
}

// Playback replays pre-recorded frame pairs, then reports end of stream.
type Playback struct {
	frames []PlaybackFrame
	serial string
	index  int
	seq    uint64
	mu     sync.Mutex
	closed bool
	closes int
}

// NewPlayback creates a source over the given frames.
func NewPlayback(frames []PlaybackFrame) *Playback {
	return &Playback{frames: frames}
}

// Next returns a clone of the next recorded pair so the recording is not modified.
func (p *Playback) Next() (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.index >= len(p.frames) {
		return nil, ErrStreamEnd
	}

	rec := p.frames[p.index]
	p.index++
	p.seq++

	if rec.Color == nil || rec.Depth == nil {
		return nil, ErrFrameDesync
	}

	color := rec.Color.Clone()
	f, err := NewFrame(p.seq, &color, rec.Depth)
	if err != nil {
		_ = color.Close()
		return nil, err
	}
	return f, nil
}

// Close ends playback.
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closes++
	return nil
}

// Closes returns how many times Close has been called.
func (p *Playback) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// Remaining returns how many recorded cycles have not been replayed.
func (p *Playback) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames) - p.index
}

// SerialPlayback is a Playback that also reports the serial of the device
// it was recorded from.
type SerialPlayback struct {
	*Playback
}

// NewSerialPlayback creates a playback source that implements Identified.
func NewSerialPlayback(frames []PlaybackFrame, serial string) SerialPlayback {
	p := NewPlayback(frames)
	p.serial = serial
	return SerialPlayback{Playback: p}
}

// Serial returns the serial the playback was recorded from.
func (p SerialPlayback) Serial() string {
	return p.serial
}
