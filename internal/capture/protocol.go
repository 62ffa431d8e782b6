package capture

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxHeaderLen bounds a bridge header; anything larger means the stream is corrupt.
const maxHeaderLen = 64 * 1024

// errCorruptStream marks a framing failure. The reader no longer knows where
// the next packet starts, so nothing after it can be decoded.
var errCorruptStream = errors.New("corrupt bridge stream")

// header is the JSON part of a bridge packet.
type header struct {
	// Status fields, only set on the first packet.
	Ready bool   `json:"ready,omitempty"`
	Error string `json:"error,omitempty"`

	Seq        uint64     `json:"seq"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	DepthScale float64    `json:"depth_scale"`
	Intrinsics Intrinsics `json:"intrinsics"`
	Color      bool       `json:"color"`
	Depth      bool       `json:"depth"`
	EOS        bool       `json:"eos"`
}

// packet is a header plus whichever payloads it announced.
type packet struct {
	header header
	color  []byte
	depth  []byte
}

func readHeader(r io.Reader) (header, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return header{}, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || n > maxHeaderLen {
		return header{}, fmt.Errorf("bad header length %d: %w", n, errCorruptStream)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return header{}, err
	}

	var h header
	if err := json.Unmarshal(buf, &h); err != nil {
		return header{}, fmt.Errorf("parse header: %w: %w", errCorruptStream, err)
	}
	return h, nil
}

// readPacket reads one packet. Payloads are always consumed, even for an
// incomplete pair, so the stream stays aligned.
func readPacket(r io.Reader) (packet, error) {
	h, err := readHeader(r)
	if err != nil {
		return packet{}, err
	}
	p := packet{header: h}
	if h.EOS {
		return p, nil
	}
	if (h.Color || h.Depth) && (h.Width <= 0 || h.Height <= 0) {
		return packet{}, fmt.Errorf("bad frame size %dx%d: %w", h.Width, h.Height, errCorruptStream)
	}

	if h.Color {
		p.color = make([]byte, h.Width*h.Height*3)
		if _, err := io.ReadFull(r, p.color); err != nil {
			return packet{}, err
		}
	}
	if h.Depth {
		p.depth = make([]byte, h.Width*h.Height*2)
		if _, err := io.ReadFull(r, p.depth); err != nil {
			return packet{}, err
		}
	}
	return p, nil
}
