package export

import (
	"encoding/json"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// UDPBridge sends one JSON datagram per cycle to a Unity listener.
type UDPBridge struct {
	conn   net.Conn
	sel    Selection
	logger *zap.SugaredLogger
}

// NewUDPBridge dials addr (host:port). UDP is connectionless, so this only
// fails on a bad address or selection.
func NewUDPBridge(addr string, sel Selection, logger *zap.SugaredLogger) (*UDPBridge, error) {
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("udp bridge selection: %w", err)
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp %s: %w", addr, err)
	}
	logger.Infow("udp bridge ready", "addr", conn.RemoteAddr().String())
	return &UDPBridge{conn: conn, sel: sel, logger: logger}, nil
}

// Export writes the cycle's payload as a single datagram.
func (b *UDPBridge) Export(c Cycle) error {
	p, err := BuildPayload(c, b.sel)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if _, err := b.conn.Write(msg); err != nil {
		return fmt.Errorf("send payload: %w", err)
	}
	return nil
}

// Close closes the socket.
func (b *UDPBridge) Close() error {
	return b.conn.Close()
}
