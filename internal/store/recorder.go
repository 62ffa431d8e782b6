package store

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/handfuse/internal/export"
	"github.com/ayusman/handfuse/internal/hand"
)

// Recorder is an export.Exporter that writes every cycle into one session.
// Closing it ends the session; the Store stays open.
type Recorder struct {
	store   *Store
	session string
	logger  *zap.SugaredLogger

	mu     sync.Mutex
	closed bool
}

// NewRecorder starts a new session for the given device.
func NewRecorder(s *Store, serial string, mirror hand.MirrorPolicy, logger *zap.SugaredLogger) (*Recorder, error) {
	sess := &Session{Serial: serial, Mirror: mirror}
	if err := s.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Infow("recording session", "session", sess.ID, "db", s.Path())
	return &Recorder{store: s, session: sess.ID, logger: logger}, nil
}

// SessionID returns the ID of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.session
}

// Export appends the cycle's hands to the session.
func (r *Recorder) Export(c export.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("record frame %d: session %s already ended", c.Seq, r.session)
	}
	if err := r.store.HandFrames().Append(r.session, c.Seq, c.Hands); err != nil {
		return fmt.Errorf("record frame %d: %w", c.Seq, err)
	}
	return nil
}

// Close ends the session. Calling it again is a no-op.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.store.Sessions().End(r.session, time.Now()); err != nil {
		return fmt.Errorf("end session %s: %w", r.session, err)
	}
	return nil
}
