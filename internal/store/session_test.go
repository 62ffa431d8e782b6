package store

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/ayusman/handfuse/internal/hand"
)

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Serial: "947122071234", Mirror: hand.Mirrored}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("session ID %q is not a UUID: %v", sess.ID, err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Serial != sess.Serial {
		t.Errorf("expected serial %q, got %q", sess.Serial, got.Serial)
	}
	if got.Mirror != hand.Mirrored {
		t.Errorf("expected mirrored session, got %v", got.Mirror)
	}
	if !got.Active() {
		t.Error("new session should be active")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, serial := range []string{"a", "b", "c"} {
		sess := &Session{Serial: serial, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(sess); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].Serial != "c" || sessions[2].Serial != "a" {
		t.Errorf("expected newest first, got %s..%s", sessions[0].Serial, sessions[2].Serial)
	}
}

func TestSessionRepository_End(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := repo.End(sess.ID, time.Now()); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Active() {
		t.Error("ended session should not be active")
	}

	if err := repo.End("missing", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testRegion(label hand.Label, z float64) hand.Region {
	var r hand.Region
	r.Label = label
	for i := range r.Landmarks {
		r.Landmarks[i] = r3.Vector{X: float64(i) * 0.01, Y: -0.02, Z: z}
	}
	r.Anchor = r.Landmarks[hand.AnchorLandmark]
	return r
}

func TestHandFrameRepository_Append(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Serial: "x"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	frames := s.HandFrames()
	if err := frames.Append(sess.ID, 1, []hand.Region{testRegion(hand.Left, 0.5), testRegion(hand.Right, 0.6)}); err != nil {
		t.Fatalf("failed to append frame 1: %v", err)
	}
	if err := frames.Append(sess.ID, 2, nil); err != nil {
		t.Fatalf("failed to append empty frame 2: %v", err)
	}
	if err := frames.Append(sess.ID, 3, []hand.Region{testRegion(hand.Right, 0.7)}); err != nil {
		t.Fatalf("failed to append frame 3: %v", err)
	}

	got, err := frames.ListBySession(sess.ID, 0)
	if err != nil {
		t.Fatalf("failed to list hand frames: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 hand rows, got %d", len(got))
	}

	want := testRegion(hand.Right, 0.6)
	if got[1].Seq != 1 || got[1].HandIndex != 1 {
		t.Errorf("row 1 = seq %d hand %d, want seq 1 hand 1", got[1].Seq, got[1].HandIndex)
	}
	if got[1].Region != want {
		t.Errorf("region did not round-trip: got %+v, want %+v", got[1].Region, want)
	}
	if got[2].Seq != 3 {
		t.Errorf("expected last row from frame 3, got %d", got[2].Seq)
	}

	t.Run("frame count includes empty frames", func(t *testing.T) {
		sess, err := s.Sessions().GetByID(sess.ID)
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if sess.Frames != 3 {
			t.Errorf("expected 3 frames, got %d", sess.Frames)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := frames.ListBySession(sess.ID, 2)
		if err != nil {
			t.Fatalf("failed to list hand frames: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 rows, got %d", len(got))
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		err := frames.Append("missing", 1, []hand.Region{testRegion(hand.Left, 1)})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.HandFrames().Append(sess.ID, 1, []hand.Region{testRegion(hand.Left, 0.4)}); err != nil {
		t.Fatalf("failed to append frame: %v", err)
	}

	if err := s.Sessions().Delete(sess.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM hand_frames").Scan(&count); err != nil {
		t.Fatalf("failed to count hand frames: %v", err)
	}
	if count != 0 {
		t.Errorf("expected hand frames to be deleted with their session, %d left", count)
	}
}
