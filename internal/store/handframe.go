package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/geo/r3"

	"github.com/ayusman/handfuse/internal/hand"
)

// HandFrame is one localized hand as recorded for a frame of a session.
type HandFrame struct {
	ID        int64
	SessionID string
	Seq       uint64
	HandIndex int
	Region    hand.Region
	CreatedAt time.Time
}

// HandFrameRepository stores per-frame hand results.
type HandFrameRepository struct {
	db *sql.DB
}

// HandFrames returns the hand frame repository for this store.
func (s *Store) HandFrames() *HandFrameRepository {
	return &HandFrameRepository{db: s.db}
}

// Append records every hand of one frame and bumps the session's frame
// count in a single transaction. A frame without hands still counts.
func (r *HandFrameRepository) Append(sessionID string, seq uint64, hands []hand.Region) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE sessions SET frames = frames + 1 WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	if len(hands) > 0 {
		stmt, err := tx.Prepare(
			`INSERT INTO hand_frames
			 (session_id, seq, hand_index, label, anchor_x, anchor_y, anchor_z, landmarks, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now()
		for i, h := range hands {
			landmarks, err := encodeLandmarks(h.Landmarks)
			if err != nil {
				return err
			}
			_, err = stmt.Exec(sessionID, int64(seq), i, string(h.Label),
				h.Anchor.X, h.Anchor.Y, h.Anchor.Z, landmarks, now)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListBySession returns a session's hands ordered by frame then hand index.
// A positive limit caps the number of rows returned.
func (r *HandFrameRepository) ListBySession(sessionID string, limit int) ([]HandFrame, error) {
	query := `SELECT id, session_id, seq, hand_index, label, anchor_x, anchor_y, anchor_z, landmarks, created_at
		 FROM hand_frames WHERE session_id = ? ORDER BY seq, hand_index`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []HandFrame
	for rows.Next() {
		var f HandFrame
		var seq int64
		var label, landmarks string

		err := rows.Scan(&f.ID, &f.SessionID, &seq, &f.HandIndex, &label,
			&f.Region.Anchor.X, &f.Region.Anchor.Y, &f.Region.Anchor.Z, &landmarks, &f.CreatedAt)
		if err != nil {
			return nil, err
		}

		f.Seq = uint64(seq)
		f.Region.Label = hand.Label(label)
		if f.Region.Landmarks, err = decodeLandmarks(landmarks); err != nil {
			return nil, fmt.Errorf("hand frame %d: %w", f.ID, err)
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Landmarks are stored as a JSON array of [x, y, z] triples.
func encodeLandmarks(pts [hand.NumLandmarks]r3.Vector) (string, error) {
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeLandmarks(data string) ([hand.NumLandmarks]r3.Vector, error) {
	var pts [hand.NumLandmarks]r3.Vector
	var raw [][3]float64
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return pts, err
	}
	if len(raw) != hand.NumLandmarks {
		return pts, fmt.Errorf("got %d landmarks, want %d", len(raw), hand.NumLandmarks)
	}
	for i, p := range raw {
		pts[i] = r3.Vector{X: p[0], Y: p[1], Z: p[2]}
	}
	return pts, nil
}
