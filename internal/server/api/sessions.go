// Package api provides HTTP API handlers for recorded sessions.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/handfuse/internal/store"
)

// defaultFrameLimit caps /frames responses when no limit is given.
const defaultFrameLimit = 1000

// SessionHandler handles HTTP requests for session resources.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/sessions, /api/sessions/{id}, /api/sessions/{id}/frames
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "frames":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.frames(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Request and response types

type sessionResponse struct {
	ID        string `json:"id"`
	Serial    string `json:"serial,omitempty"`
	Mirror    string `json:"mirror"`
	Frames    int64  `json:"frames"`
	Active    bool   `json:"active"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type handFrameResponse struct {
	Seq       uint64       `json:"seq"`
	HandIndex int          `json:"hand_index"`
	Label     string       `json:"label"`
	Anchor    [3]float64   `json:"anchor"`
	Landmarks [][3]float64 `json:"landmarks"`
}

type listFramesResponse struct {
	SessionID string              `json:"session_id"`
	Frames    []handFrameResponse `json:"frames"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Session to a sessionResponse.
func toResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		Serial:    s.Serial,
		Mirror:    s.Mirror.String(),
		Frames:    s.Frames,
		Active:    s.Active(),
		StartedAt: s.StartedAt.Format(time.RFC3339),
	}
	if !s.Active() {
		resp.EndedAt = s.EndedAt.Format(time.RFC3339)
	}
	return resp
}

func toFrameResponse(f store.HandFrame) handFrameResponse {
	lms := make([][3]float64, len(f.Region.Landmarks))
	for i, p := range f.Region.Landmarks {
		lms[i] = [3]float64{p.X, p.Y, p.Z}
	}
	a := f.Region.Anchor
	return handFrameResponse{
		Seq:       f.Seq,
		HandIndex: f.HandIndex,
		Label:     string(f.Region.Label),
		Anchor:    [3]float64{a.X, a.Y, a.Z},
		Landmarks: lms,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sess))
}

// delete handles DELETE /api/sessions/{id}. Active sessions cannot be deleted.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	if sess.Active() {
		writeError(w, http.StatusConflict, "Session is still recording")
		return
	}

	if err := h.store.Sessions().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// frames handles GET /api/sessions/{id}/frames?limit=N.
func (h *SessionHandler) frames(w http.ResponseWriter, r *http.Request, id string) {
	limit := defaultFrameLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	rows, err := h.store.HandFrames().ListBySession(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list frames")
		return
	}

	response := listFramesResponse{
		SessionID: id,
		Frames:    make([]handFrameResponse, 0, len(rows)),
	}
	for _, f := range rows {
		response.Frames = append(response.Frames, toFrameResponse(f))
	}

	writeJSON(w, http.StatusOK, response)
}
