package handlers

import (
	"net/http"
	"time"

	"github.com/Brownie44l1/petface/internal/session"
)

type viewResponse struct {
	ID string `json:"id,omitempty"`
	session.View
	Error string `json:"error,omitempty"`
}

func writeView(w http.ResponseWriter, id string, v session.View, err error) {
	resp := viewResponse{ID: id, View: v}
	status := http.StatusOK
	if err != nil {
		status = statusCode(err)
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// CreateSession opens an upload session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	u, err := h.sessions.Create()
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	w.Header().Set("Location", "/api/sessions/"+u.ID())
	resp := viewResponse{ID: u.ID(), View: u.View()}
	writeJSON(w, http.StatusCreated, resp)
}

// GetSession returns what a session shows.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeView(w, u.ID(), u.View(), nil)
}

// SelectImage classifies an uploaded image within a session.
func (h *Handler) SelectImage(w http.ResponseWriter, r *http.Request) {
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	file, filename, ok := h.formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	v, err := u.Select(r.Context(), file, filename)
	writeView(w, u.ID(), v, err)
}

// ResetSession clears a session back to its ready state.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	v, err := u.Reset()
	writeView(w, u.ID(), v, err)
}

// DeleteSession closes a session and drops its files.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		writeError(w, statusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview streams the session's current preview image.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	cur, ok := u.Preview().Current()
	if !ok {
		writeError(w, http.StatusNotFound, "No preview")
		return
	}
	f, handle, err := u.Preview().Open(cur.ID)
	if err != nil {
		writeError(w, statusCode(err), "No preview")
		return
	}
	defer f.Close()
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Preview-Id", handle.ID)
	var mod time.Time
	if info, err := f.Stat(); err == nil {
		mod = info.ModTime()
	}
	http.ServeContent(w, r, handle.Name, mod, f)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Upload, bool) {
	u, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusCode(err), "Session not found")
		return nil, false
	}
	return u, true
}
