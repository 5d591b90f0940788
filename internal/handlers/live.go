package handlers

import "net/http"

// LiveView returns the live session's current view.
func (h *Handler) LiveView(w http.ResponseWriter, r *http.Request) {
	if !h.liveEnabled(w) {
		return
	}
	writeView(w, "", h.live.View(), nil)
}

// StartLive starts the camera loop.
func (h *Handler) StartLive(w http.ResponseWriter, r *http.Request) {
	if !h.liveEnabled(w) {
		return
	}
	v, err := h.live.Start(r.Context())
	writeView(w, "", v, err)
}

// StopLive stops the camera loop.
func (h *Handler) StopLive(w http.ResponseWriter, r *http.Request) {
	if !h.liveEnabled(w) {
		return
	}
	v, err := h.live.Stop()
	writeView(w, "", v, err)
}

func (h *Handler) liveEnabled(w http.ResponseWriter) bool {
	if h.live == nil {
		writeError(w, http.StatusNotFound, "Camera not configured")
		return false
	}
	return true
}
