// Package handlers exposes the classifier and its sessions over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	"github.com/Brownie44l1/petface/internal/classify"
	"github.com/Brownie44l1/petface/internal/inference"
	"github.com/Brownie44l1/petface/internal/model"
	"github.com/Brownie44l1/petface/internal/session"
)

// Models is the subset of inference.Loader the handlers use.
type Models interface {
	session.ModelSource
	Loaded() inference.Predictor
}

// Handler serves the HTTP API. Live may be nil when no camera is configured.
type Handler struct {
	models   Models
	sessions *session.Registry
	live     *session.Live
	maxBytes int64
	logger   *slog.Logger
}

// NewHandler wires the API to its collaborators.
func NewHandler(models Models, sessions *session.Registry, live *session.Live, maxBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{
		models:   models,
		sessions: sessions,
		live:     live,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// PredictResponse is returned by the stateless predict endpoints.
type PredictResponse struct {
	Predictions []classify.Prediction `json:"predictions"`
	Result      classify.Result       `json:"result"`
	Headline    classify.Headline     `json:"headline"`
}

func newPredictResponse(preds []classify.Prediction) PredictResponse {
	result := classify.Resolve(preds)
	return PredictResponse{
		Predictions: preds,
		Result:      result,
		Headline:    classify.Describe(result),
	}
}

// Health reports liveness and whether the model is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": h.models.Loaded() != nil,
	})
}

// Predict classifies an already preprocessed CHW tensor.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req model.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	m, err := h.models.Get(r.Context())
	if err != nil {
		h.logger.Error("model unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, session.StatusModelError.Message())
		return
	}
	raw, ok := m.(inference.RawPredictor)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Model does not accept raw tensors")
		return
	}

	if expected := raw.InputSize(); len(req.Image) != expected {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Expected %d values, got %d", expected, len(req.Image)))
		return
	}

	preds, err := raw.Predict(req.Image)
	if err != nil {
		h.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(preds))
}

// PredictFromImage classifies an uploaded image without keeping any state.
func (h *Handler) PredictFromImage(w http.ResponseWriter, r *http.Request) {
	file, filename, ok := h.formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, session.StatusDecodeError.Message())
		return
	}
	h.logger.Debug("image decoded", "file", filename, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	m, err := h.models.Get(r.Context())
	if err != nil {
		h.logger.Error("model unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, session.StatusModelError.Message())
		return
	}

	preds, err := m.PredictImage(r.Context(), img)
	if err != nil {
		h.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, session.StatusPredictError.Message())
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(preds))
}

// formImage pulls the "image" part out of a multipart upload.
func (h *Handler) formImage(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return nil, "", false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided. Use 'image' as the form field name")
		return nil, "", false
	}
	h.logger.Debug("received file", "file", header.Filename, "bytes", header.Size)
	return file, header.Filename, true
}

// statusCode maps a session failure to an HTTP status.
func statusCode(err error) int {
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, session.ErrStale) {
		return http.StatusConflict
	}
	var serr *session.StatusError
	if errors.As(err, &serr) {
		switch serr.Status {
		case session.StatusDecodeError:
			return http.StatusUnprocessableEntity
		case session.StatusModelError, session.StatusCameraError:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}
