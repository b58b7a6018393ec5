package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pillbuddy-backend/internal/models"
	"pillbuddy-backend/internal/observability/logging"
	"pillbuddy-backend/internal/service/pipeline"
)

// maxImageBytes caps the accepted upload size.
const maxImageBytes = 10 << 20

// Service is the pipeline surface the handlers depend on.
type Service interface {
	Identify(ctx context.Context, sessionID string, image []byte) (*pipeline.IdentifyResult, error)
	FollowUp(ctx context.Context, sessionID, question string) (*pipeline.FollowUpResult, error)
}

// Speech synthesizes audio for the standalone endpoint; nil means failure.
type Speech interface {
	Synthesize(ctx context.Context, text string) []byte
}

// Handler holds the HTTP handlers for the pill endpoints.
type Handler struct {
	service Service
	speech  Speech
}

// NewHandler constructs a Handler.
func NewHandler(service Service, speech Speech) *Handler {
	return &Handler{service: service, speech: speech}
}

// Identify accepts a multipart image upload and returns the narrated
// identification. The session id may arrive as a query parameter or a
// form field; absent, a fresh one is minted and returned.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponent("http")

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.FormValue("session_id")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.service.Identify(r.Context(), sessionID, image)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyImage):
			writeError(w, http.StatusBadRequest, "empty image payload")
		case errors.Is(err, pipeline.ErrNoPillDetected):
			writeError(w, http.StatusUnprocessableEntity, "no pill could be identified in the image")
		default:
			logger.Error().Err(err).Msg("Identification failed")
			writeError(w, http.StatusInternalServerError, "identification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, models.IdentifyResponse{
		SessionID:   result.SessionID,
		PillName:    result.PillName,
		Script:      result.Script,
		AudioBase64: encodeAudio(result.Audio),
	})
}

// FollowUp answers a question about the pill identified earlier in the
// session.
func (h *Handler) FollowUp(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponent("http")

	var req models.FollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "session_id and question are required")
		return
	}

	result, err := h.service.FollowUp(r.Context(), req.SessionID, req.Question)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoSession) {
			writeError(w, http.StatusBadRequest, "no pill has been identified in this session")
			return
		}
		logger.Error().Err(err).Msg("Follow-up failed")
		writeError(w, http.StatusInternalServerError, "follow-up failed")
		return
	}

	writeJSON(w, http.StatusOK, models.FollowUpResponse{
		PillName:    result.PillName,
		Question:    result.Question,
		Answer:      result.Answer,
		AudioBase64: encodeAudio(result.Audio),
	})
}

// Synthesize converts arbitrary text to speech. Unlike the pipeline
// endpoints this one fails loudly, the caller asked for audio and
// nothing else.
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio := h.speech.Synthesize(r.Context(), req.Text)
	if audio == nil {
		writeError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	writeJSON(w, http.StatusOK, models.SynthesizeResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
	})
}

func encodeAudio(audio []byte) *string {
	if audio == nil {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString(audio)
	return &encoded
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
