package profiles

import (
	"encoding/json"
	"net/http"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/httpjson"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/requestdata"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	summary, err := h.service.GetProfile(userID)
	if err != nil {
		h.fail(w, userID, err, "Failed to load profile")
		return
	}

	httpjson.Write(w, http.StatusOK, summary)
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	summary, err := h.service.SubmitAnswers(userID, req.Answers)
	if err != nil {
		h.fail(w, userID, err, "Failed to submit answers")
		return
	}

	httpjson.Write(w, http.StatusOK, summary)
}

func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	summary, err := h.service.Skip(userID)
	if err != nil {
		h.fail(w, userID, err, "Failed to skip quiz")
		return
	}

	httpjson.Write(w, http.StatusOK, summary)
}

// fail writes err to the client. Internal errors are logged since their
// details never reach the response.
func (h *Handler) fail(w http.ResponseWriter, userID int64, err error, msg string) {
	if _, ok := apperr.As(err); !ok {
		h.service.log.Error(msg, "user_id", userID, "error", err)
	}
	httpjson.Error(w, err, msg)
}
