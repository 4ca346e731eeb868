package quiz

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studymatch/backend/internal/httpjson"
	"github.com/studymatch/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ActiveQuestions()
	if err != nil {
		h.service.log.Error("List quiz questions failed", "error", err)
		httpjson.Error(w, err, "Failed to load quiz")
		return
	}
	httpjson.Write(w, http.StatusOK, questions)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.AllQuestions()
	if err != nil {
		h.service.log.Error("List all quiz questions failed", "error", err)
		httpjson.Error(w, err, "Failed to load questions")
		return
	}
	httpjson.Write(w, http.StatusOK, questions)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	q, err := h.service.CreateQuestion(req)
	if err != nil {
		httpjson.Error(w, err, "Failed to create question")
		return
	}
	httpjson.Write(w, http.StatusCreated, q)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question ID"})
		return
	}
	var req models.SetQuestionActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	q, err := h.service.SetActive(id, req.Active)
	if err != nil {
		httpjson.Error(w, err, "Failed to update question")
		return
	}
	httpjson.Write(w, http.StatusOK, q)
}
