package matching

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studymatch/backend/internal/httpjson"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/requestdata"
)

type Handler struct {
	service      *Service
	defaultLimit int
}

func NewHandler(service *Service, defaultLimit int) *Handler {
	return &Handler{service: service, defaultLimit: defaultLimit}
}

// GetTopGroups handles GET /matches/groups?limit=N. limit=0 returns all.
func (h *Handler) GetTopGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	limit := httpjson.IntQueryParam(r.URL.Query(), "limit", h.defaultLimit)
	matches, err := h.service.GetTopGroups(userID, limit)
	if err != nil {
		h.service.log.Error("Top groups failed", "user_id", userID, "error", err)
		httpjson.Error(w, err, "Failed to load group matches")
		return
	}

	httpjson.Write(w, http.StatusOK, models.TopGroupsResponse{Groups: matches})
}

func (h *Handler) GetGroupMatchScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	groupID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid group ID"})
		return
	}

	score, err := h.service.GetGroupMatchScore(userID, groupID)
	if err != nil {
		httpjson.Error(w, err, "Failed to score group")
		return
	}

	httpjson.Write(w, http.StatusOK, score)
}
