package groups

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studymatch/backend/internal/httpjson"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/requestdata"
)

type Handler struct {
	membership *Membership
}

func NewHandler(membership *Membership) *Handler {
	return &Handler{membership: membership}
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.parse(w, r)
	if !ok {
		return
	}

	resp, err := h.membership.Join(userID, groupID)
	if err != nil {
		h.membership.log.Warn("Join group failed", "user_id", userID, "group_id", groupID, "error", err)
		httpjson.Error(w, err, "Failed to join group")
		return
	}

	httpjson.Write(w, http.StatusOK, resp)
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.parse(w, r)
	if !ok {
		return
	}

	resp, err := h.membership.Leave(userID, groupID)
	if err != nil {
		httpjson.Error(w, err, "Failed to leave group")
		return
	}

	httpjson.Write(w, http.StatusOK, resp)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return 0, 0, false
	}
	groupID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid group ID"})
		return 0, 0, false
	}
	return userID, groupID, true
}
