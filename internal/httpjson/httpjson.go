package httpjson

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/models"
)

func Write(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error writes a service error. Messages of internal errors are replaced with
// fallback so storage details never reach the client.
func Error(w http.ResponseWriter, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	msg := fallback
	if e, ok := apperr.As(err); ok {
		msg = e.Message
	}
	Write(w, status, models.ErrorResponse{Error: msg})
}

func IntQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
