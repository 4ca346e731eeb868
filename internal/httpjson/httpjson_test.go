package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/models"
)

func TestErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: relation does not exist"), "Failed to load profile")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Failed to load profile", body.Error)
}

func TestErrorPassesServiceMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.NewNotFoundError("group 5 not found"), "Failed")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "group 5 not found", body.Error)
}

func TestIntQueryParam(t *testing.T) {
	q := url.Values{"limit": {"5"}, "bad": {"x"}, "neg": {"-2"}}
	assert.Equal(t, 5, IntQueryParam(q, "limit", 10))
	assert.Equal(t, 10, IntQueryParam(q, "bad", 10))
	assert.Equal(t, 10, IntQueryParam(q, "neg", 10))
	assert.Equal(t, 10, IntQueryParam(q, "missing", 10))
}
