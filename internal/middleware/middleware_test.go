package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymatch/backend/internal/auth"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/requestdata"
)

func chain(tokens *auth.Tokens, final http.HandlerFunc, admin bool) http.Handler {
	var h http.Handler = final
	if admin {
		h = RequireAdmin(h)
	}
	h = Auth(tokens)(h)
	return RequestContext(logger.NewNop())(h)
}

func TestAuthSetsUser(t *testing.T) {
	tokens := auth.NewTokens("secret")
	tok, err := tokens.Issue(9, false)
	require.NoError(t, err)

	var seen int64
	h := chain(tokens, func(w http.ResponseWriter, r *http.Request) {
		seen, _ = requestdata.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(9), seen)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	tokens := auth.NewTokens("secret")
	h := chain(tokens, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokens("secret")
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	h := chain(tokens, ok, true)

	userTok, _ := tokens.Issue(1, false)
	adminTok, _ := tokens.Issue(2, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestContextKeepsIncomingRequestID(t *testing.T) {
	h := RequestContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rd := requestdata.GetRequestData(r.Context())
		require.NotNil(t, rd)
		assert.Equal(t, "abc-123", rd.RequestID)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
