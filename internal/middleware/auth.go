package middleware

import (
	"net/http"
	"strings"

	"github.com/studymatch/backend/internal/auth"
	"github.com/studymatch/backend/internal/httpjson"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/requestdata"
)

// Auth rejects requests without a valid bearer token and records the caller
// on the request's RequestData.
func Auth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
				return
			}
			claims, err := tokens.Parse(tokenString)
			if err != nil {
				httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired token"})
				return
			}

			rd := requestdata.GetRequestData(r.Context())
			if rd == nil {
				rd = &requestdata.RequestData{}
				r = r.WithContext(requestdata.WithRequestData(r.Context(), rd))
			}
			rd.UserID = claims.UserID
			rd.IsAdmin = claims.IsAdmin

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rd := requestdata.GetRequestData(r.Context())
		if rd == nil || !rd.IsAdmin {
			httpjson.Write(w, http.StatusForbidden, models.ErrorResponse{Error: "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
