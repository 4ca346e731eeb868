package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/requestdata"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestContext attaches RequestData (with a request id) to every request
// and logs one line per request once it completes.
func RequestContext(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			rd := &requestdata.RequestData{RequestID: reqID}
			r = r.WithContext(requestdata.WithRequestData(r.Context(), rd))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if log == nil {
				return
			}
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}
			if rd.UserID != 0 {
				fields = append(fields, "user_id", rd.UserID)
			}
			switch {
			case rec.status >= 500:
				log.Error("HTTP request", fields...)
			case rec.status >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}
