package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studymatch/backend/internal/auth"
	"github.com/studymatch/backend/internal/groups"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/matching"
	"github.com/studymatch/backend/internal/middleware"
	"github.com/studymatch/backend/internal/profiles"
	"github.com/studymatch/backend/internal/quiz"
)

type handlers struct {
	auth     *auth.Handler
	profiles *profiles.Handler
	groups   *groups.Handler
	matching *matching.Handler
	quiz     *quiz.Handler
}

func newRouter(h handlers, tokens *auth.Tokens, log *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestContext(log))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", h.auth.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.auth.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens))
	protected.HandleFunc("/auth/me", h.auth.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/quiz/questions", h.quiz.ListActive).Methods("GET")

	protected.HandleFunc("/profile", h.profiles.GetProfile).Methods("GET")
	protected.HandleFunc("/profile/answers", h.profiles.SubmitAnswers).Methods("POST")
	protected.HandleFunc("/profile/skip", h.profiles.Skip).Methods("POST")

	protected.HandleFunc("/groups/{id:[0-9]+}/join", h.groups.Join).Methods("POST")
	protected.HandleFunc("/groups/{id:[0-9]+}/leave", h.groups.Leave).Methods("POST")

	protected.HandleFunc("/matches/groups", h.matching.GetTopGroups).Methods("GET")
	protected.HandleFunc("/matches/groups/{id:[0-9]+}", h.matching.GetGroupMatchScore).Methods("GET")

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/quiz/questions", h.quiz.ListAll).Methods("GET")
	admin.HandleFunc("/quiz/questions", h.quiz.Create).Methods("POST")
	admin.HandleFunc("/quiz/questions/{id:[0-9]+}/active", h.quiz.SetActive).Methods("PUT")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
