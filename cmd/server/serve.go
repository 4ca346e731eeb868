package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/studymatch/backend/internal/auth"
	"github.com/studymatch/backend/internal/config"
	"github.com/studymatch/backend/internal/groups"
	"github.com/studymatch/backend/internal/matching"
	"github.com/studymatch/backend/internal/profiles"
	"github.com/studymatch/backend/internal/quiz"
)

const shutdownTimeout = 15 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	queue, closeQueue, err := newRecomputeQueue(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQueue()

	// Stores
	groupStore := groups.NewStore(db)
	profileStore := profiles.NewStore(db)

	// Background aggregate maintenance
	maintainer := groups.NewMaintainer(groupStore, log)
	scheduler := groups.NewScheduler(queue, maintainer, log, groups.SchedulerOptions{
		MinWorkers:  cfg.Recompute.MinWorkers,
		MaxWorkers:  cfg.Recompute.MaxWorkers,
		IdleTimeout: cfg.Recompute.IdleTimeout,
	})
	// The pool outlives the signal so requests drained by Shutdown can still
	// queue recomputes.
	scheduler.Start(context.WithoutCancel(ctx))
	defer scheduler.Stop()

	// Handlers
	tokens := auth.NewTokens(cfg.JWTSecret)
	h := handlers{
		auth:     auth.NewHandler(auth.NewStore(db), tokens, log),
		profiles: profiles.NewHandler(profiles.NewService(profileStore, groupStore, scheduler, log)),
		groups:   groups.NewHandler(groups.NewMembership(groupStore, scheduler, log)),
		matching: matching.NewHandler(matching.NewService(profileStore, groupStore, nil, log), cfg.Matching.TopGroupsLimit),
		quiz:     quiz.NewHandler(quiz.NewService(quiz.NewStore(db), log)),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(newRouter(h, tokens, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "queue", cfg.Recompute.Queue)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown failed", "error", err)
	}

	// A Redis queue keeps its requests for the next instance; the in-memory
	// queue is finished here or lost.
	if cfg.Recompute.Queue != "redis" {
		if err := scheduler.Drain(shutdownCtx); err != nil {
			log.Warn("Recompute queue not drained before shutdown", "error", err)
		}
	}
	scheduler.Stop()

	stats := scheduler.Stats()
	log.Info("Recompute pool totals",
		"scheduled", stats.Scheduled,
		"dropped", stats.Dropped,
		"completed", stats.Completed,
		"failed", stats.Failed,
		"bursts", stats.Bursts,
	)
	return nil
}

// newRecomputeQueue builds the queue named in config. The returned func
// releases any connection it opened.
func newRecomputeQueue(ctx context.Context, cfg config.Config) (groups.Queue, func(), error) {
	switch cfg.Recompute.Queue {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return groups.NewRedisQueue(rdb, cfg.Redis.Key, cfg.Recompute.QueueSize), func() { rdb.Close() }, nil
	default:
		return groups.NewMemoryQueue(cfg.Recompute.QueueSize), func() {}, nil
	}
}
