package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const readyTimeout = 3 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.app.Name,
		"version": s.app.Version,
	})
}

// handleReady pings every checker concurrently and answers 503 when any
// of them fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(s.deps.Checkers))
	for name := range s.deps.Checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var g errgroup.Group
	for i, name := range names {
		checker := s.deps.Checkers[name]
		g.Go(func() error {
			if err := checker.Ping(ctx); err != nil {
				results[i] = err.Error()
				return err
			}
			results[i] = "ok"
			return nil
		})
	}
	err := g.Wait()

	checks := make(map[string]string, len(names))
	for i, name := range names {
		checks[name] = results[i]
	}

	status, code := "ready", http.StatusOK
	if err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		s.logger.Warn("readiness check failed", map[string]interface{}{"checks": checks})
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
