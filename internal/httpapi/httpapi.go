// Package httpapi serves a read-only JSON view of the clipboard history for
// scripts and status bars that would rather speak HTTP than gRPC.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/service"
)

// maxLimit caps the number of entries a single request may return.
const maxLimit = 5000

// Service is the read side of the history service.
type Service interface {
	Items() []model.Entry
	Search(query string) []model.Entry
	Config() model.AppConfig
	Status() service.Status
}

// Server is the HTTP transport adapter.
type Server struct {
	Service Service
	Version string
	Store   string
}

// Handler returns the routes.
func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":   true,
			"time": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	mux.HandleFunc("GET /v1/config", s.handleConfig)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	return logRequests(mux)
}

func (s Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	var entries []model.Entry
	if q := r.URL.Query().Get("q"); strings.TrimSpace(q) != "" {
		entries = s.Service.Search(q)
	} else {
		entries = s.Service.Items()
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "entries": entries})
}

func (s Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "config": s.Service.Config()})
}

func (s Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": s.Version,
		"pid":     os.Getpid(),
		"store":   s.Store,
		"status":  s.Service.Status(),
	})
}

func limitFromQuery(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &queryError{param: "limit", value: raw}
	}
	return min(n, maxLimit), nil
}

type queryError struct {
	param, value string
}

func (e *queryError) Error() string {
	return "invalid " + e.param + ": " + strconv.Quote(e.value)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Debug("http response write failed", "err", err)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
