package web

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storyforge/internal/ai"
	"storyforge/internal/config"
)

// NewServer creates and configures the HTTP server for the StoryForge JSON API.
func NewServer(db *sql.DB, client *ai.Client, cfg *config.Config, version, baseDir, bind string, port int) *http.Server {
	h := &Handlers{
		db:      db,
		client:  client,
		cfg:     cfg,
		baseDir: baseDir,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("POST /api/v1/stories/generate", h.HandleGenerate)
	mux.HandleFunc("POST /api/v1/stories/validate", h.HandleValidate)
	mux.HandleFunc("POST /api/v1/stories/suggestions", h.HandleSuggest)
	mux.HandleFunc("POST /api/v1/stories/purge", h.HandlePurge)
	mux.HandleFunc("GET /api/v1/stories", h.HandleList)
	mux.HandleFunc("GET /api/v1/stories/search", h.HandleSearch)
	mux.HandleFunc("GET /api/v1/stories/{id}", h.HandleFetch)
	mux.HandleFunc("GET /api/v1/stories/{id}/preview", h.HandlePreview)
	mux.HandleFunc("POST /api/v1/stories/{id}/refine", h.HandleRefine)
	mux.HandleFunc("POST /api/v1/stories/{id}/export", h.HandleExport)
	mux.HandleFunc("PUT /api/v1/stories/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/stories/{id}", h.HandleDelete)
	mux.HandleFunc("GET /api/v1/system/health", h.HandleHealth)

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("StoryForge API running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
