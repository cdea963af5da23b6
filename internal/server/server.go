// Package server exposes content generation and upload-token issuance over
// HTTP for clients that keep secrets off the device.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"uploadpilot/internal/auth"
	"uploadpilot/internal/content"
)

type Handler struct {
	generator content.Generator
	tokens    auth.TokenProvider
}

func NewHandler(generator content.Generator, tokens auth.TokenProvider) *Handler {
	return &Handler{generator: generator, tokens: tokens}
}

type GenerateRequest struct {
	Topic string `json:"topic"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-details", h.GenerateDetails)
		r.Get("/get-upload-token", h.GetUploadToken)
	})
	return r
}

func (h *Handler) GenerateDetails(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, r, http.StatusBadRequest, "Topic is required")
		return
	}

	meta, err := h.generator.Generate(r.Context(), req.Topic)
	if err != nil {
		if errors.Is(err, content.ErrInvalidInput) {
			writeError(w, r, http.StatusBadRequest, "Topic is required")
			return
		}
		slog.Error("Generation failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, r, http.StatusBadGateway, "Failed to generate video details.")
		return
	}

	render.JSON(w, r, meta)
}

func (h *Handler) GetUploadToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.AccessToken(r.Context())
	if err != nil {
		slog.Error("Access token error", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, r, http.StatusInternalServerError, "Failed to get access token.")
		return
	}

	render.JSON(w, r, TokenResponse{AccessToken: token.Value})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves handler on addr until ctx is cancelled, then shuts down.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
