package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hkaneko/taskboard/internal/auth"
	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/telemetry"
)

// AuthHandler handles registration, login, and session endpoints.
type AuthHandler struct {
	svc     *auth.Service
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, logger *slog.Logger, metrics *telemetry.Metrics) *AuthHandler {
	return &AuthHandler{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "AuthHandler.Register")
	defer span.End()

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		recordMetrics(ctx, h.metrics, "POST", "/register", http.StatusBadRequest, start)
		return
	}

	user, err := h.svc.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed", slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "POST", "/register", status, start)
		return
	}

	h.logger.InfoContext(ctx, "user registered", slog.String("id", user.ID))

	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
	recordMetrics(ctx, h.metrics, "POST", "/register", http.StatusCreated, start)
}

// Login authenticates a user and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "AuthHandler.Login")
	defer span.End()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		recordMetrics(ctx, h.metrics, "POST", "/login", http.StatusBadRequest, start)
		return
	}

	result, err := h.svc.Login(ctx, req)
	if err != nil {
		// Keep the log free of credentials; the error says enough.
		h.logger.WarnContext(ctx, "login failed", slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "POST", "/login", status, start)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("id", result.User.ID))

	respondJSON(w, http.StatusOK, map[string]any{
		"user":       result.User,
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
	})
	recordMetrics(ctx, h.metrics, "POST", "/login", http.StatusOK, start)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	user, err := h.svc.GetUser(ctx, actor.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout acknowledges a logout. Access tokens are stateless JWTs, so
// the client discards the token; nothing is revoked server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
