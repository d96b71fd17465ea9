package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/telemetry"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// respondDomainError maps a domain error onto an HTTP response. The
// mapping deliberately keeps Forbidden distinct from NotFound; a denied
// request on an existing task answers 403.
func respondDomainError(w http.ResponseWriter, err error) int {
	var v *model.ValidationError
	switch {
	case errors.As(err, &v):
		respondFieldErrors(w, v.Fields)
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrAssigneeNotFound):
		respondFieldErrors(w, map[string]string{"assignee_email": "assignee email not found"})
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "task not found")
		return http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
		return http.StatusNotFound
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
		return http.StatusInternalServerError
	}
}

func recordMetrics(ctx context.Context, m *telemetry.Metrics, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration, attrs)
}
