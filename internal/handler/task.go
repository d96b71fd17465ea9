package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/query"
	"github.com/hkaneko/taskboard/internal/service"
	"github.com/hkaneko/taskboard/internal/telemetry"
)

var tracer = otel.Tracer("github.com/hkaneko/taskboard/internal/handler")

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	svc     *service.TaskService
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with task routes. The auth middleware
// must already have run; every handler requires an actor in context.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle-complete", h.ToggleComplete)
	r.Post("/{id}/reassign", h.Reassign)

	return r
}

// List returns a page of the actor's assigned tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.List")
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	params := listParams(r)

	h.logger.InfoContext(ctx, "listing tasks", slog.String("actor", actor.ID))

	result, err := h.svc.List(ctx, actor.ID, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks", slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "GET", "/api/v1/tasks", status, start)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(result.Tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(result.Tasks)))

	respondJSON(w, http.StatusOK, result)
	recordMetrics(ctx, h.metrics, "GET", "/api/v1/tasks", http.StatusOK, start)
}

// Create adds a new task assigned to the user matching assignee_email.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks", http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "creating task", slog.String("title", req.Title))

	task, err := h.svc.Create(ctx, actor.ID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create task", slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks", status, start)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.String("id", task.ID))

	respondJSON(w, http.StatusCreated, task)
	recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks", http.StatusCreated, start)
}

// GetByID returns a task by ID. Only the assignee may view it.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	task, err := h.svc.Get(ctx, actor.ID, id)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get task", slog.String("id", id), slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "GET", "/api/v1/tasks/{id}", status, start)
		return
	}

	respondJSON(w, http.StatusOK, task)
	recordMetrics(ctx, h.metrics, "GET", "/api/v1/tasks/{id}", http.StatusOK, start)
}

// Update modifies the provided fields of an existing task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		recordMetrics(ctx, h.metrics, "PUT", "/api/v1/tasks/{id}", http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "updating task", slog.String("id", id))

	task, err := h.svc.Update(ctx, actor.ID, id, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update task", slog.String("id", id), slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "PUT", "/api/v1/tasks/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.String("id", id))

	respondJSON(w, http.StatusOK, task)
	recordMetrics(ctx, h.metrics, "PUT", "/api/v1/tasks/{id}", http.StatusOK, start)
}

// ToggleComplete flips the task's completion state.
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.ToggleComplete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	task, err := h.svc.ToggleComplete(ctx, actor.ID, id)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to toggle task", slog.String("id", id), slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks/{id}/toggle-complete", status, start)
		return
	}

	h.logger.InfoContext(ctx, "task completion toggled",
		slog.String("id", id),
		slog.String("status", string(task.Status)),
	)

	respondJSON(w, http.StatusOK, task)
	recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks/{id}/toggle-complete", http.StatusOK, start)
}

// Reassign replaces the task's assignee. Only the creator may do this.
func (h *TaskHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Reassign",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req model.ReassignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks/{id}/reassign", http.StatusBadRequest, start)
		return
	}

	task, err := h.svc.Reassign(ctx, actor.ID, id, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to reassign task", slog.String("id", id), slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks/{id}/reassign", status, start)
		return
	}

	h.logger.InfoContext(ctx, "task reassigned",
		slog.String("id", id),
		slog.String("assignee", task.Assignee.ID),
	)

	respondJSON(w, http.StatusOK, task)
	recordMetrics(ctx, h.metrics, "POST", "/api/v1/tasks/{id}/reassign", http.StatusOK, start)
}

// Delete removes a task. Creator or assignee may delete.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if err := h.svc.Delete(ctx, actor.ID, id); err != nil {
		h.logger.WarnContext(ctx, "failed to delete task", slog.String("id", id), slog.Any("error", err))
		status := respondDomainError(w, err)
		recordMetrics(ctx, h.metrics, "DELETE", "/api/v1/tasks/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
	recordMetrics(ctx, h.metrics, "DELETE", "/api/v1/tasks/{id}", http.StatusNoContent, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listParams reads the filter/sort/page query parameters. Values the
// planner does not recognize are passed through and ignored there.
func listParams(r *http.Request) query.ListParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	return query.ListParams{
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Page:     page,
		PerPage:  perPage,
	}
}
