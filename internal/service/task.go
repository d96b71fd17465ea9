// Package service implements the task lifecycle operations. Every
// operation fetches the task first (a missing id is NotFound before any
// policy check), consults the policy engine, and only then touches the
// store. Denied requests never mutate state.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/policy"
	"github.com/hkaneko/taskboard/internal/query"
	"github.com/hkaneko/taskboard/internal/repository"
)

// TaskService coordinates policy checks, persistence, and rendering for
// task operations. The clock is injected so status derivation is
// testable at arbitrary dates.
type TaskService struct {
	tasks *repository.TaskRepository
	users *repository.UserRepository
	now   func() time.Time
}

// NewTaskService creates a TaskService. now is typically time.Now.
func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository, now func() time.Time) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		now:   now,
	}
}

// TaskView is the task representation returned to callers: persisted
// fields plus the derived status and the creator/assignee references.
type TaskView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     string         `json:"due_date"`
	Priority    model.Priority `json:"priority"`
	Creator     model.UserRef  `json:"creator"`
	Assignee    model.UserRef  `json:"assignee"`
	CompletedAt *time.Time     `json:"completed_at"`
	Status      model.Status   `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ListResult is a page of tasks plus pagination metadata.
type ListResult struct {
	Tasks   []TaskView `json:"data"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int64      `json:"total"`
}

// Create validates the request, resolves the assignee email against the
// user store, and persists a new task owned by actorID. An unknown
// email fails with ErrAssigneeNotFound and nothing is persisted.
func (s *TaskService) Create(ctx context.Context, actorID string, req model.CreateTaskRequest) (*TaskView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	assignee, err := s.users.FindByEmail(ctx, req.AssigneeEmail)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrAssigneeNotFound
		}
		return nil, err
	}

	dueDate, err := model.ParseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    priority,
		CreatorID:   actorID,
		AssigneeID:  assignee.ID,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	return s.render(ctx, task, nil)
}

// Get returns a single task. Only the assignee may view it.
func (s *TaskService) Get(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	task, err := s.authorize(ctx, actorID, taskID, policy.OpView)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, task, nil)
}

// Update applies a partial field update. Only provided fields change;
// assignee_id and completed_at are not reachable through this path.
func (s *TaskService) Update(ctx context.Context, actorID, taskID string, req model.UpdateTaskRequest) (*TaskView, error) {
	task, err := s.authorize(ctx, actorID, taskID, policy.OpUpdate)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		dueDate, err := model.ParseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}
	if req.Priority != nil {
		task.Priority = model.Priority(*req.Priority)
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	return s.render(ctx, task, nil)
}

// ToggleComplete flips the task between complete and incomplete. Sets
// completed_at to the current time when nil, clears it otherwise.
func (s *TaskService) ToggleComplete(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	task, err := s.authorize(ctx, actorID, taskID, policy.OpToggleComplete)
	if err != nil {
		return nil, err
	}

	if task.CompletedAt != nil {
		task.CompletedAt = nil
	} else {
		now := s.now()
		task.CompletedAt = &now
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	return s.render(ctx, task, nil)
}

// Reassign replaces the task's assignee with the user matching the given
// email. Only the creator may reassign; no record of the prior assignee
// is kept.
func (s *TaskService) Reassign(ctx context.Context, actorID, taskID string, req model.ReassignTaskRequest) (*TaskView, error) {
	task, err := s.authorize(ctx, actorID, taskID, policy.OpReassign)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	assignee, err := s.users.FindByEmail(ctx, req.AssigneeEmail)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrAssigneeNotFound
		}
		return nil, err
	}

	task.AssigneeID = assignee.ID

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	return s.render(ctx, task, nil)
}

// Delete removes the task permanently.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID string) error {
	if _, err := s.authorize(ctx, actorID, taskID, policy.OpDelete); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

// List returns a page of the actor's assigned tasks. Filters and sort
// parameters are handled leniently by the query planner: unrecognized
// values fall back to no filter or the defaults.
func (s *TaskService) List(ctx context.Context, actorID string, params query.ListParams) (*ListResult, error) {
	plan := query.Build(actorID, s.now(), params)

	tasks, total, err := s.tasks.List(ctx, plan)
	if err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	refs := make(map[string]model.UserRef)
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		view, err := s.render(ctx, task, refs)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return &ListResult{
		Tasks:   views,
		Page:    page,
		PerPage: plan.Limit,
		Total:   total,
	}, nil
}

// authorize fetches the task and checks the policy for op. It returns
// ErrTaskNotFound for a missing id and ErrForbidden on a policy deny,
// without saying which rule failed.
func (s *TaskService) authorize(ctx context.Context, actorID, taskID string, op policy.Operation) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(actorID, task, op) {
		return nil, model.ErrForbidden
	}
	return task, nil
}

// render builds the caller-facing view, resolving creator and assignee
// against the user store. refs, when non-nil, caches lookups across a
// listing to avoid repeating them per row.
func (s *TaskService) render(ctx context.Context, task *model.Task, refs map[string]model.UserRef) (*TaskView, error) {
	creator, err := s.userRef(ctx, task.CreatorID, refs)
	if err != nil {
		return nil, err
	}
	assignee, err := s.userRef(ctx, task.AssigneeID, refs)
	if err != nil {
		return nil, err
	}

	return &TaskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.Format(time.DateOnly),
		Priority:    task.Priority,
		Creator:     creator,
		Assignee:    assignee,
		CompletedAt: task.CompletedAt,
		Status:      task.Status(s.now()),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}, nil
}

func (s *TaskService) userRef(ctx context.Context, id string, refs map[string]model.UserRef) (model.UserRef, error) {
	if refs != nil {
		if ref, ok := refs[id]; ok {
			return ref, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserRef{}, err
	}

	ref := user.Ref()
	if refs != nil {
		refs[id] = ref
	}
	return ref, nil
}
