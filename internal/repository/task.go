package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/query"
)

var tracer = otel.Tracer("github.com/hkaneko/taskboard/internal/repository")

// TaskRepository provides task persistence on top of GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.Create",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.Bool("task.found", false))
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return &task, nil
}

// Save writes the full task row back to the store. Concurrent writers
// race with last-write-wins semantics; there is no version column.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.Save",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Delete removes a task permanently.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.ErrTaskNotFound
	}
	return nil
}

// List executes a query plan and returns the page of tasks plus the
// total count of rows matching the plan's predicate.
func (r *TaskRepository) List(ctx context.Context, plan query.Plan) ([]*model.Task, int64, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.List")
	defer span.End()

	var total int64
	if err := applyConditions(r.db.WithContext(ctx).Model(&model.Task{}), plan.Conditions).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	direction := "ASC"
	if plan.Descending {
		direction = "DESC"
	}

	var tasks []*model.Task
	err := applyConditions(r.db.WithContext(ctx).Model(&model.Task{}), plan.Conditions).
		// Secondary id ordering keeps pages stable when the sort key ties.
		Order(plan.OrderBy + " " + direction).
		Order("id ASC").
		Offset(plan.Offset).
		Limit(plan.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, total, nil
}

// Count returns the current number of tasks, for the tasks gauge metric.
func (r *TaskRepository) Count() int64 {
	var total int64
	r.db.Model(&model.Task{}).Count(&total)
	return total
}

func applyConditions(db *gorm.DB, conds []query.Condition) *gorm.DB {
	for _, c := range conds {
		switch c.Op {
		case query.OpNull:
			db = db.Where(c.Column + " IS NULL")
		case query.OpNotNull:
			db = db.Where(c.Column + " IS NOT NULL")
		default:
			db = db.Where(fmt.Sprintf("%s %s ?", c.Column, c.Op), c.Value)
		}
	}
	return db
}
