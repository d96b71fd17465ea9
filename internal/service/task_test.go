package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/query"
	"github.com/hkaneko/taskboard/internal/repository"
	"github.com/hkaneko/taskboard/internal/service"
)

var now = time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *service.TaskService
	users *repository.UserRepository

	alice *model.User
	bob   *model.User
	carol *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)

	f := &fixture{
		svc:   service.NewTaskService(tasks, users, func() time.Time { return now }),
		users: users,
		alice: seedUser(t, users, "Alice", "alice@example.com"),
		bob:   seedUser(t, users, "Bob", "bob@example.com"),
		carol: seedUser(t, users, "Carol", "carol@example.com"),
	}
	return f
}

func seedUser(t *testing.T, users *repository.UserRepository, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: "irrelevant",
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createRequest(assigneeEmail, dueDate string) model.CreateTaskRequest {
	return model.CreateTaskRequest{
		Title:         "Write the release notes",
		DueDate:       dueDate,
		AssigneeEmail: assigneeEmail,
	}
}

func TestCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("resolves assignee and defaults priority", func(t *testing.T) {
		view, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
		require.NoError(t, err)

		assert.NotEmpty(t, view.ID)
		assert.Equal(t, model.PriorityMedium, view.Priority)
		assert.Equal(t, f.alice.ID, view.Creator.ID)
		assert.Equal(t, "alice@example.com", view.Creator.Email)
		assert.Equal(t, f.bob.ID, view.Assignee.ID)
		assert.Equal(t, "2026-09-10", view.DueDate)
		assert.Nil(t, view.CompletedAt)
		assert.Equal(t, model.StatusUpcoming, view.Status)
	})

	t.Run("unknown assignee email persists nothing", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.alice.ID, createRequest("ghost@example.com", "2026-09-10"))
		assert.ErrorIs(t, err, model.ErrAssigneeNotFound)

		result, err := f.svc.List(ctx, f.alice.ID, query.ListParams{})
		require.NoError(t, err)
		assert.Zero(t, result.Total)
	})

	t.Run("validation failure before any store access", func(t *testing.T) {
		req := createRequest("bob@example.com", "2026-09-10")
		req.Title = ""
		_, err := f.svc.Create(ctx, f.alice.ID, req)

		var v *model.ValidationError
		require.ErrorAs(t, err, &v)
		assert.Contains(t, v.Fields, "title")
	})
}

// Actor A creates a task for actor B due yesterday; B finds it under
// Missed/Late, while A (creator, not assignee) lists nothing.
func TestListing_MissedTaskVisibleToAssigneeOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-08-31"))
	require.NoError(t, err)

	missed, err := f.svc.List(ctx, f.bob.ID, query.ListParams{Status: "Missed/Late"})
	require.NoError(t, err)
	require.Len(t, missed.Tasks, 1)
	assert.Equal(t, created.ID, missed.Tasks[0].ID)
	assert.Equal(t, model.StatusMissed, missed.Tasks[0].Status)

	mine, err := f.svc.List(ctx, f.alice.ID, query.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, mine.Tasks)
	assert.Zero(t, mine.Total)
}

// The creator of a task assigned to someone else cannot update it.
func TestUpdate_CreatorWithoutAssignmentForbidden(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.bob.ID, createRequest("alice@example.com", "2026-09-10"))
	require.NoError(t, err)

	title := "hijacked"
	_, err = f.svc.Update(ctx, f.bob.ID, created.ID, model.UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrForbidden)

	// The deny left the task untouched.
	view, err := f.svc.Get(ctx, f.alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write the release notes", view.Title)
}

func TestUpdate_PartialFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
	require.NoError(t, err)

	priority := "high"
	updated, err := f.svc.Update(ctx, f.bob.ID, created.ID, model.UpdateTaskRequest{Priority: &priority})
	require.NoError(t, err)

	assert.Equal(t, model.PriorityHigh, updated.Priority)
	// Unspecified fields keep their prior values.
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.DueDate, updated.DueDate)
}

func TestToggleComplete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-01"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusDueToday, created.Status)

	t.Run("only the assignee may toggle", func(t *testing.T) {
		_, err := f.svc.ToggleComplete(ctx, f.alice.ID, created.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("completing sets Done immediately", func(t *testing.T) {
		done, err := f.svc.ToggleComplete(ctx, f.bob.ID, created.ID)
		require.NoError(t, err)
		require.NotNil(t, done.CompletedAt)
		assert.Equal(t, now, done.CompletedAt.UTC())
		assert.Equal(t, model.StatusDone, done.Status)
	})

	t.Run("toggling twice restores the original state", func(t *testing.T) {
		reopened, err := f.svc.ToggleComplete(ctx, f.bob.ID, created.ID)
		require.NoError(t, err)
		assert.Nil(t, reopened.CompletedAt)
		assert.Equal(t, model.StatusDueToday, reopened.Status)
	})
}

// Alice assigns to Bob, then reassigns to Carol: Carol gains access,
// Bob loses it, and no trace of Bob remains on the task.
func TestReassign(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
	require.NoError(t, err)

	t.Run("assignee may not reassign", func(t *testing.T) {
		_, err := f.svc.Reassign(ctx, f.bob.ID, created.ID,
			model.ReassignTaskRequest{AssigneeEmail: "carol@example.com"})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("creator reassigns to carol", func(t *testing.T) {
		view, err := f.svc.Reassign(ctx, f.alice.ID, created.ID,
			model.ReassignTaskRequest{AssigneeEmail: "carol@example.com"})
		require.NoError(t, err)
		assert.Equal(t, f.carol.ID, view.Assignee.ID)
	})

	t.Run("bob can no longer view or update", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.bob.ID, created.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)

		title := "still mine?"
		_, err = f.svc.Update(ctx, f.bob.ID, created.ID, model.UpdateTaskRequest{Title: &title})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("carol can", func(t *testing.T) {
		view, err := f.svc.Get(ctx, f.carol.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, view.ID)
	})

	t.Run("unknown email leaves assignee unchanged", func(t *testing.T) {
		_, err := f.svc.Reassign(ctx, f.alice.ID, created.ID,
			model.ReassignTaskRequest{AssigneeEmail: "ghost@example.com"})
		assert.ErrorIs(t, err, model.ErrAssigneeNotFound)

		view, err := f.svc.Get(ctx, f.carol.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, f.carol.ID, view.Assignee.ID)
	})
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("assignee may delete", func(t *testing.T) {
		created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, f.bob.ID, created.ID))

		_, err = f.svc.Get(ctx, f.bob.ID, created.ID)
		assert.ErrorIs(t, err, model.ErrTaskNotFound)
	})

	t.Run("creator may delete", func(t *testing.T) {
		created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
		require.NoError(t, err)
		require.NoError(t, f.svc.Delete(ctx, f.alice.ID, created.ID))
	})

	t.Run("third party may not", func(t *testing.T) {
		created, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
		require.NoError(t, err)
		assert.ErrorIs(t, f.svc.Delete(ctx, f.carol.ID, created.ID), model.ErrForbidden)
	})

	t.Run("missing id is NotFound before any policy check", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.Delete(ctx, f.alice.ID, "no-such-task"), model.ErrTaskNotFound)
	})
}

func TestList_StatusUnionEqualsUnfiltered(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dueDates := []string{"2026-08-25", "2026-08-31", "2026-09-01", "2026-09-02", "2026-09-20"}
	for _, due := range dueDates {
		_, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", due))
		require.NoError(t, err)
	}

	// Complete one of them so every bucket is populated.
	all, err := f.svc.List(ctx, f.bob.ID, query.ListParams{})
	require.NoError(t, err)
	require.Len(t, all.Tasks, len(dueDates))
	_, err = f.svc.ToggleComplete(ctx, f.bob.ID, all.Tasks[0].ID)
	require.NoError(t, err)

	union := make(map[string]int)
	for _, status := range []string{"Done", "Missed/Late", "Due Today", "Upcoming"} {
		result, err := f.svc.List(ctx, f.bob.ID, query.ListParams{Status: status})
		require.NoError(t, err)
		for _, task := range result.Tasks {
			assert.Equal(t, model.Status(status), task.Status)
			union[task.ID]++
		}
	}

	assert.Len(t, union, len(dueDates))
	for id, n := range union {
		assert.Equal(t, 1, n, "task %s listed under multiple statuses", id)
	}
}

func TestList_LenientFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
	require.NoError(t, err)

	// Unknown values never fail the listing; they are simply ignored.
	result, err := f.svc.List(ctx, f.bob.ID, query.ListParams{
		Priority: "blocker",
		Status:   "Someday",
		Sort:     "secret_column",
		Order:    "sideways",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Total)
}

func TestList_PaginationMetadata(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := f.svc.Create(ctx, f.alice.ID, createRequest("bob@example.com", "2026-09-10"))
		require.NoError(t, err)
	}

	result, err := f.svc.List(ctx, f.bob.ID, query.ListParams{Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.PerPage)
	assert.EqualValues(t, 7, result.Total)
	assert.Len(t, result.Tasks, 3)
}

func TestGet_SelfAssignedTask(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, createRequest("alice@example.com", "2026-09-10"))
	require.NoError(t, err)
	assert.Equal(t, created.Creator.ID, created.Assignee.ID)

	view, err := f.svc.Get(ctx, f.alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)
}
