package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatihgnc/taskman-api/internal/domain"
	"github.com/fatihgnc/taskman-api/internal/mocks"
	"github.com/fatihgnc/taskman-api/internal/service"
	"github.com/fatihgnc/taskman-api/internal/store"
)

func newTaskServiceFixture(t *testing.T) (*service.TaskServiceImpl, *mocks.MockTaskStore) {
	t.Helper()

	tasks := mocks.NewMockTaskStore()
	return service.NewTaskService(tasks, nil), tasks
}

func boolPtr(b bool) *bool { return &b }

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("creates with defaulted completion", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)

		task, err := svc.Create(ctx, ownerID, "  buy milk  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", task.Description, "description should be trimmed")
		assert.False(t, task.Completed)
		assert.Equal(t, ownerID, task.OwnerID)
		assert.Contains(t, tasks.Tasks, task.ID)
	})

	t.Run("honors an explicit completed flag", func(t *testing.T) {
		svc, _ := newTaskServiceFixture(t)

		task, err := svc.Create(ctx, ownerID, "already done", boolPtr(true))
		require.NoError(t, err)
		assert.True(t, task.Completed)
	})

	t.Run("rejects an empty description", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)

		_, err := svc.Create(ctx, ownerID, "   ", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyDescription)
		assert.Empty(t, tasks.Tasks)
	})
}

func TestTaskServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ownerID := uuid.New()

	seed := func(t *testing.T, tasks *mocks.MockTaskStore) {
		t.Helper()
		base := time.Now().UTC()
		for i := 0; i < 5; i++ {
			task, err := domain.NewTask(ownerID, fmt.Sprintf("task %d", i), boolPtr(i%2 == 0))
			require.NoError(t, err)
			task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, tasks.Create(ctx, task))
		}
	}

	t.Run("filters by completion state", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		seed(t, tasks)

		completed, err := svc.List(ctx, ownerID, store.ListOptions{Completed: boolPtr(true)})
		require.NoError(t, err)
		assert.Len(t, completed, 3)
		for _, task := range completed {
			assert.True(t, task.Completed)
		}
	})

	t.Run("paginates with limit and skip", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		seed(t, tasks)

		page, err := svc.List(ctx, ownerID, store.ListOptions{Limit: 2, Skip: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "task 2", page[0].Description)
		assert.Equal(t, "task 3", page[1].Description)
	})

	t.Run("sorts descending by creation time", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		seed(t, tasks)

		listed, err := svc.List(ctx, ownerID, store.ListOptions{
			SortBy:     store.SortByCreatedAt,
			Descending: true,
		})
		require.NoError(t, err)
		require.Len(t, listed, 5)
		assert.Equal(t, "task 4", listed[0].Description)
	})

	t.Run("a user with no tasks gets an empty slice", func(t *testing.T) {
		svc, _ := newTaskServiceFixture(t)

		listed, err := svc.List(ctx, uuid.New(), store.ListOptions{})
		require.NoError(t, err)
		assert.NotNil(t, listed)
		assert.Empty(t, listed)
	})
}

func TestTaskServiceGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("returns an owned task", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		task, err := domain.NewTask(ownerID, "buy milk", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		got, err := svc.Get(ctx, ownerID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
	})

	t.Run("someone else's task is indistinguishable from a missing one", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		foreign, err := domain.NewTask(uuid.New(), "not yours", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, foreign))

		_, err = svc.Get(ctx, ownerID, foreign.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		_, err = svc.Get(ctx, ownerID, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("applies partial updates", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		task, err := domain.NewTask(ownerID, "buy milk", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		updated, err := svc.Update(ctx, ownerID, task.ID, service.TaskUpdate{
			Completed: boolPtr(true),
		})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "buy milk", updated.Description, "untouched fields stay")

		desc := "buy oat milk"
		updated, err = svc.Update(ctx, ownerID, task.ID, service.TaskUpdate{
			Description: &desc,
		})
		require.NoError(t, err)
		assert.Equal(t, "buy oat milk", updated.Description)
		assert.True(t, updated.Completed)
	})

	t.Run("blanking the description fails validation", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		task, err := domain.NewTask(ownerID, "buy milk", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		blank := "   "
		_, err = svc.Update(ctx, ownerID, task.ID, service.TaskUpdate{Description: &blank})
		assert.ErrorIs(t, err, domain.ErrEmptyDescription)
	})

	t.Run("cannot update someone else's task", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		foreign, err := domain.NewTask(uuid.New(), "not yours", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, foreign))

		_, err = svc.Update(ctx, ownerID, foreign.ID, service.TaskUpdate{
			Completed: boolPtr(true),
		})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.False(t, tasks.Tasks[foreign.ID].Completed, "foreign task must be untouched")
	})
}

func TestTaskServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("returns the deleted task", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		task, err := domain.NewTask(ownerID, "buy milk", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		deleted, err := svc.Delete(ctx, ownerID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)
		assert.NotContains(t, tasks.Tasks, task.ID)
	})

	t.Run("cannot delete someone else's task", func(t *testing.T) {
		svc, tasks := newTaskServiceFixture(t)
		foreign, err := domain.NewTask(uuid.New(), "not yours", nil)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, foreign))

		_, err = svc.Delete(ctx, ownerID, foreign.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.Contains(t, tasks.Tasks, foreign.ID)
	})
}
