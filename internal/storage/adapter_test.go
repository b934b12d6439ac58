package storage_test

import (
	"context"
	"errors"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/repository/kv/inmemory"
	"taskKeeper/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKeyValue - мок key-value хранилища
type MockKeyValue struct {
	mock.Mock
}

func (m *MockKeyValue) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockKeyValue) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

var _ storage.KeyValue = (*MockKeyValue)(nil)

func sampleTasks() []task.Task {
	desc := "2 litres"
	due := task.NewDate(2025, time.May, 1)
	return []task.Task{
		{
			ID:          "b",
			Title:       "Buy milk",
			Description: &desc,
			Completed:   false,
			CreatedAt:   time.Date(2025, time.April, 2, 9, 30, 0, 123000000, time.UTC),
			DueDate:     &due,
			Tags:        []string{"home", "shopping"},
			Priority:    task.PriorityHigh,
		},
		{
			ID:        "a",
			Title:     "Write report",
			Completed: true,
			CreatedAt: time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC),
			Priority:  task.PriorityMedium,
		},
	}
}

// TestAdapter_RoundTrip тестирует сохранение и загрузку без потерь
func TestAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(inmemory.NewStorage(), "taskTracker")

	tasks := sampleTasks()
	adapter.SaveTasks(ctx, tasks)

	loaded := adapter.LoadTasks(ctx)
	assert.Equal(t, tasks, loaded)
}

// TestAdapter_LoadTolerant тестирует загрузку отсутствующих и повреждённых данных
func TestAdapter_LoadTolerant(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
	}{
		{name: "missing key", raw: nil},
		{name: "corrupt json", raw: ptr("{not json")},
		{name: "wrong shape", raw: ptr(`{"id":"1"}`)},
		{name: "null", raw: ptr("null")},
		{name: "empty array", raw: ptr("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := inmemory.NewStorage()
			if tt.raw != nil {
				require.NoError(t, kv.Set(ctx, "tasks", *tt.raw))
			}

			loaded := storage.NewAdapter(kv, "").LoadTasks(ctx)
			assert.NotNil(t, loaded)
			assert.Empty(t, loaded)
		})
	}

	t.Run("backend failure", func(t *testing.T) {
		kv := new(MockKeyValue)
		kv.On("Get", mock.Anything, "tasks").Return("", errors.New("disk on fire"))

		loaded := storage.NewAdapter(kv, "").LoadTasks(context.Background())
		assert.Empty(t, loaded)
		kv.AssertExpectations(t)
	})
}

// TestAdapter_SaveDroppedSilently тестирует пропуск записи при ошибке хранилища
func TestAdapter_SaveDroppedSilently(t *testing.T) {
	ctx := context.Background()
	kv := inmemory.NewStorage(inmemory.WithQuota(128))
	adapter := storage.NewAdapter(kv, "")

	small := []task.Task{{ID: "1", Title: "a", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}
	adapter.SaveTasks(ctx, small)
	require.Len(t, adapter.LoadTasks(ctx), 1)

	// не влезает в квоту - в хранилище остаётся прежнее значение
	assert.NotPanics(t, func() { adapter.SaveTasks(ctx, sampleTasks()) })
	assert.Equal(t, small, adapter.LoadTasks(ctx))
}

// TestAdapter_SaveFullOverwrite тестирует, что сохраняется вся коллекция целиком
func TestAdapter_SaveFullOverwrite(t *testing.T) {
	ctx := context.Background()
	kv := new(MockKeyValue)
	kv.On("Set", mock.Anything, "ns_tasks", "[]").Return(nil).Once()

	storage.NewAdapter(kv, "ns").SaveTasks(ctx, nil)
	kv.AssertExpectations(t)
}

// TestAdapter_Username тестирует хранение имени пользователя
func TestAdapter_Username(t *testing.T) {
	ctx := context.Background()
	kv := inmemory.NewStorage()
	adapter := storage.NewAdapter(kv, "taskTracker")

	assert.Equal(t, "", adapter.LoadUsername(ctx))

	adapter.SaveUsername(ctx, "  Alice ")
	assert.Equal(t, "  Alice ", adapter.LoadUsername(ctx))

	raw, err := kv.Get(ctx, "taskTracker_username")
	require.NoError(t, err)
	assert.Equal(t, "  Alice ", raw)

	// задачи и имя лежат под разными ключами
	_, err = kv.Get(ctx, "taskTracker_tasks")
	assert.Error(t, err)
}

func ptr(s string) *string {
	return &s
}
