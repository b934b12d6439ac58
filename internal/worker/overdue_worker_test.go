package worker

import (
	"context"
	"sync/atomic"
	"taskKeeper/internal/models/task"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOverdueSource - мок источника просроченных задач
type MockOverdueSource struct {
	mock.Mock
	calls atomic.Int32
}

func (m *MockOverdueSource) Overdue(today task.Date) []task.Task {
	m.calls.Add(1)
	args := m.Called(today)
	return args.Get(0).([]task.Task)
}

// TestOverdueWorker_Check тестирует одну проверку
func TestOverdueWorker_Check(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		overdue  []task.Task
		expected []string
	}{
		{name: "nothing overdue", overdue: []task.Task{}, expected: []string{}},
		{name: "two overdue", overdue: []task.Task{{ID: "a"}, {ID: "b"}}, expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockOverdueSource)
			source.On("Overdue", task.NewDate(2025, time.March, 10)).Return(tt.overdue)

			w := NewOverdueWorker(source, nil)
			w.now = func() time.Time { return now }

			assert.Equal(t, tt.expected, w.Check(context.Background()))
			source.AssertExpectations(t)
		})
	}
}

func TestOverdueWorker_CheckCancelled(t *testing.T) {
	source := new(MockOverdueSource)
	w := NewOverdueWorker(source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, w.Check(ctx))
	source.AssertNotCalled(t, "Overdue", mock.Anything)
}

func TestNewOverdueWorker_DefaultInterval(t *testing.T) {
	assert.Equal(t, time.Minute, NewOverdueWorker(nil, nil).Interval())

	zero := time.Duration(0)
	assert.Equal(t, time.Minute, NewOverdueWorker(nil, &zero).Interval())

	custom := 10 * time.Second
	assert.Equal(t, custom, NewOverdueWorker(nil, &custom).Interval())
}

// TestOverdueWorker_Start тестирует работу по таймеру и остановку по контексту
func TestOverdueWorker_Start(t *testing.T) {
	source := new(MockOverdueSource)
	source.On("Overdue", mock.Anything).Return([]task.Task{})

	interval := 5 * time.Millisecond
	w := NewOverdueWorker(source, &interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker не остановился после отмены контекста")
	}
}
