package undo_test

import (
	"sync"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/undo"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock - ручные часы: время двигается только через Advance
type fakeClock struct {
	mtx    sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) undo.Timer {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mtx.Lock()
	defer t.clock.mtx.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

// Advance двигает время и вызывает наступившие таймеры
func (c *fakeClock) Advance(d time.Duration) {
	c.mtx.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mtx.Unlock()

	for _, f := range due {
		f()
	}
}

// AdvanceWithoutFiring двигает время, не вызывая таймеры
func (c *fakeClock) AdvanceWithoutFiring(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = c.now.Add(d)
}

// fireAll вызывает все таймеры, даже остановленные, как запоздавший колбэк
func (c *fakeClock) fireAll() {
	c.mtx.Lock()
	fs := make([]func(), 0, len(c.timers))
	for _, t := range c.timers {
		fs = append(fs, t.f)
	}
	c.mtx.Unlock()
	for _, f := range fs {
		f()
	}
}

func newTask(id string) task.Task {
	return task.Task{
		ID:        id,
		Title:     "task " + id,
		CreatedAt: time.Date(2024, time.December, 31, 8, 0, 0, 0, time.UTC),
		Priority:  task.PriorityMedium,
	}
}

// TestController_UndoWithinWindow тестирует восстановление в пределах окна
func TestController_UndoWithinWindow(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock))

	x := newTask("x")
	c.RecordDeletion(x)

	rec, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, "x", rec.Task.ID)
	assert.Equal(t, clock.Now().UnixMilli(), rec.Timestamp)

	clock.Advance(4999 * time.Millisecond)

	restored, ok := c.Undo()
	require.True(t, ok)
	assert.Equal(t, x, restored)

	// повторная отмена ничего не делает
	_, ok = c.Undo()
	assert.False(t, ok)
}

// TestController_ExpiryByTimer тестирует закрытие окна по таймеру
func TestController_ExpiryByTimer(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock))

	c.RecordDeletion(newTask("x"))
	clock.Advance(5 * time.Second)

	_, ok := c.Pending()
	assert.False(t, ok)
	_, ok = c.Undo()
	assert.False(t, ok)
}

// TestController_ExpiryCheckedAtUse тестирует проверку времени в момент отмены,
// когда таймер ещё не успел сработать
func TestController_ExpiryCheckedAtUse(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock))

	c.RecordDeletion(newTask("x"))
	clock.AdvanceWithoutFiring(5001 * time.Millisecond)

	_, ok := c.Undo()
	assert.False(t, ok)
	assert.Equal(t, time.Duration(0), c.Remaining())
}

// TestController_Supersession тестирует замену записи новым удалением
func TestController_Supersession(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock))

	c.RecordDeletion(newTask("x"))
	clock.Advance(3 * time.Second)
	c.RecordDeletion(newTask("y"))

	// таймер x срабатывает в 5с, но запись уже принадлежит y
	clock.Advance(2500 * time.Millisecond)

	restored, ok := c.Undo()
	require.True(t, ok)
	assert.Equal(t, "y", restored.ID)

	_, ok = c.Undo()
	assert.False(t, ok)
}

// TestController_StaleTimerIsNoop тестирует, что старый таймер не сбрасывает новую запись
func TestController_StaleTimerIsNoop(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock))

	c.RecordDeletion(newTask("x"))
	c.RecordDeletion(newTask("y"))

	clock.fireAll()

	// последний таймер относится к y и тоже сработал - но это колбэк текущей записи
	_, ok := c.Pending()
	assert.False(t, ok)

	c.RecordDeletion(newTask("z"))
	// запоздавшие колбэки x и y не трогают z
	clock.mtx.Lock()
	stale := []func(){clock.timers[0].f, clock.timers[1].f}
	clock.mtx.Unlock()
	for _, f := range stale {
		f()
	}

	rec, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, "z", rec.Task.ID)
}

// TestController_Expire тестирует явное закрытие уведомления
func TestController_Expire(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock))

	c.RecordDeletion(newTask("x"))
	c.Expire()

	_, ok := c.Undo()
	assert.False(t, ok)

	// Expire без записи безопасен
	assert.NotPanics(t, c.Expire)
}

// TestController_Remaining тестирует оставшееся время
func TestController_Remaining(t *testing.T) {
	clock := newFakeClock()
	c := undo.NewController(undo.WithClock(clock), undo.WithWindow(10*time.Second))
	assert.Equal(t, 10*time.Second, c.Window())

	c.RecordDeletion(newTask("x"))
	clock.Advance(4 * time.Second)
	assert.Equal(t, 6*time.Second, c.Remaining())
}

// TestController_RealClock тестирует работу с настоящим таймером
func TestController_RealClock(t *testing.T) {
	c := undo.NewController(undo.WithWindow(20 * time.Millisecond))
	defer c.Close()

	c.RecordDeletion(newTask("x"))
	assert.Eventually(t, func() bool {
		_, ok := c.Pending()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

// TestController_RecordCopiesTask тестирует независимость записи от исходной задачи
func TestController_RecordCopiesTask(t *testing.T) {
	c := undo.NewController(undo.WithClock(newFakeClock()))

	x := newTask("x")
	x.Tags = []string{"a"}
	c.RecordDeletion(x)
	x.Tags[0] = "changed"

	restored, ok := c.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, restored.Tags)
}
