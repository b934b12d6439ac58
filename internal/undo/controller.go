// Package undo хранит одну последнюю удалённую задачу и даёт восстановить её
// в течение окна отмены.
package undo

import (
	"sync"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"time"

	"go.uber.org/zap"
)

const DefaultWindow = 5 * time.Second

type Timer interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type pending struct {
	record    task.DeletedTask
	deletedAt time.Time
	seq       uint64
	timer     Timer
}

type Controller struct {
	mtx     sync.Mutex
	window  time.Duration
	clock   Clock
	pending *pending
	seq     uint64
}

type Option func(*Controller)

func WithWindow(window time.Duration) Option {
	return func(c *Controller) {
		if window > 0 {
			c.window = window
		}
	}
}

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func NewController(options ...Option) *Controller {
	c := &Controller{
		window: DefaultWindow,
		clock:  realClock{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Controller) Window() time.Duration {
	return c.window
}

// RecordDeletion запоминает удалённую задачу. Предыдущая запись, если была, теряется.
func (c *Controller) RecordDeletion(t task.Task) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.pending != nil {
		logger.Info("Undo: Предыдущее удаление больше нельзя отменить",
			zap.String("task_id", c.pending.record.Task.ID))
		c.clearLocked()
	}

	now := c.clock.Now()
	c.seq++
	seq := c.seq

	c.pending = &pending{
		record: task.DeletedTask{
			Task:      t.Clone(),
			Timestamp: now.UnixMilli(),
		},
		deletedAt: now,
		seq:       seq,
	}
	c.pending.timer = c.clock.AfterFunc(c.window, func() {
		c.expireIf(seq)
	})
}

// Undo возвращает задачу, если окно отмены ещё открыто. Повторный вызов ничего не делает.
func (c *Controller) Undo() (task.Task, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.liveLocked() {
		return task.Task{}, false
	}

	t := c.pending.record.Task
	c.clearLocked()
	return t, true
}

// Expire сбрасывает запись без восстановления
func (c *Controller) Expire() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.clearLocked()
}

// Pending отдаёт текущую запись для уведомления. Просроченная запись считается отсутствующей.
func (c *Controller) Pending() (task.DeletedTask, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.liveLocked() {
		return task.DeletedTask{}, false
	}
	rec := c.pending.record
	rec.Task = rec.Task.Clone()
	return rec, true
}

// Remaining - сколько осталось до закрытия окна
func (c *Controller) Remaining() time.Duration {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.liveLocked() {
		return 0
	}
	return c.window - c.clock.Now().Sub(c.pending.deletedAt)
}

func (c *Controller) Close() {
	c.Expire()
}

// таймер мог сработать уже после того, как запись заменили
func (c *Controller) expireIf(seq uint64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.pending == nil || c.pending.seq != seq {
		return
	}
	logger.Debug("Undo: Окно отмены истекло", zap.String("task_id", c.pending.record.Task.ID))
	c.pending = nil
}

// liveLocked проверяет время сама, не полагаясь на таймер
func (c *Controller) liveLocked() bool {
	if c.pending == nil {
		return false
	}
	if c.clock.Now().Sub(c.pending.deletedAt) >= c.window {
		logger.Debug("Undo: Запись просрочена", zap.String("task_id", c.pending.record.Task.ID))
		c.clearLocked()
		return false
	}
	return true
}

func (c *Controller) clearLocked() {
	if c.pending == nil {
		return
	}
	if c.pending.timer != nil {
		c.pending.timer.Stop()
	}
	c.pending = nil
}
