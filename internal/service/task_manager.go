package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"taskKeeper/internal/filter"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/session"
	"taskKeeper/internal/undo"
	"time"

	"go.uber.org/zap"
)

// TaskManager связывает хранилище задач, отмену удаления и состояние представления.
// Это то, что вызывает слой представления.
type TaskManager struct {
	store   *TaskStore
	users   UserStorage
	undo    *undo.Controller
	view    *session.State
	backend HealthChecker

	// deleteMtx держит удаление и отмену вместе с записью в undo
	deleteMtx sync.Mutex
}

func NewTaskManager(store *TaskStore, users UserStorage, undoCtl *undo.Controller, view *session.State) *TaskManager {
	return &TaskManager{
		store: store,
		users: users,
		undo:  undoCtl,
		view:  view,
	}
}

func (m *TaskManager) WithHealthCheck(backend HealthChecker) *TaskManager {
	m.backend = backend
	return m
}

func (m *TaskManager) HealthCheck(ctx context.Context) error {
	if m.backend == nil {
		return nil
	}
	if err := m.backend.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// Load загружает коллекцию при старте
func (m *TaskManager) Load(ctx context.Context) {
	m.store.Load(ctx)
}

func (m *TaskManager) Login(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("username", fmt.Errorf("имя не может быть пустым"))
	}
	m.users.SaveUsername(ctx, name)
	logger.Info("Service: Пользователь вошёл", zap.String("username", name))
	return nil
}

func (m *TaskManager) Logout(ctx context.Context) {
	m.users.SaveUsername(ctx, "")
	m.view.Cancel()
	logger.Info("Service: Пользователь вышел")
}

func (m *TaskManager) Username(ctx context.Context) string {
	return m.users.LoadUsername(ctx)
}

func (m *TaskManager) LoggedIn(ctx context.Context) bool {
	return strings.TrimSpace(m.Username(ctx)) != ""
}

// Tasks - коллекция через текущие фильтры сессии и общие счётчики
func (m *TaskManager) Tasks() ([]task.Task, filter.Counts) {
	v := m.view.Snapshot()
	all := m.store.List()
	return filter.View(all, v.Status, v.Priority, v.Search), filter.Count(all)
}

func (m *TaskManager) AllTasks() []task.Task {
	return m.store.List()
}

func (m *TaskManager) Overdue(today task.Date) []task.Task {
	return filter.Overdue(m.store.List(), today)
}

func (m *TaskManager) GetTask(id string) (task.Task, error) {
	return m.store.Get(id)
}

func (m *TaskManager) SetFilters(status filter.Status, priority filter.Priority, search string) {
	m.view.SetStatus(status)
	m.view.SetPriority(priority)
	m.view.SetSearch(search)
}

func (m *TaskManager) View() session.View {
	return m.view.Snapshot()
}

func (m *TaskManager) OpenForm() {
	m.view.OpenForm()
}

func (m *TaskManager) Cancel() {
	m.view.Cancel()
}

func (m *TaskManager) StartEdit(id string) (task.Task, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return task.Task{}, err
	}
	m.view.StartEdit(id)
	return t, nil
}

func (m *TaskManager) CreateTask(ctx context.Context, draft task.Draft) (task.Task, error) {
	t, err := m.store.Add(ctx, draft)
	if err != nil {
		return task.Task{}, err
	}
	m.view.CloseForm()
	return t, nil
}

func (m *TaskManager) UpdateTask(ctx context.Context, id string, draft task.Draft) (task.Task, error) {
	t, err := m.store.Update(ctx, id, draft)
	if err != nil {
		return task.Task{}, err
	}
	m.view.StopEditIf(id)
	return t, nil
}

func (m *TaskManager) ToggleTask(ctx context.Context, id string) (task.Task, error) {
	return m.store.ToggleCompletion(ctx, id)
}

func (m *TaskManager) AddTag(ctx context.Context, id, tag string) (task.Task, error) {
	return m.store.AddTag(ctx, id, tag)
}

func (m *TaskManager) RemoveTag(ctx context.Context, id, tag string) (task.Task, error) {
	return m.store.RemoveTag(ctx, id, tag)
}

// DeleteTask удаляет задачу и открывает окно отмены. Прошлое удаление больше не отменить.
func (m *TaskManager) DeleteTask(ctx context.Context, id string) (task.DeletedTask, error) {
	m.deleteMtx.Lock()
	defer m.deleteMtx.Unlock()

	removed, err := m.store.Remove(ctx, id)
	if err != nil {
		return task.DeletedTask{}, err
	}
	m.undo.RecordDeletion(removed)
	m.view.StopEditIf(id)

	rec, ok := m.undo.Pending()
	if !ok {
		// окно нулевой длины - отменять уже нечего
		return task.DeletedTask{Task: removed}, nil
	}
	return rec, nil
}

// UndoDelete возвращает последнюю удалённую задачу. false - отменять нечего.
func (m *TaskManager) UndoDelete(ctx context.Context) (task.Task, bool, error) {
	m.deleteMtx.Lock()
	defer m.deleteMtx.Unlock()

	t, ok := m.undo.Undo()
	if !ok {
		return task.Task{}, false, nil
	}

	restored, err := m.store.Restore(ctx, t)
	if err != nil {
		logger.Error("Service: Не удалось восстановить задачу", err, zap.String("task_id", t.ID))
		return task.Task{}, false, err
	}
	return restored, true, nil
}

func (m *TaskManager) DismissUndo() {
	m.undo.Expire()
}

func (m *TaskManager) PendingUndo() (task.DeletedTask, bool) {
	return m.undo.Pending()
}

func (m *TaskManager) UndoWindow() time.Duration {
	return m.undo.Window()
}
