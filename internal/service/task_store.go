package service

import (
	"context"
	"fmt"
	"sync"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resourceTask = "Задача"

// TaskStore - единственный владелец коллекции задач. Каждое изменение
// сразу сохраняет всю коллекцию; при ошибке состояние не меняется.
type TaskStore struct {
	repo   TaskStorage
	mtx    *sync.RWMutex
	tasks  []task.Task
	issued map[string]struct{} // id удалённых задач тоже не выдаются повторно
	now    func() time.Time
	newID  func() string
}

type StoreOption func(*TaskStore)

func WithNow(now func() time.Time) StoreOption {
	return func(s *TaskStore) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *TaskStore) {
		s.newID = newID
	}
}

func NewTaskStore(repo TaskStorage, options ...StoreOption) *TaskStore {
	s := &TaskStore{
		repo:   repo,
		mtx:    &sync.RWMutex{},
		tasks:  []task.Task{},
		issued: make(map[string]struct{}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Load читает коллекцию из хранилища. Задачи без id получают новый id,
// повторяющиеся id отбрасываются, пустой приоритет становится medium.
func (s *TaskStore) Load(ctx context.Context) []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	loaded := s.repo.LoadTasks(ctx)
	tasks := make([]task.Task, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))

	for _, t := range loaded {
		if t.ID == "" {
			t.ID = s.newID()
		}
		if _, ok := seen[t.ID]; ok {
			logger.Warn("Store: Повторяющийся id при загрузке, задача пропущена", zap.String("task_id", t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		s.issued[t.ID] = struct{}{}
		if !t.Priority.Valid() {
			t.Priority = task.PriorityMedium
		}
		tasks = append(tasks, t)
	}

	s.tasks = tasks
	logger.Info("Store: Коллекция загружена", zap.Int("count", len(tasks)))
	return s.snapshotLocked()
}

func (s *TaskStore) List() []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.snapshotLocked()
}

func (s *TaskStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) Get(id string) (task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return task.Task{}, NewNotFound(resourceTask, id)
	}
	return s.tasks[i].Clone(), nil
}

func (s *TaskStore) Add(ctx context.Context, draft task.Draft) (task.Task, error) {
	if draft.Title == nil {
		return task.Task{}, NewValidationError("title", fmt.Errorf("название обязательно"))
	}
	if field, err := draft.Validate(); err != nil {
		logger.Info("Store: Черновик не прошёл проверку", zap.String("field", field), zap.Error(err))
		return task.Task{}, NewValidationError(field, err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	created := task.Task{
		ID:        s.uniqueIDLocked(),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Priority:  task.PriorityMedium,
	}
	draft.ApplyTo(&created)

	next := make([]task.Task, 0, len(s.tasks)+1)
	next = append(next, created)
	next = append(next, s.tasks...)
	s.tasks = next

	s.persistLocked(ctx)
	logger.Info("Store: Задача создана", zap.String("task_id", created.ID))
	return created.Clone(), nil
}

func (s *TaskStore) Update(ctx context.Context, id string, draft task.Draft) (task.Task, error) {
	if field, err := draft.Validate(); err != nil {
		return task.Task{}, NewValidationError(field, err)
	}

	return s.modify(ctx, id, "update", func(t *task.Task) error {
		draft.ApplyTo(t)
		if err := task.ValidateTitle(t.Title); err != nil {
			return NewValidationError("title", err)
		}
		return nil
	})
}

func (s *TaskStore) ToggleCompletion(ctx context.Context, id string) (task.Task, error) {
	return s.modify(ctx, id, "toggle", func(t *task.Task) error {
		t.Completed = !t.Completed
		return nil
	})
}

func (s *TaskStore) AddTag(ctx context.Context, id, tag string) (task.Task, error) {
	tag = task.NormalizeTag(tag)
	if tag == "" {
		return task.Task{}, NewValidationError("tags", fmt.Errorf("тег не может быть пустым"))
	}
	if _, err := task.NormalizeTags([]string{tag}); err != nil {
		return task.Task{}, NewValidationError("tags", err)
	}

	return s.modify(ctx, id, "add_tag", func(t *task.Task) error {
		tags, err := task.NormalizeTags(append(append([]string{}, t.Tags...), tag))
		if err != nil {
			return NewValidationError("tags", err)
		}
		t.Tags = tags
		return nil
	})
}

func (s *TaskStore) RemoveTag(ctx context.Context, id, tag string) (task.Task, error) {
	tag = task.NormalizeTag(tag)
	return s.modify(ctx, id, "remove_tag", func(t *task.Task) error {
		tags := make([]string, 0, len(t.Tags))
		for _, existing := range t.Tags {
			if existing != tag {
				tags = append(tags, existing)
			}
		}
		if len(tags) == 0 {
			tags = nil
		}
		t.Tags = tags
		return nil
	})
}

// Remove убирает задачу из коллекции и возвращает её. Об отмене удаления хранилище не знает.
func (s *TaskStore) Remove(ctx context.Context, id string) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		logger.Info("Store: Удаление несуществующей задачи", zap.String("task_id", id))
		return task.Task{}, NewNotFound(resourceTask, id)
	}

	removed := s.tasks[i]
	next := make([]task.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next

	s.persistLocked(ctx)
	logger.Info("Store: Задача удалена", zap.String("task_id", id))
	return removed.Clone(), nil
}

// Restore возвращает ранее удалённую задачу в начало списка с прежними id и createdAt
func (s *TaskStore) Restore(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		return task.Task{}, NewValidationError("id", fmt.Errorf("id не может быть пустым"))
	}
	if err := task.ValidateTitle(t.Title); err != nil {
		return task.Task{}, NewValidationError("title", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.indexLocked(t.ID) >= 0 {
		return task.Task{}, NewConflict(
			fmt.Sprintf("задача %s уже есть в списке", t.ID),
			ToDetail("id", t.ID),
		)
	}

	restored := t.Clone()
	s.issued[restored.ID] = struct{}{}
	next := make([]task.Task, 0, len(s.tasks)+1)
	next = append(next, restored)
	next = append(next, s.tasks...)
	s.tasks = next

	s.persistLocked(ctx)
	logger.Info("Store: Задача восстановлена", zap.String("task_id", t.ID))
	return restored.Clone(), nil
}

// modify применяет изменение к копии задачи и сохраняет её, только если fn не вернула ошибку
func (s *TaskStore) modify(ctx context.Context, id, op string, fn func(*task.Task) error) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		logger.Info("Store: Задача не найдена", zap.String("task_id", id), zap.String("operation", op))
		return task.Task{}, NewNotFound(resourceTask, id)
	}

	updated := s.tasks[i].Clone()
	if err := fn(&updated); err != nil {
		return task.Task{}, err
	}
	s.tasks[i] = updated

	s.persistLocked(ctx)
	logger.Debug("Store: Задача изменена", zap.String("task_id", id), zap.String("operation", op))
	return updated.Clone(), nil
}

func (s *TaskStore) persistLocked(ctx context.Context) {
	s.repo.SaveTasks(ctx, s.snapshotLocked())
}

func (s *TaskStore) snapshotLocked() []task.Task {
	res := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		res[i] = t.Clone()
	}
	return res
}

func (s *TaskStore) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) uniqueIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.issued[id]; id != "" && !taken {
			s.issued[id] = struct{}{}
			return id
		}
		logger.Warn("Store: Сгенерирован занятый id, повторяем", zap.String("task_id", id))
	}
}
