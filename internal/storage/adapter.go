// Package storage сохраняет коллекцию задач и имя пользователя в key-value хранилище.
// Ошибки хранилища и разбора данных не выходят наружу: чтение отдаёт пустые значения,
// неудачная запись пропускается с предупреждением в логе.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/repository"

	"go.uber.org/zap"
)

const (
	TasksKey    = "tasks"
	UsernameKey = "username"
)

type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Adapter struct {
	kv        KeyValue
	namespace string
}

// NewAdapter создаёт адаптер. namespace добавляется к ключам как префикс "namespace_".
func NewAdapter(kv KeyValue, namespace string) *Adapter {
	return &Adapter{kv: kv, namespace: namespace}
}

func (a *Adapter) key(name string) string {
	if a.namespace == "" {
		return name
	}
	return a.namespace + "_" + name
}

func (a *Adapter) LoadTasks(ctx context.Context) []task.Task {
	key := a.key(TasksKey)

	data, err := a.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Storage: Не удалось прочитать задачи", zap.String("key", key), zap.Error(err))
		}
		return []task.Task{}
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		logger.Warn("Storage: Повреждённые данные задач, начинаем с пустого списка",
			zap.String("key", key),
			zap.Error(err))
		return []task.Task{}
	}

	logger.Debug("Storage: Задачи загружены", zap.Int("count", len(tasks)))
	return tasks
}

func (a *Adapter) SaveTasks(ctx context.Context, tasks []task.Task) {
	key := a.key(TasksKey)

	data, err := encodeTasks(tasks)
	if err != nil {
		logger.Warn("Storage: Не удалось сериализовать задачи", zap.Error(err))
		return
	}

	if err := a.kv.Set(ctx, key, data); err != nil {
		logger.Warn("Storage: Запись задач пропущена",
			zap.String("key", key),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return
	}
	logger.Debug("Storage: Задачи сохранены", zap.Int("count", len(tasks)))
}

func (a *Adapter) LoadUsername(ctx context.Context) string {
	name, err := a.kv.Get(ctx, a.key(UsernameKey))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Storage: Не удалось прочитать имя пользователя", zap.Error(err))
		}
		return ""
	}
	return name
}

func (a *Adapter) SaveUsername(ctx context.Context, name string) {
	if err := a.kv.Set(ctx, a.key(UsernameKey), name); err != nil {
		logger.Warn("Storage: Запись имени пользователя пропущена", zap.Error(err))
	}
}

func encodeTasks(tasks []task.Task) (string, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("сериализация задач: %w", err)
	}
	return string(data), nil
}

func decodeTasks(data string) ([]task.Task, error) {
	var tasks []task.Task
	if err := json.Unmarshal([]byte(data), &tasks); err != nil {
		return nil, fmt.Errorf("разбор задач: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}
