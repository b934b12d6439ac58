package service

import (
	"context"
	"taskKeeper/internal/models/task"
)

// TaskStorage - хранилище всей коллекции задач. Ошибки обрабатывает само.
type TaskStorage interface {
	LoadTasks(ctx context.Context) []task.Task
	SaveTasks(ctx context.Context, tasks []task.Task)
}

type UserStorage interface {
	LoadUsername(ctx context.Context) string
	SaveUsername(ctx context.Context, name string)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
