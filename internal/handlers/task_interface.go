package handlers

import (
	"context"
	"taskKeeper/internal/filter"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/session"
	"time"
)

type Service interface {
	HealthCheck(ctx context.Context) error

	Login(ctx context.Context, name string) error
	Logout(ctx context.Context)
	Username(ctx context.Context) string
	LoggedIn(ctx context.Context) bool

	View() session.View
	OpenForm()
	Cancel()
	SetFilters(status filter.Status, priority filter.Priority, search string)

	Tasks() ([]task.Task, filter.Counts)
	AllTasks() []task.Task
	Overdue(today task.Date) []task.Task
	GetTask(id string) (task.Task, error)
	StartEdit(id string) (task.Task, error)

	CreateTask(ctx context.Context, draft task.Draft) (task.Task, error)
	UpdateTask(ctx context.Context, id string, draft task.Draft) (task.Task, error)
	ToggleTask(ctx context.Context, id string) (task.Task, error)
	AddTag(ctx context.Context, id, tag string) (task.Task, error)
	RemoveTag(ctx context.Context, id, tag string) (task.Task, error)

	DeleteTask(ctx context.Context, id string) (task.DeletedTask, error)
	UndoDelete(ctx context.Context) (task.Task, bool, error)
	DismissUndo()
	PendingUndo() (task.DeletedTask, bool)
	UndoWindow() time.Duration
}
