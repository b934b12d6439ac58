package dto

import (
	"taskKeeper/internal/filter"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/session"
	"time"
)

type LoginRequest struct {
	Username string `json:"username"`
}

// CreateTaskRequest - тело POST /tasks. dueDate в формате YYYY-MM-DD.
type CreateTaskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description,omitempty"`
	DueDate     *string  `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
}

// UpdateTaskRequest - отсутствующее поле не меняется, пустая строка очищает описание и срок
type UpdateTaskRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	DueDate     *string  `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
}

type TagRequest struct {
	Tag string `json:"tag"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDate     *task.Date `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`
	Priority    string     `json:"priority"`
	IsOverdue   bool       `json:"isOverdue"`
}

type TaskListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Counts filter.Counts  `json:"counts"`
	View   session.View   `json:"view"`
}

type SessionResponse struct {
	Username string       `json:"username"`
	View     session.View `json:"view"`
}

type DeletedTaskResponse struct {
	Task      TaskResponse `json:"task"`
	Timestamp int64        `json:"timestamp"`
	ExpiresAt int64        `json:"expiresAt,omitempty"`
}

func FromTask(t task.Task, today task.Date) TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		DueDate:     t.DueDate,
		Tags:        tags,
		Priority:    string(t.Priority),
		IsOverdue:   t.IsOverdue(today),
	}
}

func FromTaskList(tasks []task.Task, today task.Date) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}

func FromDeleted(rec task.DeletedTask, window time.Duration, today task.Date) DeletedTaskResponse {
	res := DeletedTaskResponse{
		Task:      FromTask(rec.Task, today),
		Timestamp: rec.Timestamp,
	}
	if window > 0 {
		res.ExpiresAt = rec.Timestamp + window.Milliseconds()
	}
	return res
}
