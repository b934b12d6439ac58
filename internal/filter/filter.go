package filter

import (
	"fmt"
	"strings"
	"taskKeeper/internal/models/task"
)

type Status string

const StatusAll Status = "all"
const StatusCompleted Status = "completed"
const StatusPending Status = "pending"

// Priority - фильтр по приоритету; PriorityAll пропускает все задачи
type Priority string

const PriorityAll Priority = "all"
const PriorityLow = Priority(task.PriorityLow)
const PriorityMedium = Priority(task.PriorityMedium)
const PriorityHigh = Priority(task.PriorityHigh)

type Counts struct {
	All       int `json:"all"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusCompleted, StatusPending:
		return st, nil
	}
	return "", fmt.Errorf("неизвестный фильтр статуса %q", s)
}

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityAll, nil
	case PriorityAll, PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("неизвестный фильтр приоритета %q", s)
}

// View отбирает задачи по статусу, приоритету и строке поиска.
// Порядок исходной коллекции сохраняется.
func View(tasks []task.Task, status Status, priority Priority, search string) []task.Task {
	term := strings.ToLower(strings.TrimSpace(search))

	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchStatus(t, status) || !matchPriority(t, priority) || !matchSearch(t, term) {
			continue
		}
		res = append(res, t)
	}
	return res
}

// Count считает задачи по всей коллекции, без учёта фильтров
func Count(tasks []task.Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

// Overdue - невыполненные задачи со сроком раньше today
func Overdue(tasks []task.Task, today task.Date) []task.Task {
	res := []task.Task{}
	for _, t := range tasks {
		if t.IsOverdue(today) {
			res = append(res, t)
		}
	}
	return res
}

func matchStatus(t task.Task, status Status) bool {
	switch status {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	}
	return true
}

func matchPriority(t task.Task, priority Priority) bool {
	if priority == "" || priority == PriorityAll {
		return true
	}
	return string(t.Priority) == string(priority)
}

func matchSearch(t task.Task, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), term) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
