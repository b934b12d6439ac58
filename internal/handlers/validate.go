package handlers

import (
	"mime"
	"net/http"
	"strings"
	"taskKeeper/internal/filter"
	"taskKeeper/internal/handlers/dto"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/service"
	"taskKeeper/internal/session"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func createDraft(req dto.CreateTaskRequest) (task.Draft, error) {
	return buildDraft(req.Title, req.Description, req.DueDate, req.Tags, req.Priority)
}

func updateDraft(req dto.UpdateTaskRequest) (task.Draft, error) {
	return buildDraft(req.Title, req.Description, req.DueDate, req.Tags, req.Priority)
}

func buildDraft(title, description, dueDate *string, tags []string, priority *string) (task.Draft, error) {
	opts := []task.DraftOption{}

	if title != nil {
		opts = append(opts, task.WithTitle(*title))
	}
	if description != nil {
		opts = append(opts, task.WithDescription(*description))
	}
	if dueDate != nil {
		due := task.Date{}
		if strings.TrimSpace(*dueDate) != "" {
			parsed, err := task.ParseDate(*dueDate)
			if err != nil {
				return task.Draft{}, service.NewValidationError("dueDate", err)
			}
			due = parsed
		}
		opts = append(opts, task.WithDueDate(due))
	}
	if tags != nil {
		opts = append(opts, task.WithTags(tags...))
	}
	if priority != nil && strings.TrimSpace(*priority) != "" {
		p, err := task.ParsePriority(*priority)
		if err != nil {
			return task.Draft{}, service.NewValidationError("priority", err)
		}
		opts = append(opts, task.WithPriority(p))
	}

	return task.NewDraft(opts...), nil
}

// parseFilters берёт из запроса только переданные параметры, остальное - из текущего состояния
func parseFilters(r *http.Request, current session.View) (filter.Status, filter.Priority, string, error) {
	query := r.URL.Query()
	status, priority, search := current.Status, current.Priority, current.Search

	if query.Has("status") {
		parsed, err := filter.ParseStatus(query.Get("status"))
		if err != nil {
			return "", "", "", service.NewValidationError("status", err)
		}
		status = parsed
	}
	if query.Has("priority") {
		parsed, err := filter.ParsePriority(query.Get("priority"))
		if err != nil {
			return "", "", "", service.NewValidationError("priority", err)
		}
		priority = parsed
	}
	if query.Has("search") {
		search = query.Get("search")
	}
	return status, priority, search, nil
}
