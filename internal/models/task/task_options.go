package task

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Draft - поля задачи, которые задаёт пользователь. nil означает "не менять".
// Tags == nil оставляет теги как есть, пустой срез очищает их.
type Draft struct {
	Title       *string
	Description *string
	DueDate     *Date
	Tags        []string
	Priority    *Priority
}

type DraftOption func(*Draft)

func NewDraft(options ...DraftOption) Draft {
	var d Draft
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&d)
	}
	return d
}

func WithTitle(title string) DraftOption {
	return func(d *Draft) {
		d.Title = &title
	}
}

func WithDescription(description string) DraftOption {
	return func(d *Draft) {
		d.Description = &description
	}
}

// WithDueDate с нулевой датой убирает срок
func WithDueDate(due Date) DraftOption {
	return func(d *Draft) {
		d.DueDate = &due
	}
}

func WithTags(tags ...string) DraftOption {
	return func(d *Draft) {
		d.Tags = append([]string{}, tags...)
	}
}

func WithPriority(priority Priority) DraftOption {
	if priority == "" {
		return nil
	}
	return func(d *Draft) {
		d.Priority = &priority
	}
}

// ValidateTitle проверяет, что название не пустое после обрезки пробелов
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("название не может быть пустым")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("название длиннее %d символов", MaxTitleLength)
	}
	return nil
}

// Validate проверяет поля черновика, не трогая задачу
func (d Draft) Validate() (field string, err error) {
	if d.Title != nil {
		if err := ValidateTitle(*d.Title); err != nil {
			return "title", err
		}
	}
	if d.Priority != nil && !d.Priority.Valid() {
		return "priority", fmt.Errorf("неизвестный приоритет %q", *d.Priority)
	}
	if d.Tags != nil {
		if _, err := NormalizeTags(d.Tags); err != nil {
			return "tags", err
		}
	}
	return "", nil
}

// ApplyTo переносит заданные поля в задачу. id, createdAt и completed не меняются.
// Черновик должен быть проверен через Validate.
func (d Draft) ApplyTo(t *Task) {
	if d.Title != nil {
		t.Title = strings.TrimSpace(*d.Title)
	}
	if d.Description != nil {
		if *d.Description == "" {
			t.Description = nil
		} else {
			desc := *d.Description
			t.Description = &desc
		}
	}
	if d.DueDate != nil {
		if d.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			due := *d.DueDate
			t.DueDate = &due
		}
	}
	if d.Tags != nil {
		tags, _ := NormalizeTags(d.Tags)
		if len(tags) == 0 {
			t.Tags = nil
		} else {
			t.Tags = tags
		}
	}
	if d.Priority != nil {
		t.Priority = *d.Priority
	}
}
