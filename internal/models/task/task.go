package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength = 200
	MaxTagLength   = 32
	DateLayout     = "2006-01-02"
)

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	DueDate     *Date     `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Priority    Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("неизвестный приоритет %q", s)
	}
	return p, nil
}

// DeletedTask - запись для отмены удаления, timestamp в миллисекундах unix
type DeletedTask struct {
	Task      Task  `json:"task"`
	Timestamp int64 `json:"timestamp"`
}

// Date хранит только календарную дату, без времени
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return Date{d}, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("неверный формат даты %q: %w", s, err)
	}
	return DateOf(ts), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// NormalizeTag приводит тег к нижнему регистру без пробелов по краям
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags убирает пустые теги и дубликаты без учёта регистра,
// сохраняя порядок первого добавления
func NormalizeTags(tags []string) ([]string, error) {
	res := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, raw := range tags {
		tag := NormalizeTag(raw)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Errorf("тег %q длиннее %d символов", tag, MaxTagLength)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		res = append(res, tag)
	}
	return res, nil
}

func (t *Task) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// Clone возвращает копию задачи без общих указателей и срезов
func (t Task) Clone() Task {
	res := t
	if t.Description != nil {
		desc := *t.Description
		res.Description = &desc
	}
	if t.DueDate != nil {
		due := *t.DueDate
		res.DueDate = &due
	}
	if t.Tags != nil {
		res.Tags = append([]string(nil), t.Tags...)
	}
	return res
}

func (t Task) IsOverdue(today Date) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
}
