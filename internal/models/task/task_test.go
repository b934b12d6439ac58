package task_test

import (
	"encoding/json"
	"strings"
	"taskKeeper/internal/models/task"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeTags тестирует нормализацию тегов
func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "lowercase and trim",
			input:    []string{"  Work ", "HOME"},
			expected: []string{"work", "home"},
		},
		{
			name:     "case-insensitive duplicates keep first position",
			input:    []string{"Work", "urgent", "work", "WORK"},
			expected: []string{"work", "urgent"},
		},
		{
			name:     "empty entries dropped",
			input:    []string{"", "   ", "a"},
			expected: []string{"a"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := task.NormalizeTags(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}

	t.Run("too long tag", func(t *testing.T) {
		_, err := task.NormalizeTags([]string{strings.Repeat("x", task.MaxTagLength+1)})
		assert.Error(t, err)
	})
}

// TestDate_JSON тестирует формат даты срока
func TestDate_JSON(t *testing.T) {
	due := task.NewDate(2025, time.March, 9)

	data, err := json.Marshal(due)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(data))

	var decoded task.Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, due, decoded)

	t.Run("full timestamp keeps the date only", func(t *testing.T) {
		var d task.Date
		require.NoError(t, json.Unmarshal([]byte(`"2025-03-09T18:30:00Z"`), &d))
		assert.Equal(t, due, d)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		var d task.Date
		assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
	})
}

// TestDraft_Validate тестирует проверку черновика
func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name  string
		draft task.Draft
		field string
	}{
		{name: "valid", draft: task.NewDraft(task.WithTitle("Buy milk")), field: ""},
		{name: "blank title", draft: task.NewDraft(task.WithTitle("   \t")), field: "title"},
		{name: "empty title", draft: task.NewDraft(task.WithTitle("")), field: "title"},
		{name: "long title", draft: task.NewDraft(task.WithTitle(strings.Repeat("a", task.MaxTitleLength+1))), field: "title"},
		{name: "max title with padding", draft: task.NewDraft(task.WithTitle("  " + strings.Repeat("a", task.MaxTitleLength) + "  ")), field: ""},
		{name: "bad priority", draft: task.NewDraft(task.WithPriority("urgent")), field: "priority"},
		{name: "no title in update draft", draft: task.NewDraft(task.WithPriority(task.PriorityHigh)), field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, err := tt.draft.Validate()
			assert.Equal(t, tt.field, field)
			if tt.field == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

// TestDraft_ApplyTo тестирует слияние черновика с задачей
func TestDraft_ApplyTo(t *testing.T) {
	desc := "old"
	due := task.NewDate(2025, time.January, 1)
	created := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
	existing := task.Task{
		ID:          "id-1",
		Title:       "Old",
		Description: &desc,
		Completed:   true,
		CreatedAt:   created,
		DueDate:     &due,
		Tags:        []string{"a"},
		Priority:    task.PriorityLow,
	}

	t.Run("only set fields change", func(t *testing.T) {
		tk := existing.Clone()
		task.NewDraft(task.WithTitle("  New  ")).ApplyTo(&tk)

		assert.Equal(t, "New", tk.Title)
		assert.Equal(t, "id-1", tk.ID)
		assert.Equal(t, created, tk.CreatedAt)
		assert.True(t, tk.Completed)
		assert.Equal(t, "old", *tk.Description)
		assert.Equal(t, []string{"a"}, tk.Tags)
		assert.Equal(t, task.PriorityLow, tk.Priority)
	})

	t.Run("empty values clear optional fields", func(t *testing.T) {
		tk := existing.Clone()
		task.NewDraft(
			task.WithDescription(""),
			task.WithDueDate(task.Date{}),
			task.WithTags(),
		).ApplyTo(&tk)

		assert.Nil(t, tk.Description)
		assert.Nil(t, tk.DueDate)
		assert.Nil(t, tk.Tags)
	})

	t.Run("tags are normalised", func(t *testing.T) {
		tk := existing.Clone()
		task.NewDraft(task.WithTags("Work", "work", "Home")).ApplyTo(&tk)
		assert.Equal(t, []string{"work", "home"}, tk.Tags)
	})

	t.Run("clone does not share memory", func(t *testing.T) {
		tk := existing.Clone()
		tk.Tags[0] = "changed"
		*tk.Description = "changed"
		assert.Equal(t, "a", existing.Tags[0])
		assert.Equal(t, "old", *existing.Description)
	})
}

// TestTask_IsOverdue тестирует признак просрочки
func TestTask_IsOverdue(t *testing.T) {
	today := task.NewDate(2025, time.June, 10)
	yesterday := task.NewDate(2025, time.June, 9)

	assert.True(t, task.Task{DueDate: &yesterday}.IsOverdue(today))
	assert.False(t, task.Task{DueDate: &yesterday, Completed: true}.IsOverdue(today))
	assert.False(t, task.Task{DueDate: &today}.IsOverdue(today))
	assert.False(t, task.Task{}.IsOverdue(today))
}
