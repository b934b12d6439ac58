package main

import (
	"bytes"
	"taskKeeper/internal/models/task"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleTasks() []task.Task {
	due := task.NewDate(2025, time.March, 1)
	return []task.Task{
		{ID: "1", Title: "Buy milk", Priority: task.PriorityHigh, DueDate: &due, Tags: []string{"home"}},
		{ID: "2", Title: "Walk dog", Priority: task.PriorityMedium, Completed: true},
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, sampleTasks(), task.NewDate(2025, time.March, 10))

	out := buf.String()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "2025-03-01")
	assert.Contains(t, out, "2 tasks")
	assert.Contains(t, out, "Title")
	assert.NotContains(t, out, "TASKS")
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printYAML(&buf, sampleTasks()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Buy milk", decoded[0]["title"])
	assert.Equal(t, "2025-03-01", decoded[0]["due_date"])
}

func TestCommands(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "tasks")
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.RunE, "без подкоманды должен запускаться serve")
}
