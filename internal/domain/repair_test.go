package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func budget(v int64) *int64 { return &v }

func TestRepair_Progress(t *testing.T) {
	testCases := []struct {
		name     string
		tasks    []RepairTask
		expected float64
	}{
		{name: "No tasks", expected: 0},
		{
			name:     "Nothing done",
			tasks:    []RepairTask{{Status: TaskPending}, {Status: TaskInProgress}},
			expected: 0,
		},
		{
			name:     "One of four done",
			tasks:    []RepairTask{{Status: TaskCompleted}, {Status: TaskPending}, {Status: TaskPending}, {Status: TaskInProgress}},
			expected: 25,
		},
		{
			name:     "All done",
			tasks:    []RepairTask{{Status: TaskCompleted}, {Status: TaskCompleted}},
			expected: 100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Repair{Tasks: tc.tasks}.Progress(), 0.001)
		})
	}
}

func TestRepair_BudgetProgress(t *testing.T) {
	tasks := []RepairTask{
		{Status: TaskCompleted, Budget: budget(300)},
		{Status: TaskCompleted},
		{Status: TaskInProgress, Budget: budget(500)},
	}

	testCases := []struct {
		name     string
		budget   *int64
		expected float64
	}{
		{name: "No budget", budget: nil, expected: 0},
		{name: "Zero budget", budget: budget(0), expected: 0},
		{name: "Negative budget", budget: budget(-10), expected: 0},
		{name: "Only completed tasks count", budget: budget(1200), expected: 25},
		{name: "Overspent", budget: budget(200), expected: 150},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := Repair{Budget: tc.budget, Tasks: tasks}
			assert.InDelta(t, tc.expected, r.BudgetProgress(), 0.001)
		})
	}
}

func TestRepairEnums(t *testing.T) {
	assert.True(t, RepairDelayed.IsValid())
	assert.False(t, RepairStatus("cancelled").IsValid())
	assert.True(t, RepairExternal.IsValid())
	assert.False(t, RepairType("hybrid").IsValid())
	assert.True(t, TaskCompleted.IsValid())
	assert.False(t, TaskStatus("delayed").IsValid())
	assert.True(t, TaskPainting.IsValid())
	assert.False(t, TaskType("roofing").IsValid())
}
