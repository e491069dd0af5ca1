package taskdesk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmesh/deskmesh/tool"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Projects(t *testing.T) {
	store := newStore(t)

	p, err := store.CreateProject("Website Redesign")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "https://example.com/projects/"+p.ID, p.Link)

	got, err := store.GetProjectByName("Website Redesign")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = store.GetProjectByName("Nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.CreateProject("Alpha Launch")
	require.NoError(t, err)

	projects, err := store.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha Launch", projects[0].Name)
	assert.Equal(t, "Website Redesign", projects[1].Name)

	require.NoError(t, store.DeleteProject(p.ID))
	assert.ErrorIs(t, store.DeleteProject(p.ID), ErrNotFound)
}

func TestStore_Tasks(t *testing.T) {
	store := newStore(t)

	p, err := store.CreateProject("Website Redesign")
	require.NoError(t, err)

	late, err := store.CreateTask(p.ID, "Ship it", "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, late.Status)
	assert.Contains(t, late.Link, p.ID)

	early, err := store.CreateTask(p.ID, "Design mockups", "2026-09-01")
	require.NoError(t, err)

	undated, err := store.CreateTask(p.ID, "Misc cleanup", "")
	require.NoError(t, err)

	tasks, err := store.ListTasks(p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, early.ID, tasks[0].ID)
	assert.Equal(t, late.ID, tasks[1].ID)
	assert.Equal(t, undated.ID, tasks[2].ID)

	updated, err := store.UpdateTaskStatus(early.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	_, err = store.UpdateTaskStatus(early.ID, "Done-ish")
	assert.Error(t, err)

	require.NoError(t, store.DeleteTask(undated.ID))
	assert.ErrorIs(t, store.DeleteTask(undated.ID), ErrNotFound)

	_, err = store.CreateTask(p.ID, "Bad date", "tomorrow")
	assert.Error(t, err)

	_, err = store.CreateTask("missing-project", "Task", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteProjectCascades(t *testing.T) {
	store := newStore(t)

	p, err := store.CreateProject("Doomed")
	require.NoError(t, err)
	_, err = store.CreateTask(p.ID, "Task", "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteProject(p.ID))

	_, err = store.ListTasks(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Purge(t *testing.T) {
	store := newStore(t)

	_, err := store.CreateProject("One")
	require.NoError(t, err)
	_, err = store.CreateProject("Two")
	require.NoError(t, err)

	require.NoError(t, store.Purge())

	projects, err := store.ListProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestTools(t *testing.T) {
	store := newStore(t)
	tools := Tools(store)

	byName := make(map[string]tool.Tool, len(tools))
	for _, tl := range tools {
		byName[tl.Name()] = tl
	}

	for _, name := range []string{
		"create_project", "get_project_by_name", "list_projects", "delete_project",
		"create_task", "list_tasks", "update_task_status", "delete_task",
	} {
		assert.Contains(t, byName, name)
	}

	ctx := context.Background()

	created, err := byName["create_project"].Call(ctx, map[string]any{"name": "Tooling"})
	require.NoError(t, err)
	project, ok := created.(Project)
	require.True(t, ok)

	taskAny, err := byName["create_task"].Call(ctx, map[string]any{
		"project_id": project.ID,
		"name":       "Write docs",
		"due_date":   "2026-09-15",
	})
	require.NoError(t, err)
	task, ok := taskAny.(Task)
	require.True(t, ok)

	updatedAny, err := byName["update_task_status"].Call(ctx, map[string]any{
		"task_id": task.ID,
		"status":  StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updatedAny.(Task).Status)

	// Missing required argument surfaces as a validation error.
	_, err = byName["create_task"].Call(ctx, map[string]any{"name": "No project"})
	require.Error(t, err)
	var te *tool.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "VALIDATION_ERROR", te.Code)

	// A store failure surfaces as an execution error.
	_, err = byName["delete_project"].Call(ctx, map[string]any{"project_id": "missing"})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "EXECUTION_ERROR", te.Code)
}
