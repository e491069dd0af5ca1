package taskdesk

import (
	"context"

	"github.com/deskmesh/deskmesh/tool"
)

// Tools exposes the store's operations as callable tools for a task
// management specialist.
func Tools(store *Store) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool(
			"create_project",
			"Creates a new project and returns it, including its link.",
			objectSchema(map[string]any{
				"name": prop("string", "Project name"),
			}, "name"),
			func(_ context.Context, args map[string]any) (any, error) {
				return store.CreateProject(stringArg(args, "name"))
			},
		),
		tool.NewFunctionTool(
			"get_project_by_name",
			"Looks up a project by its exact name.",
			objectSchema(map[string]any{
				"name": prop("string", "Project name"),
			}, "name"),
			func(_ context.Context, args map[string]any) (any, error) {
				return store.GetProjectByName(stringArg(args, "name"))
			},
		),
		tool.NewFunctionTool(
			"list_projects",
			"Lists all projects.",
			objectSchema(nil),
			func(_ context.Context, _ map[string]any) (any, error) {
				return store.ListProjects()
			},
		),
		tool.NewFunctionTool(
			"delete_project",
			"Deletes a project and all of its tasks.",
			objectSchema(map[string]any{
				"project_id": prop("string", "Project ID"),
			}, "project_id"),
			func(_ context.Context, args map[string]any) (any, error) {
				if err := store.DeleteProject(stringArg(args, "project_id")); err != nil {
					return nil, err
				}
				return "deleted", nil
			},
		),
		tool.NewFunctionTool(
			"create_task",
			"Creates a task in a project. Due date is optional, format YYYY-MM-DD.",
			objectSchema(map[string]any{
				"project_id": prop("string", "Project ID"),
				"name":       prop("string", "Task name"),
				"due_date":   prop("string", "Optional due date, YYYY-MM-DD"),
			}, "project_id", "name"),
			func(_ context.Context, args map[string]any) (any, error) {
				return store.CreateTask(
					stringArg(args, "project_id"),
					stringArg(args, "name"),
					stringArg(args, "due_date"),
				)
			},
		),
		tool.NewFunctionTool(
			"list_tasks",
			"Lists a project's tasks ordered by due date.",
			objectSchema(map[string]any{
				"project_id": prop("string", "Project ID"),
			}, "project_id"),
			func(_ context.Context, args map[string]any) (any, error) {
				return store.ListTasks(stringArg(args, "project_id"))
			},
		),
		tool.NewFunctionTool(
			"update_task_status",
			"Updates a task's status. Valid statuses: Not Started, In Progress, Completed.",
			objectSchema(map[string]any{
				"task_id": prop("string", "Task ID"),
				"status":  prop("string", "New status"),
			}, "task_id", "status"),
			func(_ context.Context, args map[string]any) (any, error) {
				return store.UpdateTaskStatus(
					stringArg(args, "task_id"),
					stringArg(args, "status"),
				)
			},
		),
		tool.NewFunctionTool(
			"delete_task",
			"Deletes a task.",
			objectSchema(map[string]any{
				"task_id": prop("string", "Task ID"),
			}, "task_id"),
			func(_ context.Context, args map[string]any) (any, error) {
				if err := store.DeleteTask(stringArg(args, "task_id")); err != nil {
					return nil, err
				}
				return "deleted", nil
			},
		),
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
