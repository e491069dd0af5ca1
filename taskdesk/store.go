// Package taskdesk provides a small task management backend plus the tools a
// specialist needs to operate it: projects with tasks, due dates and status
// tracking, persisted in SQLite.
package taskdesk

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Task statuses.
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// ErrNotFound is returned when a project or task does not exist.
var ErrNotFound = errors.New("not found")

// Project groups related tasks.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// Task is a unit of work within a project.
type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	DueDate   string `json:"due_date,omitempty"` // YYYY-MM-DD
	Status    string `json:"status"`
	Link      string `json:"link"`
}

// Store persists projects and tasks in SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS tasks (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	due_date   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'Not Started'
);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
`

// Open creates or opens a task store at path. Use ":memory:" for an ephemeral
// store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	// Serialized access; modernc.org/sqlite connections are not safe for
	// concurrent writes.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure task store: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate task store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// CreateProject adds a project and returns it with a generated ID and link.
func (s *Store) CreateProject(name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, fmt.Errorf("project name must not be empty")
	}

	p := Project{ID: uuid.NewString(), Name: name}
	if _, err := s.db.Exec("INSERT INTO projects (id, name) VALUES (?, ?)", p.ID, p.Name); err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}

	p.Link = projectLink(p.ID)
	return p, nil
}

// GetProjectByName looks up a project by exact name.
func (s *Store) GetProjectByName(name string) (Project, error) {
	var p Project
	err := s.db.QueryRow("SELECT id, name FROM projects WHERE name = ?", name).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Project{}, fmt.Errorf("get project: %w", err)
	}

	p.Link = projectLink(p.ID)
	return p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query("SELECT id, name FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Link = projectLink(p.ID)
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// DeleteProject removes a project and, via cascade, its tasks.
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return nil
}

// CreateTask adds a task to a project. Due date is optional; when set it must
// be YYYY-MM-DD.
func (s *Store) CreateTask(projectID, name, dueDate string) (Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Task{}, fmt.Errorf("task name must not be empty")
	}
	if dueDate != "" {
		if _, err := time.Parse("2006-01-02", dueDate); err != nil {
			return Task{}, fmt.Errorf("due date %q is not YYYY-MM-DD", dueDate)
		}
	}
	if _, err := s.projectExists(projectID); err != nil {
		return Task{}, err
	}

	t := Task{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		DueDate:   dueDate,
		Status:    StatusNotStarted,
	}

	_, err := s.db.Exec(
		"INSERT INTO tasks (id, project_id, name, due_date, status) VALUES (?, ?, ?, ?, ?)",
		t.ID, t.ProjectID, t.Name, t.DueDate, t.Status,
	)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}

	t.Link = taskLink(t.ProjectID, t.ID)
	return t, nil
}

// ListTasks returns a project's tasks ordered by due date, undated tasks
// last.
func (s *Store) ListTasks(projectID string) ([]Task, error) {
	if _, err := s.projectExists(projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT id, project_id, name, due_date, status FROM tasks WHERE project_id = ? ORDER BY due_date = '', due_date, name",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.DueDate, &t.Status); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Link = taskLink(t.ProjectID, t.ID)
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// UpdateTaskStatus moves a task to one of the known statuses.
func (s *Store) UpdateTaskStatus(id, status string) (Task, error) {
	switch status {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
	default:
		return Task{}, fmt.Errorf("unknown status %q", status)
	}

	res, err := s.db.Exec("UPDATE tasks SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}

	var t Task
	err = s.db.QueryRow("SELECT id, project_id, name, due_date, status FROM tasks WHERE id = ?", id).
		Scan(&t.ID, &t.ProjectID, &t.Name, &t.DueDate, &t.Status)
	if err != nil {
		return Task{}, fmt.Errorf("reload task: %w", err)
	}

	t.Link = taskLink(t.ProjectID, t.ID)
	return t, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return nil
}

// Purge removes all projects and tasks.
func (s *Store) Purge() error {
	if _, err := s.db.Exec("DELETE FROM projects"); err != nil {
		return fmt.Errorf("purge task store: %w", err)
	}
	return nil
}

func (s *Store) projectExists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM projects WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("check project: %w", err)
	}
	return true, nil
}

func projectLink(id string) string {
	return "https://example.com/projects/" + id
}

func taskLink(projectID, taskID string) string {
	return fmt.Sprintf("https://example.com/projects/%s/tasks/%s", projectID, taskID)
}
