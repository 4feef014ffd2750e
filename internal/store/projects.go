package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Project is the root of a plan.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Phase groups tasks inside a project.
type Phase struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusTodo, StatusInProgress, StatusDone:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be todo, in_progress or done", s)
	}
}

// Task is one unit of work.
type Task struct {
	ID            int64      `json:"id"`
	ProjectID     int64      `json:"project_id"`
	PhaseID       *int64     `json:"phase_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        TaskStatus `json:"status"`
	Priority      string     `json:"priority"`
	EstimateHours float64    `json:"estimate_hours,omitempty"`
	Position      int        `json:"position"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

// CreateTaskParams holds the input for creating a task.
type CreateTaskParams struct {
	ProjectID     int64
	PhaseID       *int64
	Title         string
	Description   string
	Priority      string
	EstimateHours float64
}

// ─── Projects ────────────────────────────────────────────────────────────────

// CreateProject inserts a project and returns it.
func (s *Store) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("store: project name is required")
	}
	res, err := s.execHook(ctx, s.db,
		`INSERT INTO projects (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return nil, fmt.Errorf("store: create project: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetProject(ctx, id)
}

// GetProject returns a project or ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns every project, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.queryHook(ctx, s.db,
		`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProject removes a project; phases, tasks, edges, memory items and
// chat messages go with it through foreign key cascades.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.execHook(ctx, s.db, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("store: project %d: %w", id, err)
	}
	return nil
}

// ─── Phases ──────────────────────────────────────────────────────────────────

// CreatePhase appends a phase to the project.
func (s *Store) CreatePhase(ctx context.Context, projectID int64, name, description string) (*Phase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("store: phase name is required")
	}
	res, err := s.execHook(ctx, s.db,
		`INSERT INTO phases (project_id, name, description, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM phases WHERE project_id = ?))`,
		projectID, name, description, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create phase: %w", err)
	}
	id, _ := res.LastInsertId()

	var ph Phase
	err = s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, description, position, created_at FROM phases WHERE id = ?`, id,
	).Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.Position, &ph.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: read phase: %w", err)
	}
	return &ph, nil
}

// ListPhases returns the project's phases in position order.
func (s *Store) ListPhases(ctx context.Context, projectID int64) ([]Phase, error) {
	rows, err := s.queryHook(ctx, s.db,
		`SELECT id, project_id, name, description, position, created_at
		 FROM phases WHERE project_id = ? ORDER BY position, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list phases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Phase
	for rows.Next() {
		var ph Phase
		if err := rows.Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.Position, &ph.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan phase: %w", err)
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

const taskColumns = `id, project_id, phase_id, title, description, status, priority,
	estimate_hours, position, created_at, updated_at`

func scanTask(sc interface{ Scan(dest ...any) error }) (Task, error) {
	var t Task
	var phaseID sql.NullInt64
	err := sc.Scan(&t.ID, &t.ProjectID, &phaseID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.EstimateHours, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if phaseID.Valid {
		t.PhaseID = &phaseID.Int64
	}
	return t, err
}

// CreateTask inserts a task at the end of the project's task list.
func (s *Store) CreateTask(ctx context.Context, p CreateTaskParams) (*Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, errors.New("store: task title is required")
	}

	res, err := s.execHook(ctx, s.db,
		`INSERT INTO tasks (project_id, phase_id, title, description, priority, estimate_hours, position)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE project_id = ?))`,
		p.ProjectID, p.PhaseID, title, p.Description, normalizePriority(p.Priority), p.EstimateHours, p.ProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(ctx, id)
}

// GetTask returns a task or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the project's tasks in position order.
func (s *Store) ListTasks(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := s.queryHook(ctx, s.db,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY position, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTaskIDs returns the ids of the project's tasks.
func (s *Store) ListTaskIDs(ctx context.Context, projectID int64) (map[int64]struct{}, error) {
	rows, err := s.queryHook(ctx, s.db, `SELECT id FROM tasks WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list task ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan task id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// UpdateTaskStatus sets the status of a task.
func (s *Store) UpdateTaskStatus(ctx context.Context, id int64, status TaskStatus) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	res, err := s.execHook(ctx, s.db,
		`UPDATE tasks SET status = ?, updated_at = datetime('now') WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("store: update task status: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("store: task %d: %w", id, err)
	}
	return nil
}

// DeleteTask removes a task together with every dependency edge touching
// it, in one transaction.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := s.deleteEdgesForTask(ctx, tx, id); err != nil {
		return err
	}
	res, err := s.execHook(ctx, tx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("store: task %d: %w", id, err)
	}
	if err := s.commitHook(tx); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

func normalizePriority(p string) string {
	switch v := strings.ToLower(strings.TrimSpace(p)); v {
	case "low", "medium", "high", "critical":
		return v
	default:
		return "medium"
	}
}
