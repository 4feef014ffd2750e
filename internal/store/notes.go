package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MemoryItem is a durable note attached to a project: a decision, a
// constraint, a risk. The chat assistant sees them as context.
type MemoryItem struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatRole is who wrote a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a progress-chat thread.
type ChatMessage struct {
	ID        int64    `json:"id"`
	ProjectID int64    `json:"project_id"`
	ThreadID  string   `json:"thread_id"`
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
}

// ─── Memory items ────────────────────────────────────────────────────────────

// AddMemoryItem saves a note for the project. Kind defaults to "note".
func (s *Store) AddMemoryItem(ctx context.Context, projectID int64, kind, content string) (*MemoryItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("store: memory content is required")
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = "note"
	}

	res, err := s.execHook(ctx, s.db,
		`INSERT INTO memory_items (project_id, kind, content) VALUES (?, ?, ?)`,
		projectID, kind, content)
	if err != nil {
		return nil, fmt.Errorf("store: add memory item: %w", err)
	}
	id, _ := res.LastInsertId()

	var m MemoryItem
	err = s.db.QueryRowContext(ctx,
		`SELECT id, project_id, kind, content, created_at FROM memory_items WHERE id = ?`, id,
	).Scan(&m.ID, &m.ProjectID, &m.Kind, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: read memory item: %w", err)
	}
	return &m, nil
}

// ListMemoryItems returns the project's notes, newest first. An empty kind
// matches every kind; limit <= 0 means 50.
func (s *Store) ListMemoryItems(ctx context.Context, projectID int64, kind string, limit int) ([]MemoryItem, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, project_id, kind, content, created_at FROM memory_items WHERE project_id = ?`
	args := []any{projectID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, strings.ToLower(kind))
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.queryHook(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list memory items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MemoryItem
	for rows.Next() {
		var m MemoryItem
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Kind, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan memory item: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMemoryItem removes a note that belongs to the project.
func (s *Store) DeleteMemoryItem(ctx context.Context, projectID, id int64) error {
	res, err := s.execHook(ctx, s.db,
		`DELETE FROM memory_items WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("store: delete memory item: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("store: memory item %d: %w", id, err)
	}
	return nil
}

// ─── Chat ────────────────────────────────────────────────────────────────────

// AddChatMessage appends a message to a thread.
func (s *Store) AddChatMessage(ctx context.Context, projectID int64, threadID string, role ChatRole, content string) (*ChatMessage, error) {
	if threadID == "" {
		return nil, errors.New("store: thread id is required")
	}
	res, err := s.execHook(ctx, s.db,
		`INSERT INTO chat_messages (project_id, thread_id, role, content) VALUES (?, ?, ?, ?)`,
		projectID, threadID, string(role), content)
	if err != nil {
		return nil, fmt.Errorf("store: add chat message: %w", err)
	}
	id, _ := res.LastInsertId()
	return &ChatMessage{ID: id, ProjectID: projectID, ThreadID: threadID, Role: role, Content: content}, nil
}

// ListChatMessages returns the last limit messages of a thread in the order
// they were written. limit <= 0 means 20.
func (s *Store) ListChatMessages(ctx context.Context, projectID int64, threadID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.queryHook(ctx, s.db,
		`SELECT id, project_id, thread_id, role, content, created_at FROM (
			SELECT * FROM chat_messages
			WHERE project_id = ? AND thread_id = ?
			ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		projectID, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.ThreadID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
