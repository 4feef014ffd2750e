package store

import (
	"context"
	"fmt"

	"github.com/HendryAvila/planwright/internal/depgraph"
)

// insertChunk bounds the rows of one multi-row INSERT, well under SQLite's
// bound-parameter limit.
const insertChunk = 400

// ─── Dependencies ────────────────────────────────────────────────────────────

// ListEdges returns every edge whose two tasks belong to the project.
func (s *Store) ListEdges(ctx context.Context, projectID int64) ([]depgraph.Edge, error) {
	return s.queryEdges(ctx,
		`SELECT d.id, d.task_id, d.predecessor_task_id
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 JOIN tasks p ON p.id = d.predecessor_task_id
		 WHERE t.project_id = ? AND p.project_id = ?
		 ORDER BY d.id`,
		projectID, projectID,
	)
}

// ListPredecessors returns the edges where taskID is the dependent task.
func (s *Store) ListPredecessors(ctx context.Context, taskID int64) ([]depgraph.Edge, error) {
	return s.queryEdges(ctx,
		`SELECT id, task_id, predecessor_task_id
		 FROM task_dependencies WHERE task_id = ? ORDER BY id`,
		taskID,
	)
}

func (s *Store) queryEdges(ctx context.Context, query string, args ...any) ([]depgraph.Edge, error) {
	rows, err := s.queryHook(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []depgraph.Edge
	for rows.Next() {
		var e depgraph.Edge
		if err := rows.Scan(&e.ID, &e.TaskID, &e.PredecessorTaskID); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertEdges writes every candidate in one transaction. Either all rows
// land or none do. A UNIQUE violation is reported as depgraph.ErrConflict.
func (s *Store) InsertEdges(ctx context.Context, candidates []depgraph.Candidate) ([]depgraph.Edge, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ids := make(map[depgraph.Candidate]int64, len(candidates))
	for start := 0; start < len(candidates); start += insertChunk {
		end := min(start+insertChunk, len(candidates))
		chunk := candidates[start:end]

		query := `INSERT INTO task_dependencies (task_id, predecessor_task_id) VALUES ` +
			rowPlaceholders(len(chunk)) +
			` RETURNING id, task_id, predecessor_task_id`
		args := make([]any, 0, 2*len(chunk))
		for _, c := range chunk {
			args = append(args, c.TaskID, c.PredecessorTaskID)
		}

		rows, err := s.queryHook(ctx, tx, query, args...)
		if err != nil {
			return nil, insertError(err)
		}
		for rows.Next() {
			var e depgraph.Edge
			if err := rows.Scan(&e.ID, &e.TaskID, &e.PredecessorTaskID); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("store: scan inserted edge: %w", err)
			}
			ids[e.Candidate()] = e.ID
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, insertError(err)
		}
	}

	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("store: commit transaction: %w", err)
	}

	// RETURNING order is unspecified; report edges in candidate order.
	out := make([]depgraph.Edge, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, depgraph.Edge{ID: ids[c], TaskID: c.TaskID, PredecessorTaskID: c.PredecessorTaskID})
	}
	return out, nil
}

func insertError(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("store: insert edges: %w", depgraph.ErrConflict)
	}
	return fmt.Errorf("store: insert edges: %w", err)
}

func rowPlaceholders(n int) string {
	b := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, "(?, ?)"...)
	}
	return string(b)
}

// DeleteEdge removes an edge by id and reports whether a row was removed.
func (s *Store) DeleteEdge(ctx context.Context, edgeID int64) (bool, error) {
	res, err := s.execHook(ctx, s.db, `DELETE FROM task_dependencies WHERE id = ?`, edgeID)
	if err != nil {
		return false, fmt.Errorf("store: delete edge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: delete edge: %w", err)
	}
	return n > 0, nil
}

// DeleteEdgesForTask removes every edge in which taskID is either endpoint.
func (s *Store) DeleteEdgesForTask(ctx context.Context, taskID int64) (int, error) {
	return s.deleteEdgesForTask(ctx, s.db, taskID)
}

func (s *Store) deleteEdgesForTask(ctx context.Context, db execer, taskID int64) (int, error) {
	res, err := s.execHook(ctx, db,
		`DELETE FROM task_dependencies WHERE task_id = ? OR predecessor_task_id = ?`, taskID, taskID)
	if err != nil {
		return 0, fmt.Errorf("store: delete edges for task %d: %w", taskID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ─── Locking ─────────────────────────────────────────────────────────────────

// LockProject serialises dependency writes for one project within this
// process. Separate processes sharing the database file are not covered.
func (s *Store) LockProject(ctx context.Context, projectID int64) (func(), error) {
	s.lockMu.Lock()
	ch, ok := s.locks[projectID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[projectID] = ch
	}
	s.lockMu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("store: lock project %d: %w", projectID, ctx.Err())
	}
}
