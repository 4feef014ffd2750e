package depgraph

import "context"

// Edge is a persisted "TaskID depends on PredecessorTaskID" relation.
type Edge struct {
	ID                int64 `json:"id"`
	TaskID            int64 `json:"task_id"`
	PredecessorTaskID int64 `json:"predecessor_task_id"`
}

// Candidate is an edge that has not been written yet.
type Candidate struct {
	TaskID            int64 `json:"task_id"`
	PredecessorTaskID int64 `json:"predecessor_task_id"`
}

// Candidate returns the ordered pair of the edge.
func (e Edge) Candidate() Candidate {
	return Candidate{TaskID: e.TaskID, PredecessorTaskID: e.PredecessorTaskID}
}

// TaskStore lists the tasks owned by a project. Callers use it to check that
// both endpoints of a candidate belong to the project before asking the
// guard; the guard itself never calls it.
type TaskStore interface {
	ListTaskIDs(ctx context.Context, projectID int64) (map[int64]struct{}, error)
}

// DependencyStore persists edges.
type DependencyStore interface {
	// ListEdges returns every edge whose endpoints belong to the project.
	ListEdges(ctx context.Context, projectID int64) ([]Edge, error)
	// ListPredecessors returns the edges where taskID is the dependent task.
	ListPredecessors(ctx context.Context, taskID int64) ([]Edge, error)
	// InsertEdges writes all candidates in one call and returns them with
	// their assigned ids. A uniqueness violation is reported as ErrConflict.
	InsertEdges(ctx context.Context, candidates []Candidate) ([]Edge, error)
	// DeleteEdge reports whether a row was removed.
	DeleteEdge(ctx context.Context, edgeID int64) (bool, error)
	// DeleteEdgesForTask removes every edge touching taskID. Task deletion
	// must call it to keep the edge set consistent.
	DeleteEdgesForTask(ctx context.Context, taskID int64) (int, error)
}

// Locker serialises guard writes for one project. The returned func
// releases the lock.
type Locker interface {
	LockProject(ctx context.Context, projectID int64) (func(), error)
}
