// Package depgraph keeps a project's task dependency graph acyclic.
//
// An edge says "TaskID depends on PredecessorTaskID". The Guard is the only
// writer of edges: every add re-reads the project's edge set from the
// DependencyStore, decides in memory, and only then writes. Rejections are
// returned as typed errors (see Reason); nothing here logs or retries.
package depgraph

import (
	"context"
	"errors"
)

// Rejection pairs a bulk candidate with the reason it was refused.
type Rejection struct {
	Candidate Candidate `json:"candidate"`
	Reason    Reason    `json:"reason"`
}

// BulkResult partitions a bulk add into written edges and refused candidates.
type BulkResult struct {
	Accepted []Edge      `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

// Guard validates and writes dependency edges.
type Guard struct {
	deps   DependencyStore
	locker Locker
}

// Option configures a Guard.
type Option func(*Guard)

// WithLocker makes the guard hold a per-project lock across the
// read-decide-write sequence of AddEdge, AddEdgesBulk and RemoveEdge.
func WithLocker(l Locker) Option {
	return func(g *Guard) { g.locker = l }
}

// NewGuard creates a Guard over the given dependency store.
func NewGuard(deps DependencyStore, opts ...Option) *Guard {
	g := &Guard{deps: deps}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddEdge records that taskID depends on predecessorTaskID. Both tasks must
// already be known by the caller to belong to projectID.
func (g *Guard) AddEdge(ctx context.Context, projectID, taskID, predecessorTaskID int64) (Edge, error) {
	// A self-loop is refused before touching the store.
	if taskID == predecessorTaskID {
		return Edge{}, reject(ReasonSelfDependency, taskID, predecessorTaskID)
	}

	unlock, err := g.lock(ctx, projectID)
	if err != nil {
		return Edge{}, err
	}
	defer unlock()

	edges, err := g.deps.ListEdges(ctx, projectID)
	if err != nil {
		return Edge{}, &StorageError{Op: "list edges", Err: err}
	}
	if err := CanAddEdge(edges, taskID, predecessorTaskID); err != nil {
		return Edge{}, err
	}

	created, err := g.deps.InsertEdges(ctx, []Candidate{{TaskID: taskID, PredecessorTaskID: predecessorTaskID}})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return Edge{}, reject(ReasonDuplicateEdge, taskID, predecessorTaskID)
		}
		return Edge{}, &StorageError{Op: "insert edge", Err: err}
	}
	if len(created) != 1 {
		return Edge{}, &StorageError{Op: "insert edge", Err: errors.New("store returned no edge")}
	}
	return created[0], nil
}

// AddEdgesBulk validates candidates in order against a working copy of the
// project's edges that grows with every accepted candidate, then writes all
// accepted candidates with a single InsertEdges call.
//
// Logical rejections never fail the call; they are reported in
// BulkResult.Rejected. A storage failure fails the whole batch and no edge
// is considered created; so does an insert-time uniqueness conflict, which
// is reported as ReasonDuplicateEdge.
func (g *Guard) AddEdgesBulk(ctx context.Context, projectID int64, candidates []Candidate) (*BulkResult, error) {
	unlock, err := g.lock(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	edges, err := g.deps.ListEdges(ctx, projectID)
	if err != nil {
		return nil, &StorageError{Op: "list edges", Err: err}
	}

	working := newGraph(edges)
	result := &BulkResult{}
	var accepted []Candidate
	for _, c := range candidates {
		if rej := working.check(c.TaskID, c.PredecessorTaskID); rej != nil {
			result.Rejected = append(result.Rejected, Rejection{Candidate: c, Reason: rej.Reason})
			continue
		}
		working.add(c.TaskID, c.PredecessorTaskID)
		accepted = append(accepted, c)
	}

	if len(accepted) == 0 {
		return result, nil
	}

	created, err := g.deps.InsertEdges(ctx, accepted)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// Another writer landed one of the accepted edges first. The
			// batch still fails as a whole, but as a duplicate.
			c := g.conflicting(ctx, projectID, accepted)
			return nil, reject(ReasonDuplicateEdge, c.TaskID, c.PredecessorTaskID)
		}
		return nil, &StorageError{Op: "insert edges", Err: err}
	}
	result.Accepted = created
	return result, nil
}

// conflicting re-reads the project's edges and returns the first accepted
// candidate that now exists. The zero Candidate means it could not be told.
func (g *Guard) conflicting(ctx context.Context, projectID int64, accepted []Candidate) Candidate {
	edges, err := g.deps.ListEdges(ctx, projectID)
	if err != nil {
		return Candidate{}
	}
	stored := newGraph(edges)
	for _, c := range accepted {
		if stored.has(c.TaskID, c.PredecessorTaskID) {
			return c
		}
	}
	return Candidate{}
}

// RemoveEdge deletes an edge after checking that it belongs to projectID.
// Removal cannot introduce a cycle, so no graph check runs.
func (g *Guard) RemoveEdge(ctx context.Context, projectID, edgeID int64) error {
	unlock, err := g.lock(ctx, projectID)
	if err != nil {
		return err
	}
	defer unlock()

	edges, err := g.deps.ListEdges(ctx, projectID)
	if err != nil {
		return &StorageError{Op: "list edges", Err: err}
	}

	owned := false
	for _, e := range edges {
		if e.ID == edgeID {
			owned = true
			break
		}
	}
	if !owned {
		return &RejectionError{Reason: ReasonNotFound, EdgeID: edgeID}
	}

	removed, err := g.deps.DeleteEdge(ctx, edgeID)
	if err != nil {
		return &StorageError{Op: "delete edge", Err: err}
	}
	if !removed {
		return &RejectionError{Reason: ReasonNotFound, EdgeID: edgeID}
	}
	return nil
}

// ListPredecessors returns the edges where taskID is the dependent task.
func (g *Guard) ListPredecessors(ctx context.Context, taskID int64) ([]Edge, error) {
	edges, err := g.deps.ListPredecessors(ctx, taskID)
	if err != nil {
		return nil, &StorageError{Op: "list predecessors", Err: err}
	}
	return edges, nil
}

// ListForProject returns every edge of the project.
func (g *Guard) ListForProject(ctx context.Context, projectID int64) ([]Edge, error) {
	edges, err := g.deps.ListEdges(ctx, projectID)
	if err != nil {
		return nil, &StorageError{Op: "list edges", Err: err}
	}
	return edges, nil
}

func (g *Guard) lock(ctx context.Context, projectID int64) (func(), error) {
	if g.locker == nil {
		return func() {}, nil
	}
	unlock, err := g.locker.LockProject(ctx, projectID)
	if err != nil {
		return nil, &StorageError{Op: "lock project", Err: err}
	}
	return unlock, nil
}
