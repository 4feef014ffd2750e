package depgraph_test

import (
	"context"
	"sync"

	"github.com/HendryAvila/planwright/internal/depgraph"
)

// fakeStore is an in-memory DependencyStore + TaskStore with failure
// injection points.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]int64 // task id -> project id
	edges  []depgraph.Edge

	listCalls   int
	insertCalls int
	lockCalls   int

	listErr   error
	insertErr error
	deleteErr error

	// beforeInsert runs inside InsertEdges before the uniqueness check,
	// letting tests simulate a concurrent writer.
	beforeInsert func(s *fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[int64]int64)}
}

// addTasks registers task ids as belonging to projectID.
func (s *fakeStore) addTasks(projectID int64, ids ...int64) {
	for _, id := range ids {
		s.tasks[id] = projectID
	}
}

func (s *fakeStore) ListTaskIDs(_ context.Context, projectID int64) (map[int64]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]struct{})
	for id, p := range s.tasks {
		if p == projectID {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (s *fakeStore) ListEdges(_ context.Context, projectID int64) ([]depgraph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []depgraph.Edge
	for _, e := range s.edges {
		if s.tasks[e.TaskID] == projectID && s.tasks[e.PredecessorTaskID] == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) ListPredecessors(_ context.Context, taskID int64) ([]depgraph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []depgraph.Edge
	for _, e := range s.edges {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertEdges(_ context.Context, candidates []depgraph.Candidate) ([]depgraph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.beforeInsert != nil {
		s.beforeInsert(s)
	}
	if s.insertErr != nil {
		return nil, s.insertErr
	}

	existing := make(map[depgraph.Candidate]bool, len(s.edges))
	for _, e := range s.edges {
		existing[e.Candidate()] = true
	}
	for _, c := range candidates {
		if existing[c] {
			return nil, depgraph.ErrConflict
		}
		existing[c] = true
	}

	created := make([]depgraph.Edge, 0, len(candidates))
	for _, c := range candidates {
		s.nextID++
		e := depgraph.Edge{ID: s.nextID, TaskID: c.TaskID, PredecessorTaskID: c.PredecessorTaskID}
		s.edges = append(s.edges, e)
		created = append(created, e)
	}
	return created, nil
}

func (s *fakeStore) DeleteEdge(_ context.Context, edgeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	for i, e := range s.edges {
		if e.ID == edgeID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) DeleteEdgesForTask(_ context.Context, taskID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.edges[:0]
	removed := 0
	for _, e := range s.edges {
		if e.TaskID == taskID || e.PredecessorTaskID == taskID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return removed, nil
}

func (s *fakeStore) LockProject(_ context.Context, _ int64) (func(), error) {
	s.mu.Lock()
	s.lockCalls++
	s.mu.Unlock()
	return func() {}, nil
}

// snapshot returns a copy of every stored edge.
func (s *fakeStore) snapshot() []depgraph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]depgraph.Edge(nil), s.edges...)
}
