package depgraph_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/HendryAvila/planwright/internal/depgraph"
)

// acyclic is an independent DFS colouring check, kept separate from the
// package's own cycle detection.
func acyclic(es []depgraph.Edge) bool {
	adj := make(map[int64][]int64)
	for _, e := range es {
		adj[e.TaskID] = append(adj[e.TaskID], e.PredecessorTaskID)
	}
	const (
		white = iota
		grey
		black
	)
	colour := make(map[int64]int)
	var visit func(n int64) bool
	visit = func(n int64) bool {
		colour[n] = grey
		for _, m := range adj[n] {
			switch colour[m] {
			case grey:
				return false
			case white:
				if !visit(m) {
					return false
				}
			}
		}
		colour[n] = black
		return true
	}
	for n := range adj {
		if colour[n] == white && !visit(n) {
			return false
		}
	}
	return true
}

func checkInvariants(t *testing.T, es []depgraph.Edge) {
	t.Helper()
	seen := make(map[depgraph.Candidate]bool, len(es))
	for _, e := range es {
		if e.TaskID == e.PredecessorTaskID {
			t.Fatalf("stored self-loop %+v", e)
		}
		if seen[e.Candidate()] {
			t.Fatalf("stored duplicate %+v", e)
		}
		seen[e.Candidate()] = true
	}
	if !acyclic(es) {
		t.Fatalf("stored edge set has a cycle: %+v", es)
	}
}

func TestGuard_RandomOperationsKeepGraphAcyclic(t *testing.T) {
	const (
		tasks = 12
		steps = 400
	)
	ids := make([]int64, tasks)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g, s := newGuard(t, ids...)
		ctx := context.Background()

		for step := 0; step < steps; step++ {
			pick := func() int64 { return ids[rng.Intn(tasks)] }

			switch op := rng.Intn(10); {
			case op < 5:
				task, pred := pick(), pick()
				before := len(s.snapshot())
				_, err := g.AddEdge(ctx, project, task, pred)
				if err != nil && depgraph.ReasonOf(err) == "" {
					t.Fatalf("seed %d: unexpected error kind %v", seed, err)
				}
				if errors.Is(err, depgraph.ErrStorageFailure) {
					t.Fatalf("seed %d: storage failure from fake: %v", seed, err)
				}
				after := len(s.snapshot())
				if err == nil && after != before+1 {
					t.Fatalf("seed %d: accepted add changed edge count %d -> %d", seed, before, after)
				}
				if err != nil && after != before {
					t.Fatalf("seed %d: rejected add changed edge count %d -> %d", seed, before, after)
				}
			case op < 8:
				batch := make([]depgraph.Candidate, 1+rng.Intn(5))
				for i := range batch {
					batch[i] = depgraph.Candidate{TaskID: pick(), PredecessorTaskID: pick()}
				}
				before := len(s.snapshot())
				res, err := g.AddEdgesBulk(ctx, project, batch)
				if err != nil {
					t.Fatalf("seed %d: AddEdgesBulk: %v", seed, err)
				}
				if len(res.Accepted)+len(res.Rejected) != len(batch) {
					t.Fatalf("seed %d: bulk partition lost candidates: %d+%d != %d",
						seed, len(res.Accepted), len(res.Rejected), len(batch))
				}
				if after := len(s.snapshot()); after != before+len(res.Accepted) {
					t.Fatalf("seed %d: bulk wrote %d edges, reported %d", seed, after-before, len(res.Accepted))
				}
			default:
				current := s.snapshot()
				if len(current) == 0 {
					continue
				}
				victim := current[rng.Intn(len(current))]
				if err := g.RemoveEdge(ctx, project, victim.ID); err != nil {
					t.Fatalf("seed %d: RemoveEdge(%d): %v", seed, victim.ID, err)
				}
				// The edge was valid a moment ago, so putting it back must be too.
				readded, err := g.AddEdge(ctx, project, victim.TaskID, victim.PredecessorTaskID)
				if err != nil {
					t.Fatalf("seed %d: re-adding removed edge %d->%d: %v", seed, victim.TaskID, victim.PredecessorTaskID, err)
				}
				if rng.Intn(2) == 0 {
					if err := g.RemoveEdge(ctx, project, readded.ID); err != nil {
						t.Fatalf("seed %d: RemoveEdge(%d): %v", seed, readded.ID, err)
					}
				}
			}

			checkInvariants(t, s.snapshot())
		}
	}
}

func TestGuard_RejectionIsIdempotent(t *testing.T) {
	g, s := newGuard(t, 1, 2, 3)
	mustAdd(t, g, 2, 1)
	mustAdd(t, g, 3, 2)

	for i := 0; i < 3; i++ {
		_, err := g.AddEdge(context.Background(), project, 1, 3)
		if !errors.Is(err, depgraph.ErrCyclicDependency) {
			t.Fatalf("attempt %d: err = %v, want ErrCyclicDependency", i, err)
		}
	}
	if n := len(s.snapshot()); n != 2 {
		t.Errorf("stored edges = %d, want 2", n)
	}
}
