package depgraph_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/planwright/internal/depgraph"
)

// edges builds an edge list from (task, predecessor) pairs.
func edges(pairs ...[2]int64) []depgraph.Edge {
	out := make([]depgraph.Edge, 0, len(pairs))
	for i, p := range pairs {
		out = append(out, depgraph.Edge{ID: int64(i + 1), TaskID: p[0], PredecessorTaskID: p[1]})
	}
	return out
}

func TestCanAddEdge(t *testing.T) {
	// 2 -> 1, 3 -> 2 (3 depends on 2 depends on 1)
	chain := edges([2]int64{2, 1}, [2]int64{3, 2})

	tests := []struct {
		name   string
		task   int64
		pred   int64
		reason depgraph.Reason
	}{
		{"new leaf", 4, 3, ""},
		{"shortcut is fine", 3, 1, ""},
		{"self", 2, 2, depgraph.ReasonSelfDependency},
		{"duplicate", 3, 2, depgraph.ReasonDuplicateEdge},
		{"direct back edge", 2, 3, depgraph.ReasonCyclicDependency},
		{"transitive back edge", 1, 3, depgraph.ReasonCyclicDependency},
		{"unknown tasks", 10, 11, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := depgraph.CanAddEdge(chain, tt.task, tt.pred)
			if tt.reason == "" {
				if err != nil {
					t.Errorf("CanAddEdge(%d, %d) = %v, want nil", tt.task, tt.pred, err)
				}
				return
			}
			if !errors.Is(err, tt.reason.Err()) {
				t.Errorf("CanAddEdge(%d, %d) = %v, want %v", tt.task, tt.pred, err, tt.reason.Err())
			}
		})
	}
}

func TestCanAddEdge_TerminatesOnCyclicInput(t *testing.T) {
	// The stored set is already corrupt; the check must still return.
	corrupt := edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 1})

	if err := depgraph.CanAddEdge(corrupt, 4, 1); err != nil {
		t.Errorf("adding an unrelated dependent: %v", err)
	}
	if err := depgraph.CanAddEdge(corrupt, 5, 6); err != nil {
		t.Errorf("adding a disjoint edge: %v", err)
	}
}

func TestCanAddEdge_DeepChain(t *testing.T) {
	const n = 50000
	chain := make([]depgraph.Edge, 0, n)
	for i := int64(2); i <= n; i++ {
		chain = append(chain, depgraph.Edge{ID: i, TaskID: i, PredecessorTaskID: i - 1})
	}

	err := depgraph.CanAddEdge(chain, 1, n)
	if !errors.Is(err, depgraph.ErrCyclicDependency) {
		t.Errorf("closing a %d-long chain: err = %v, want ErrCyclicDependency", n, err)
	}
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges []depgraph.Edge
		want  []int64
	}{
		{"empty", nil, nil},
		{"chain", edges([2]int64{2, 1}, [2]int64{3, 2}), nil},
		{"diamond", edges([2]int64{2, 1}, [2]int64{3, 1}, [2]int64{4, 2}, [2]int64{4, 3}), nil},
		{"pair", edges([2]int64{1, 2}, [2]int64{2, 1}), []int64{1, 2}},
		{"triangle with tail", edges(
			[2]int64{5, 4},
			[2]int64{4, 3},
			[2]int64{3, 6},
			[2]int64{6, 4},
		), []int64{3, 6, 4}},
		{"self loop", edges([2]int64{7, 7}), []int64{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := depgraph.FindCycle(tt.edges)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindCycle mismatch (-want +got):\n%s", diff)
			}
			wantCycle := tt.want != nil
			if got := depgraph.HasCycle(tt.edges); got != wantCycle {
				t.Errorf("HasCycle = %v, want %v", got, wantCycle)
			}
		})
	}
}

func TestWaves(t *testing.T) {
	tests := []struct {
		name  string
		tasks []int64
		edges []depgraph.Edge
		want  [][]int64
	}{
		{"no edges", []int64{3, 1, 2}, nil, [][]int64{{1, 2, 3}}},
		{
			"diamond",
			[]int64{1, 2, 3, 4},
			edges([2]int64{2, 1}, [2]int64{3, 1}, [2]int64{4, 2}, [2]int64{4, 3}),
			[][]int64{{1}, {2, 3}, {4}},
		},
		{
			"ignores foreign edges and duplicates",
			[]int64{1, 2},
			edges([2]int64{2, 1}, [2]int64{2, 1}, [2]int64{1, 99}),
			[][]int64{{1}, {2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := depgraph.Waves(tt.tasks, tt.edges)
			if err != nil {
				t.Fatalf("Waves: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Waves mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWaves_Cycle(t *testing.T) {
	_, err := depgraph.Waves([]int64{1, 2, 3}, edges([2]int64{1, 2}, [2]int64{2, 1}))
	if !errors.Is(err, depgraph.ErrCyclicDependency) {
		t.Errorf("err = %v, want ErrCyclicDependency", err)
	}
}

func TestBlocked(t *testing.T) {
	es := edges([2]int64{3, 1}, [2]int64{3, 2})
	done := map[int64]bool{1: true}
	isDone := func(id int64) bool { return done[id] }

	if !depgraph.Blocked(3, es, isDone) {
		t.Error("task 3 should be blocked while task 2 is open")
	}
	done[2] = true
	if depgraph.Blocked(3, es, isDone) {
		t.Error("task 3 should be unblocked once both predecessors are done")
	}
	if depgraph.Blocked(1, es, isDone) {
		t.Error("a task with no predecessors is never blocked")
	}
}
