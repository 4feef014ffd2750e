package planner_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/planner"
	"github.com/HendryAvila/planwright/internal/store"
)

func taskIDs(tasks []store.Task) []int64 {
	var out []int64
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestComputeProgress(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, Title: "schema", Status: store.StatusDone},
		{ID: 2, Title: "repo", Status: store.StatusInProgress},
		{ID: 3, Title: "handlers", Status: store.StatusTodo},
		{ID: 4, Title: "readme", Status: store.StatusTodo},
	}
	edges := []depgraph.Edge{
		{ID: 1, TaskID: 2, PredecessorTaskID: 1},
		{ID: 2, TaskID: 3, PredecessorTaskID: 2},
	}

	p := planner.ComputeProgress(tasks, edges)
	if p.Total != 4 || p.Done != 1 || p.InProgress != 1 || p.Todo != 2 {
		t.Errorf("counts = %+v", p)
	}
	if p.Percent != 25 {
		t.Errorf("Percent = %v, want 25", p.Percent)
	}
	if diff := cmp.Diff([]int64{2, 4}, taskIDs(p.Ready)); diff != "" {
		t.Errorf("Ready mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3}, taskIDs(p.Blocked)); diff != "" {
		t.Errorf("Blocked mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int64{{1, 4}, {2}, {3}}, p.Waves); diff != "" {
		t.Errorf("Waves mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeProgress_CycleReported(t *testing.T) {
	tasks := []store.Task{{ID: 1, Status: store.StatusTodo}, {ID: 2, Status: store.StatusTodo}}
	edges := []depgraph.Edge{
		{ID: 1, TaskID: 1, PredecessorTaskID: 2},
		{ID: 2, TaskID: 2, PredecessorTaskID: 1},
	}
	p := planner.ComputeProgress(tasks, edges)
	if p.Waves != nil {
		t.Errorf("Waves = %v, want nil", p.Waves)
	}
	if diff := cmp.Diff([]int64{1, 2}, p.Cycle); diff != "" {
		t.Errorf("Cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeProgress_Empty(t *testing.T) {
	p := planner.ComputeProgress(nil, nil)
	if p.Total != 0 || p.Percent != 0 {
		t.Errorf("empty progress = %+v", p)
	}
}

func TestBuildProgressContext(t *testing.T) {
	project := &store.Project{ID: 1, Name: "Todo API", Description: "small service"}
	tasks := []store.Task{
		{ID: 1, Title: "schema", Status: store.StatusDone, Priority: "high", EstimateHours: 2},
		{ID: 2, Title: "repo", Status: store.StatusTodo, Priority: "medium"},
	}
	edges := []depgraph.Edge{{ID: 1, TaskID: 2, PredecessorTaskID: 1}}

	got := planner.BuildProgressContext(project, tasks, edges)
	for _, want := range []string{
		"## Project: Todo API",
		"small service",
		"1/2 done (50%)",
		"#1 [done] schema (priority high, 2.0h)",
		"#2 repo depends on #1 schema",
		"### Ready to start",
		"### Execution waves",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "### Blocked") {
		t.Errorf("no task should be blocked:\n%s", got)
	}
}
