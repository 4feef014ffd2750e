package planner_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/planwright/internal/planner"
)

const samplePlan = "```json\n" + `{
  "summary": "Build a todo API",
  "phases": [
    {
      "name": "Foundation",
      "description": "Data layer",
      "tasks": [
        {"ref": "T1", "title": "Schema", "priority": "high", "estimate_hours": 2},
        {"ref": 2, "title": "Repository", "depends_on": ["T1"], "estimated_hours": "3.5"}
      ]
    },
    {
      "name": "API",
      "tasks": [
        {"title": "Handlers", "depends_on": "2"},
        {"ref": "T4", "title": "Docs", "depends_on": [2, "T1"]}
      ]
    }
  ]
}` + "\n```"

func TestParsePlan(t *testing.T) {
	plan, err := planner.ParsePlan(samplePlan)
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}

	want := &planner.Plan{
		Summary: "Build a todo API",
		Phases: []planner.PlanPhase{
			{
				Name:        "Foundation",
				Description: "Data layer",
				Tasks: []planner.PlanTask{
					{Ref: "T1", Title: "Schema", Priority: "high", EstimateHours: 2},
					{Ref: "2", Title: "Repository", EstimateHours: 3.5, DependsOn: []string{"T1"}},
				},
			},
			{
				Name: "API",
				Tasks: []planner.PlanTask{
					{Ref: "T3", Title: "Handlers", DependsOn: []string{"2"}},
					{Ref: "T4", Title: "Docs", DependsOn: []string{"2", "T1"}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("ParsePlan mismatch (-want +got):\n%s", diff)
	}
	if plan.TaskCount() != 4 {
		t.Errorf("TaskCount = %d, want 4", plan.TaskCount())
	}
	if plan.DependencyCount() != 4 {
		t.Errorf("DependencyCount = %d, want 4", plan.DependencyCount())
	}
}

func TestParsePlan_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "here is your plan!"},
		{"no phases", `{"summary": "x"}`},
		{"empty phases", `{"phases": []}`},
		{"no tasks", `{"phases": [{"name": "a", "tasks": []}]}`},
		{"missing title", `{"phases": [{"name": "a", "tasks": [{"ref": "T1"}]}]}`},
		{"duplicate ref", `{"phases": [{"name": "a", "tasks": [{"ref": "T1", "title": "x"}, {"ref": "T1", "title": "y"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planner.ParsePlan(tt.in)
			if !errors.Is(err, planner.ErrInvalidPlan) {
				t.Errorf("err = %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestParsePlan_UnnamedPhase(t *testing.T) {
	plan, err := planner.ParsePlan(`{"phases": [{"tasks": [{"title": "only"}]}]}`)
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if plan.Phases[0].Name != "Phase 1" {
		t.Errorf("phase name = %q, want Phase 1", plan.Phases[0].Name)
	}
}
