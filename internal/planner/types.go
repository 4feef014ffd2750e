// Package planner turns a free-form project description into phases, tasks
// and dependencies, imports that plan into the store, and answers progress
// questions about an existing project.
package planner

// Plan is a generated project plan before it is stored. Task refs are
// plan-local ids; DependsOn lists the refs a task waits on.
type Plan struct {
	Summary string      `json:"summary,omitempty"`
	Phases  []PlanPhase `json:"phases"`
}

// PlanPhase is one phase of a Plan.
type PlanPhase struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Tasks       []PlanTask `json:"tasks"`
}

// PlanTask is one task of a Plan.
type PlanTask struct {
	Ref           string   `json:"ref"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	EstimateHours float64  `json:"estimate_hours,omitempty"`
	DependsOn     []string `json:"depends_on,omitempty"`
}

// TaskCount returns the number of tasks across all phases.
func (p *Plan) TaskCount() int {
	n := 0
	for _, ph := range p.Phases {
		n += len(ph.Tasks)
	}
	return n
}

// DependencyCount returns the number of declared dependency refs.
func (p *Plan) DependencyCount() int {
	n := 0
	for _, ph := range p.Phases {
		for _, t := range ph.Tasks {
			n += len(t.DependsOn)
		}
	}
	return n
}
