package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/store"
)

// ReasonUnknownRef marks a depends_on entry that names no task in the plan.
const ReasonUnknownRef depgraph.Reason = "unknown_reference"

// PlanStore is the part of the store the importer writes to.
type PlanStore interface {
	CreatePhase(ctx context.Context, projectID int64, name, description string) (*store.Phase, error)
	CreateTask(ctx context.Context, p store.CreateTaskParams) (*store.Task, error)
}

// EdgeAdder writes validated dependency batches. *depgraph.Guard
// implements it.
type EdgeAdder interface {
	AddEdgesBulk(ctx context.Context, projectID int64, candidates []depgraph.Candidate) (*depgraph.BulkResult, error)
}

// RejectedDependency is a plan dependency that was not stored.
type RejectedDependency struct {
	TaskRef      string          `json:"task_ref"`
	DependsOnRef string          `json:"depends_on_ref"`
	Reason       depgraph.Reason `json:"reason"`
}

// ImportResult reports what an import created.
type ImportResult struct {
	Phases   []store.Phase        `json:"phases"`
	Tasks    []store.Task         `json:"tasks"`
	TaskIDs  map[string]int64     `json:"task_ids"`
	Accepted []depgraph.Edge      `json:"accepted"`
	Rejected []RejectedDependency `json:"rejected,omitempty"`
	Declared int                  `json:"declared"`
}

// Summary renders "N of M dependencies added" plus the rejections.
func (r *ImportResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d dependencies added", len(r.Accepted), r.Declared)
	if len(r.Rejected) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "; %d rejected: ", len(r.Rejected))
	for i, rej := range r.Rejected {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s -> %s (%s)", rej.TaskRef, rej.DependsOnRef, rej.Reason)
	}
	return b.String()
}

// Importer writes a Plan into a project.
type Importer struct {
	store PlanStore
	edges EdgeAdder
}

// NewImporter creates an Importer.
func NewImporter(s PlanStore, edges EdgeAdder) *Importer {
	return &Importer{store: s, edges: edges}
}

// Import creates the plan's phases and tasks, maps refs to stored task ids,
// and submits every resolvable dependency in one bulk add. Refs that name
// no task in the plan are reported as rejected with ReasonUnknownRef.
//
// Phases and tasks are written before the dependency batch; a storage
// failure in the batch returns an error and leaves them in place.
func (im *Importer) Import(ctx context.Context, projectID int64, plan *Plan) (*ImportResult, error) {
	res := &ImportResult{TaskIDs: make(map[string]int64), Declared: plan.DependencyCount()}

	for _, ph := range plan.Phases {
		phase, err := im.store.CreatePhase(ctx, projectID, ph.Name, ph.Description)
		if err != nil {
			return nil, fmt.Errorf("planner: create phase %q: %w", ph.Name, err)
		}
		res.Phases = append(res.Phases, *phase)

		for _, t := range ph.Tasks {
			task, err := im.store.CreateTask(ctx, store.CreateTaskParams{
				ProjectID:     projectID,
				PhaseID:       &phase.ID,
				Title:         t.Title,
				Description:   t.Description,
				Priority:      t.Priority,
				EstimateHours: t.EstimateHours,
			})
			if err != nil {
				return nil, fmt.Errorf("planner: create task %q: %w", t.Ref, err)
			}
			res.Tasks = append(res.Tasks, *task)
			res.TaskIDs[t.Ref] = task.ID
		}
	}

	type origin struct{ taskRef, depRef string }
	var candidates []depgraph.Candidate
	var origins []origin
	for _, ph := range plan.Phases {
		for _, t := range ph.Tasks {
			for _, dep := range t.DependsOn {
				predID, ok := res.TaskIDs[dep]
				if !ok {
					res.Rejected = append(res.Rejected, RejectedDependency{TaskRef: t.Ref, DependsOnRef: dep, Reason: ReasonUnknownRef})
					continue
				}
				candidates = append(candidates, depgraph.Candidate{TaskID: res.TaskIDs[t.Ref], PredecessorTaskID: predID})
				origins = append(origins, origin{t.Ref, dep})
			}
		}
	}
	if len(candidates) == 0 {
		return res, nil
	}

	bulk, err := im.edges.AddEdgesBulk(ctx, projectID, candidates)
	if err != nil {
		return nil, fmt.Errorf("planner: add dependencies: %w", err)
	}
	res.Accepted = bulk.Accepted

	// A repeated depends_on entry yields the same candidate twice and the
	// later copy is the rejected one, so origins are taken from the back.
	byCandidate := make(map[depgraph.Candidate][]origin, len(candidates))
	for i, c := range candidates {
		byCandidate[c] = append(byCandidate[c], origins[i])
	}
	for _, rej := range bulk.Rejected {
		list := byCandidate[rej.Candidate]
		o := origin{fmt.Sprint(rej.Candidate.TaskID), fmt.Sprint(rej.Candidate.PredecessorTaskID)}
		if len(list) > 0 {
			o = list[len(list)-1]
			byCandidate[rej.Candidate] = list[:len(list)-1]
		}
		res.Rejected = append(res.Rejected, RejectedDependency{TaskRef: o.taskRef, DependsOnRef: o.depRef, Reason: rej.Reason})
	}
	return res, nil
}
