package planner

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/store"
)

// Progress is a point-in-time summary of a project's tasks.
type Progress struct {
	Total      int     `json:"total"`
	Todo       int     `json:"todo"`
	InProgress int     `json:"in_progress"`
	Done       int     `json:"done"`
	Percent    float64 `json:"percent"`

	// Ready holds open tasks whose predecessors are all done.
	Ready []store.Task `json:"ready"`
	// Blocked holds open tasks still waiting on a predecessor.
	Blocked []store.Task `json:"blocked"`
	// Waves is nil when the stored graph has a cycle; Cycle then names it.
	Waves [][]int64 `json:"waves,omitempty"`
	Cycle []int64   `json:"cycle,omitempty"`
}

// ComputeProgress derives counts, readiness and execution waves.
func ComputeProgress(tasks []store.Task, edges []depgraph.Edge) Progress {
	var p Progress
	done := make(map[int64]bool, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
		switch t.Status {
		case store.StatusDone:
			p.Done++
			done[t.ID] = true
		case store.StatusInProgress:
			p.InProgress++
		default:
			p.Todo++
		}
	}
	p.Total = len(tasks)
	if p.Total > 0 {
		p.Percent = float64(p.Done) * 100 / float64(p.Total)
	}

	isDone := func(id int64) bool { return done[id] }
	for _, t := range tasks {
		if t.Status == store.StatusDone {
			continue
		}
		if depgraph.Blocked(t.ID, edges, isDone) {
			p.Blocked = append(p.Blocked, t)
		} else {
			p.Ready = append(p.Ready, t)
		}
	}

	waves, err := depgraph.Waves(ids, edges)
	if err != nil {
		p.Cycle = depgraph.FindCycle(edges)
	} else {
		p.Waves = waves
	}
	return p
}

// BuildProgressContext renders a plain-text snapshot of the project for a
// chat system prompt.
func BuildProgressContext(project *store.Project, tasks []store.Task, edges []depgraph.Edge) string {
	p := ComputeProgress(tasks, edges)
	titles := make(map[int64]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Project: %s\n", project.Name)
	if project.Description != "" {
		fmt.Fprintf(&b, "%s\n", project.Description)
	}
	fmt.Fprintf(&b, "\n**Progress**: %d/%d done (%.0f%%), %d in progress, %d to do\n",
		p.Done, p.Total, p.Percent, p.InProgress, p.Todo)

	if len(tasks) > 0 {
		b.WriteString("\n### Tasks\n")
		for _, t := range tasks {
			fmt.Fprintf(&b, "- #%d [%s] %s (priority %s", t.ID, t.Status, t.Title, t.Priority)
			if t.EstimateHours > 0 {
				fmt.Fprintf(&b, ", %.1fh", t.EstimateHours)
			}
			b.WriteString(")\n")
		}
	}

	if len(edges) > 0 {
		b.WriteString("\n### Dependencies\n")
		for _, e := range edges {
			fmt.Fprintf(&b, "- #%d %s depends on #%d %s\n",
				e.TaskID, titles[e.TaskID], e.PredecessorTaskID, titles[e.PredecessorTaskID])
		}
	}

	if len(p.Ready) > 0 {
		b.WriteString("\n### Ready to start\n")
		for _, t := range p.Ready {
			fmt.Fprintf(&b, "- #%d %s\n", t.ID, t.Title)
		}
	}
	if len(p.Blocked) > 0 {
		b.WriteString("\n### Blocked\n")
		for _, t := range p.Blocked {
			fmt.Fprintf(&b, "- #%d %s\n", t.ID, t.Title)
		}
	}

	switch {
	case p.Cycle != nil:
		fmt.Fprintf(&b, "\n**Warning**: dependency cycle through tasks %v\n", p.Cycle)
	case len(p.Waves) > 0:
		b.WriteString("\n### Execution waves\n")
		for i, w := range p.Waves {
			fmt.Fprintf(&b, "%d. %v\n", i+1, w)
		}
	}
	return b.String()
}
