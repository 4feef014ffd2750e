package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/planner"
	"github.com/HendryAvila/planwright/internal/store"
	"github.com/HendryAvila/planwright/internal/updater"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// errCycles makes check exit non-zero.
var errCycles = errors.New("dependency cycles found")

// runCheck reports, per project, whether its stored edges contain a cycle.
func runCheck(ctx context.Context, s *store.Store, projectID int64, w io.Writer) error {
	var projects []store.Project
	if projectID > 0 {
		p, err := s.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		projects = []store.Project{*p}
	} else {
		all, err := s.ListProjects(ctx)
		if err != nil {
			return err
		}
		projects = all
	}
	if len(projects) == 0 {
		fmt.Fprintln(w, dim("no projects"))
		return nil
	}

	bad := 0
	for _, p := range projects {
		edges, err := s.ListEdges(ctx, p.ID)
		if err != nil {
			return err
		}
		if cycle := depgraph.FindCycle(edges); cycle != nil {
			bad++
			fmt.Fprintf(w, "%s #%d %s: cycle through tasks %s\n", red("✗"), p.ID, bold(p.Name), formatCycle(cycle))
			continue
		}
		fmt.Fprintf(w, "%s #%d %s: %d dependencies, acyclic\n", green("✓"), p.ID, bold(p.Name), len(edges))
	}
	if bad > 0 {
		return fmt.Errorf("%w in %d project(s)", errCycles, bad)
	}
	return nil
}

// runImport parses a plan document and imports it through the guard.
func runImport(ctx context.Context, s *store.Store, projectID int64, doc string, w io.Writer) error {
	plan, err := planner.ParsePlan(doc)
	if err != nil {
		return err
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}

	guard := depgraph.NewGuard(s, depgraph.WithLocker(s))
	res, err := planner.NewImporter(s, guard).Import(ctx, projectID, plan)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s imported %d phases, %d tasks into project #%d\n",
		green("✓"), len(res.Phases), len(res.Tasks), projectID)
	fmt.Fprintf(w, "  %s %d of %d dependencies added\n", cyan("→"), len(res.Accepted), res.Declared)
	for _, rej := range res.Rejected {
		fmt.Fprintf(w, "  %s %s -> %s (%s)\n", yellow("!"), rej.TaskRef, rej.DependsOnRef, rej.Reason)
	}
	return nil
}

// runWaves prints execution waves with task titles.
func runWaves(ctx context.Context, s *store.Store, projectID int64, w io.Writer) error {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	tasks, err := s.ListTasks(ctx, projectID)
	if err != nil {
		return err
	}
	edges, err := s.ListEdges(ctx, projectID)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(tasks))
	byID := make(map[int64]store.Task, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	waves, err := depgraph.Waves(ids, edges)
	if err != nil {
		return fmt.Errorf("project #%d: %w (run `planwright check`)", projectID, err)
	}

	fmt.Fprintf(w, "%s %s\n", bold("Project"), bold(project.Name))
	if len(waves) == 0 {
		fmt.Fprintln(w, dim("  no tasks"))
		return nil
	}
	for i, wave := range waves {
		fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("Wave %d", i+1)))
		for _, id := range wave {
			t := byID[id]
			mark := dim("○")
			switch t.Status {
			case store.StatusDone:
				mark = green("●")
			case store.StatusInProgress:
				mark = yellow("◐")
			}
			fmt.Fprintf(w, "  %s #%d %s\n", mark, t.ID, t.Title)
		}
	}
	return nil
}

func formatCycle(cycle []int64) string {
	out := ""
	for i, id := range cycle {
		if i > 0 {
			out += " → "
		}
		out += fmt.Sprintf("#%d", id)
	}
	return out + fmt.Sprintf(" → #%d", cycle[0])
}

// runVersionCheck prints whether a newer release exists.
func runVersionCheck(ctx context.Context, c *updater.Checker, current string, w io.Writer) error {
	res, err := c.Check(ctx, current)
	if err != nil {
		return err
	}
	if !res.UpdateAvailable {
		fmt.Fprintf(w, "%s up to date\n", green("✓"))
		return nil
	}
	fmt.Fprintf(w, "%s v%s available: %s\n", yellow("↑"), res.LatestVersion, res.ReleaseURL)
	return nil
}
