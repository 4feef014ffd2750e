package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidPlan is returned by ParsePlan for any unusable plan document.
var ErrInvalidPlan = errors.New("invalid plan")

// ParsePlan reads a plan document. It tolerates markdown fences around the
// JSON, numeric refs, a single string in depends_on, and the
// "estimated_hours" spelling. Tasks without a ref get "T<n>" in document
// order.
func ParsePlan(text string) (*Plan, error) {
	text = stripJSONFences(text)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPlan)
	}
	root := gjson.Parse(text)

	phases := root.Get("phases")
	if !phases.IsArray() || len(phases.Array()) == 0 {
		return nil, fmt.Errorf("%w: no phases", ErrInvalidPlan)
	}

	plan := &Plan{Summary: strings.TrimSpace(root.Get("summary").String())}
	seen := make(map[string]bool)
	n := 0
	var perr error

	phases.ForEach(func(_, ph gjson.Result) bool {
		phase := PlanPhase{
			Name:        strings.TrimSpace(ph.Get("name").String()),
			Description: strings.TrimSpace(ph.Get("description").String()),
		}
		if phase.Name == "" {
			phase.Name = fmt.Sprintf("Phase %d", len(plan.Phases)+1)
		}

		ph.Get("tasks").ForEach(func(_, t gjson.Result) bool {
			n++
			task := PlanTask{
				Ref:         strings.TrimSpace(t.Get("ref").String()),
				Title:       strings.TrimSpace(t.Get("title").String()),
				Description: strings.TrimSpace(t.Get("description").String()),
				Priority:    strings.TrimSpace(t.Get("priority").String()),
			}
			if task.Title == "" {
				perr = fmt.Errorf("%w: task %d in phase %q has no title", ErrInvalidPlan, n, phase.Name)
				return false
			}
			if task.Ref == "" {
				task.Ref = fmt.Sprintf("T%d", n)
			}
			if seen[task.Ref] {
				perr = fmt.Errorf("%w: duplicate task ref %q", ErrInvalidPlan, task.Ref)
				return false
			}
			seen[task.Ref] = true

			hours := t.Get("estimate_hours")
			if !hours.Exists() {
				hours = t.Get("estimated_hours")
			}
			task.EstimateHours = hours.Float()

			deps := t.Get("depends_on")
			switch {
			case deps.IsArray():
				deps.ForEach(func(_, d gjson.Result) bool {
					if ref := strings.TrimSpace(d.String()); ref != "" {
						task.DependsOn = append(task.DependsOn, ref)
					}
					return true
				})
			case deps.Exists() && deps.String() != "":
				task.DependsOn = []string{strings.TrimSpace(deps.String())}
			}

			phase.Tasks = append(phase.Tasks, task)
			return true
		})
		if perr != nil {
			return false
		}
		plan.Phases = append(plan.Phases, phase)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	if plan.TaskCount() == 0 {
		return nil, fmt.Errorf("%w: no tasks", ErrInvalidPlan)
	}
	return plan, nil
}

// stripJSONFences removes markdown code fences that models sometimes add.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
