package depgraph

import "sort"

// graph is an adjacency view of a project's edges: task -> the set of tasks
// it depends on.
type graph struct {
	preds map[int64]map[int64]struct{}
}

func newGraph(edges []Edge) *graph {
	g := &graph{preds: make(map[int64]map[int64]struct{}, len(edges))}
	for _, e := range edges {
		g.add(e.TaskID, e.PredecessorTaskID)
	}
	return g
}

func (g *graph) add(taskID, predecessorTaskID int64) {
	set, ok := g.preds[taskID]
	if !ok {
		set = make(map[int64]struct{})
		g.preds[taskID] = set
	}
	set[predecessorTaskID] = struct{}{}
}

func (g *graph) has(taskID, predecessorTaskID int64) bool {
	_, ok := g.preds[taskID][predecessorTaskID]
	return ok
}

// dependsOn reports whether from transitively depends on target. The walk
// is an explicit BFS queue with a visited set, so it terminates on any
// input, including an edge set that already contains a cycle.
func (g *graph) dependsOn(from, target int64) bool {
	visited := map[int64]bool{from: true}
	queue := []int64{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == target {
			return true
		}
		for next := range g.preds[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// check runs the three guard rules against the working graph.
func (g *graph) check(taskID, predecessorTaskID int64) *RejectionError {
	if taskID == predecessorTaskID {
		return reject(ReasonSelfDependency, taskID, predecessorTaskID)
	}
	if g.has(taskID, predecessorTaskID) {
		return reject(ReasonDuplicateEdge, taskID, predecessorTaskID)
	}
	// With the candidate in place, a cycle exists iff the predecessor
	// already reaches the dependent task.
	if g.dependsOn(predecessorTaskID, taskID) {
		return reject(ReasonCyclicDependency, taskID, predecessorTaskID)
	}
	return nil
}

// CanAddEdge decides whether "taskID depends on predecessorTaskID" may be
// added to the given project edge set. It returns nil or a *RejectionError.
func CanAddEdge(edges []Edge, taskID, predecessorTaskID int64) error {
	if rej := newGraph(edges).check(taskID, predecessorTaskID); rej != nil {
		return rej
	}
	return nil
}

// FindCycle returns one cycle in the edge set as a list of task ids where
// each task depends on the next and the last depends on the first, or nil
// when the set is acyclic.
func FindCycle(edges []Edge) []int64 {
	g := newGraph(edges)
	remaining := peel(g, nodesOf(edges))
	if len(remaining) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(remaining))
	for id := range remaining {
		ids = append(ids, id)
	}
	sortIDs(ids)

	// Every node left after peeling has a predecessor that is also left,
	// so following predecessors inside the remainder must revisit a node.
	pos := make(map[int64]int)
	var path []int64
	current := ids[0]
	for {
		if i, seen := pos[current]; seen {
			return path[i:]
		}
		pos[current] = len(path)
		path = append(path, current)
		current = smallestIn(g.preds[current], remaining)
	}
}

// HasCycle reports whether the edge set contains any cycle.
func HasCycle(edges []Edge) bool {
	return len(peel(newGraph(edges), nodesOf(edges))) > 0
}

// Waves groups tasks into execution layers: the first wave holds tasks with
// no predecessors, each later wave holds tasks whose predecessors all sit in
// earlier waves. Edges touching tasks outside taskIDs are ignored.
func Waves(taskIDs []int64, edges []Edge) ([][]int64, error) {
	inSet := make(map[int64]bool, len(taskIDs))
	for _, id := range taskIDs {
		inSet[id] = true
	}

	inDegree := make(map[int64]int, len(taskIDs))
	successors := make(map[int64][]int64)
	for id := range inSet {
		inDegree[id] = 0
	}
	seen := make(map[Candidate]bool, len(edges))
	for _, e := range edges {
		if !inSet[e.TaskID] || !inSet[e.PredecessorTaskID] || seen[e.Candidate()] {
			continue
		}
		seen[e.Candidate()] = true
		inDegree[e.TaskID]++
		successors[e.PredecessorTaskID] = append(successors[e.PredecessorTaskID], e.TaskID)
	}

	var current []int64
	for id, d := range inDegree {
		if d == 0 {
			current = append(current, id)
		}
	}

	var waves [][]int64
	placed := 0
	for len(current) > 0 {
		sortIDs(current)
		waves = append(waves, current)
		placed += len(current)

		var next []int64
		for _, id := range current {
			for _, succ := range successors[id] {
				inDegree[succ]--
				if inDegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		current = next
	}

	if placed != len(inSet) {
		return nil, ErrCyclicDependency
	}
	return waves, nil
}

// Blocked reports whether taskID still waits on a predecessor that is not
// done.
func Blocked(taskID int64, edges []Edge, done func(taskID int64) bool) bool {
	for _, e := range edges {
		if e.TaskID == taskID && !done(e.PredecessorTaskID) {
			return true
		}
	}
	return false
}

// peel repeatedly strips nodes whose predecessors are all stripped (Kahn's
// algorithm) and returns whatever is left: the nodes on a cycle plus the
// nodes that depend on one.
func peel(g *graph, nodes map[int64]struct{}) map[int64]struct{} {
	inDegree := make(map[int64]int, len(nodes))
	successors := make(map[int64][]int64)
	for id := range nodes {
		inDegree[id] = len(g.preds[id])
		for pred := range g.preds[id] {
			successors[pred] = append(successors[pred], id)
		}
	}

	var queue []int64
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}

	remaining := make(map[int64]struct{}, len(nodes))
	for id := range nodes {
		remaining[id] = struct{}{}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		delete(remaining, id)
		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
	return remaining
}

func nodesOf(edges []Edge) map[int64]struct{} {
	nodes := make(map[int64]struct{}, len(edges)*2)
	for _, e := range edges {
		nodes[e.TaskID] = struct{}{}
		nodes[e.PredecessorTaskID] = struct{}{}
	}
	return nodes
}

func smallestIn(set map[int64]struct{}, within map[int64]struct{}) int64 {
	first := true
	var best int64
	for id := range set {
		if _, ok := within[id]; !ok {
			continue
		}
		if first || id < best {
			best = id
			first = false
		}
	}
	return best
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
