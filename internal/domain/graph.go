package domain

// Graph is the dependency view of a workflow, derived purely from its
// connections: the source of an edge is a dependency of the target, the
// target a dependent of the source. Per-component orderings follow
// connection declaration order so that scheduling and input merging are
// deterministic.
type Graph struct {
	// Dependencies maps a component id to the ids whose output it consumes.
	Dependencies map[string][]string
	// Dependents maps a component id to the ids that consume its output.
	Dependents map[string][]string
	// InitialReady lists, in component declaration order, the components
	// that are schedulable before any result exists: components without
	// dependencies, plus input components, which are unconditionally
	// seeded because they receive the caller-supplied inputs directly.
	InitialReady []string
}

// ResolveGraph derives the dependency graph of a workflow. Connections with
// a missing endpoint were already rejected at definition time; if one is
// present anyway the edge is silently excluded from the graph.
func ResolveGraph(w *Workflow) *Graph {
	g := &Graph{
		Dependencies: make(map[string][]string, len(w.Components)),
		Dependents:   make(map[string][]string, len(w.Components)),
	}

	exists := make(map[string]bool, len(w.Components))
	for _, c := range w.Components {
		exists[c.ID] = true
	}

	for _, conn := range w.Connections {
		if !exists[conn.SourceID] || !exists[conn.TargetID] {
			continue
		}
		g.Dependencies[conn.TargetID] = appendUnique(g.Dependencies[conn.TargetID], conn.SourceID)
		g.Dependents[conn.SourceID] = appendUnique(g.Dependents[conn.SourceID], conn.TargetID)
	}

	for _, c := range w.Components {
		if len(g.Dependencies[c.ID]) == 0 || c.Type == ComponentTypeInput {
			g.InitialReady = append(g.InitialReady, c.ID)
		}
	}

	return g
}

// HasCycle reports whether the dependency graph contains a cycle, via
// Kahn's algorithm over the resolved edges.
func (g *Graph) HasCycle() bool {
	indegree := make(map[string]int)
	for id := range g.Dependents {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
	}
	for id, deps := range g.Dependencies {
		indegree[id] = len(deps)
	}

	var queue []string
	for id, degree := range indegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dependent := range g.Dependents[id] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	return visited < len(indegree)
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}
