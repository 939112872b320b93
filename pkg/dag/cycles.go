package dag

// FindCycle returns the nodes of one directed cycle, in edge order, or nil
// if the graph is acyclic. It runs a white/gray/black depth-first search in
// O(N+E) without recursion.
func FindCycle(g *Graph) []NodeID {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, g.NodeCount())
	parent := make([]NodeID, g.NodeCount())

	type frame struct {
		id   NodeID
		next int
	}

	for start := range color {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: NodeID(start)}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			out := g.outgoing[top.id]
			if top.next == len(out) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := g.edges[out[top.next]].To
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				parent[child] = top.id
				stack = append(stack, frame{id: child})
			case gray:
				return unwind(parent, top.id, child)
			}
		}
	}
	return nil
}

// unwind rebuilds the cycle child -> ... -> from -> child from parent links.
func unwind(parent []NodeID, from, child NodeID) []NodeID {
	cycle := []NodeID{from}
	for n := from; n != child; {
		n = parent[n]
		cycle = append(cycle, n)
	}
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}
	return cycle
}
