package graph

import "strings"

// DFS colouring states.
const (
	white = iota // unvisited
	gray         // on the current path
	black        // fully explored
)

// DetectCycles finds circular dependency chains in the forward graph.
//
// The traversal is an explicit-stack depth-first search with three-state
// marking, so depth is bounded by node count without growing the goroutine
// stack. A back-edge to a gray node reports the current path slice from that
// node onward as one cycle. Reported cycles are canonicalised by rotating to
// their lexicographically smallest id and deduplicated, so a 2-cycle found
// from both ends is reported once.
func (g *Graph) DetectCycles() [][]string {
	color := make(map[string]int, len(g.order))
	seen := make(map[string]struct{})
	var cycles [][]string

	type frame struct {
		node string
		next int // index into successors
		succ []string
	}

	for _, root := range g.order {
		if color[root] != white {
			continue
		}

		stack := []frame{{node: root, succ: g.Dependents(root)}}
		color[root] = gray
		path := []string{root}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.succ) {
				next := top.succ[top.next]
				top.next++

				switch color[next] {
				case gray:
					// Back-edge: the path slice from next's first
					// occurrence to the current node is a cycle.
					for i, id := range path {
						if id == next {
							cycle := canonicalise(path[i:])
							key := strings.Join(cycle, "→")
							if _, dup := seen[key]; !dup {
								seen[key] = struct{}{}
								cycles = append(cycles, cycle)
							}
							break
						}
					}
				case white:
					color[next] = gray
					path = append(path, next)
					stack = append(stack, frame{node: next, succ: g.Dependents(next)})
				}
				continue
			}

			color[top.node] = black
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return cycles
}

// canonicalise rotates a cycle so its lexicographically smallest id comes
// first, making equivalent rotations comparable.
func canonicalise(cycle []string) []string {
	if len(cycle) == 0 {
		return nil
	}
	min := 0
	for i, id := range cycle {
		if id < cycle[min] {
			min = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}
