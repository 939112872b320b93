package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/bagrules/pkg/rules"
)

var (
	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidWeight is returned by [Graph.AddEdge] when the edge weight is
	// not a positive quantity.
	ErrInvalidWeight = errors.New("edge weight must be positive")

	// ErrUnknownDirection is returned by [ParseDirection] for unrecognised names.
	ErrUnknownDirection = errors.New("unknown direction")
)

// Direction fixes which way containment edges point.
type Direction int

const (
	// Forward edges point from a container to what it directly contains.
	// This is the orientation used for weighted content aggregation.
	Forward Direction = iota
	// Reverse edges point from a contained entity to its container.
	// This is the orientation used for ancestor reachability.
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "forward" or "reverse" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "forward", "contains":
		return Forward, nil
	case "reverse", "contained-by":
		return Reverse, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// NodeID indexes a node in the graph arena. IDs are dense, starting at 0, in
// order of first sight.
type NodeID int

// Edge is a directed, weighted containment edge. Weight is the quantity of
// the constraint the edge was built from.
type Edge struct {
	From   NodeID
	To     NodeID
	Weight int
}

// Graph is a directed multigraph of entities. Nodes live in a growable arena
// indexed by [NodeID]; a parallel map resolves entities to IDs. Every graph is
// built for one [Direction] and keeps it for its whole life.
//
// The zero value is not usable - use New or Build.
// Graph is not safe for concurrent mutation; a fully built graph may be read
// from several goroutines.
type Graph struct {
	dir        Direction
	nodes      []rules.Entity
	index      map[rules.Entity]NodeID
	edges      []Edge
	outgoing   [][]int // node -> indices into edges
	incoming   [][]int
	duplicates []rules.Entity
}

// New creates an empty graph whose edges follow dir.
func New(dir Direction) *Graph {
	return &Graph{
		dir:   dir,
		index: make(map[rules.Entity]NodeID),
	}
}

// Direction returns the edge orientation the graph was built with.
func (g *Graph) Direction() Direction { return g.dir }

// AddNode returns the ID of e, allocating a new node on first sight.
// The boolean reports whether the node was created by this call.
func (g *Graph) AddNode(e rules.Entity) (NodeID, bool) {
	if id, ok := g.index[e]; ok {
		return id, false
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, e)
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)
	g.index[e] = id
	return id, true
}

// AddEdge inserts a weighted edge between two existing nodes. The caller is
// responsible for orienting the endpoints per the graph's direction.
// Parallel edges are kept; each one contributes separately to traversals.
func (g *Graph) AddEdge(from, to NodeID, weight int) error {
	if !g.has(from) {
		return ErrUnknownSourceNode
	}
	if !g.has(to) {
		return ErrUnknownTargetNode
	}
	if weight <= 0 {
		return ErrInvalidWeight
	}
	i := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Weight: weight})
	g.outgoing[from] = append(g.outgoing[from], i)
	g.incoming[to] = append(g.incoming[to], i)
	return nil
}

func (g *Graph) has(id NodeID) bool { return id >= 0 && int(id) < len(g.nodes) }

// Lookup returns the node ID of e, if e is in the graph.
func (g *Graph) Lookup(e rules.Entity) (NodeID, bool) {
	id, ok := g.index[e]
	return id, ok
}

// Entity returns the entity stored at id.
func (g *Graph) Entity(id NodeID) (rules.Entity, bool) {
	if !g.has(id) {
		return rules.Entity{}, false
	}
	return g.nodes[id], true
}

// Nodes returns the entities in ID order. The slice is a copy.
func (g *Graph) Nodes() []rules.Entity { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Out returns the edges leaving id in insertion order.
// Returns nil if the node has no outgoing edges or doesn't exist.
func (g *Graph) Out(id NodeID) []Edge { return g.collect(g.outgoing, id) }

// In returns the edges entering id in insertion order.
// Returns nil if the node has no incoming edges or doesn't exist.
func (g *Graph) In(id NodeID) []Edge { return g.collect(g.incoming, id) }

func (g *Graph) collect(adj [][]int, id NodeID) []Edge {
	if !g.has(id) || len(adj[id]) == 0 {
		return nil
	}
	out := make([]Edge, len(adj[id]))
	for i, ei := range adj[id] {
		out[i] = g.edges[ei]
	}
	return out
}

// Neighbors returns the distinct targets of edges leaving id, in first-edge order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	var out []NodeID
	for _, ei := range g.outgoing[id] {
		if to := g.edges[ei].To; !slices.Contains(out, to) {
			out = append(out, to)
		}
	}
	return out
}

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id NodeID) int {
	if !g.has(id) {
		return 0
	}
	return len(g.outgoing[id])
}

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id NodeID) int {
	if !g.has(id) {
		return 0
	}
	return len(g.incoming[id])
}

// Weight returns the summed weight of all edges from -> to. The boolean is
// false when no such edge exists.
func (g *Graph) Weight(from, to NodeID) (int, bool) {
	if !g.has(from) {
		return 0, false
	}
	total, found := 0, false
	for _, ei := range g.outgoing[from] {
		if e := g.edges[ei]; e.To == to {
			total += e.Weight
			found = true
		}
	}
	return total, found
}

// Sources returns nodes with no incoming edges, in ID order.
func (g *Graph) Sources() []NodeID {
	var out []NodeID
	for id := range g.nodes {
		if len(g.incoming[id]) == 0 {
			out = append(out, NodeID(id))
		}
	}
	return out
}

// Sinks returns nodes with no outgoing edges, in ID order.
func (g *Graph) Sinks() []NodeID {
	var out []NodeID
	for id := range g.nodes {
		if len(g.outgoing[id]) == 0 {
			out = append(out, NodeID(id))
		}
	}
	return out
}

// Duplicates returns subjects that were declared by more than one rule, in
// the order the repeated declarations were seen. See [Build].
func (g *Graph) Duplicates() []rules.Entity { return slices.Clone(g.duplicates) }
