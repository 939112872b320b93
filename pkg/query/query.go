package query

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/matzehuels/bagrules/pkg/dag"
	errs "github.com/matzehuels/bagrules/pkg/errors"
	"github.com/matzehuels/bagrules/pkg/rules"
)

// Kind names one of the supported queries.
type Kind string

const (
	KindAncestors Kind = "ancestors"
	KindContents  Kind = "contents"
)

// Kinds lists the supported queries in display order.
var Kinds = []Kind{KindAncestors, KindContents}

// Direction returns the graph orientation the query runs on.
func (k Kind) Direction() dag.Direction {
	if k == KindContents {
		return dag.Forward
	}
	return dag.Reverse
}

// Valid reports whether k is a known query.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// Run executes the query against g.
func (k Kind) Run(g *dag.Graph, target rules.Entity) (uint64, error) {
	switch k {
	case KindAncestors:
		return Ancestors(g, target)
	case KindContents:
		return Contents(g, target)
	}
	return 0, errs.New(errs.ErrCodeUnsupported, "unknown query %q", string(k))
}

// Ancestors returns how many distinct entities can contain target, directly
// or transitively. g must be a [dag.Reverse] graph.
func Ancestors(g *dag.Graph, target rules.Entity) (uint64, error) {
	ids, err := reach(g, target)
	if err != nil {
		return 0, err
	}
	return uint64(len(ids)), nil
}

// AncestorSet returns the entities counted by [Ancestors], sorted by name.
func AncestorSet(g *dag.Graph, target rules.Entity) ([]rules.Entity, error) {
	ids, err := reach(g, target)
	if err != nil {
		return nil, err
	}
	out := make([]rules.Entity, 0, len(ids))
	for _, id := range ids {
		e, _ := g.Entity(id)
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b rules.Entity) int { return strings.Compare(a.String(), b.String()) })
	return out, nil
}

// reach walks outgoing edges from target and returns every node discovered,
// excluding target itself.
func reach(g *dag.Graph, target rules.Entity) ([]dag.NodeID, error) {
	if err := expect(g, dag.Reverse, KindAncestors); err != nil {
		return nil, err
	}
	start, err := lookup(g, target)
	if err != nil {
		return nil, err
	}

	visited := make([]bool, g.NodeCount())
	visited[start] = true
	stack := []dag.NodeID{start}
	var found []dag.NodeID
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range g.Neighbors(n) {
			if visited[m] {
				continue
			}
			visited[m] = true
			found = append(found, m)
			stack = append(stack, m)
		}
	}
	return found, nil
}

// Contents returns the total number of entities nested inside target,
// counting multiplicities. g must be a [dag.Forward] graph.
func Contents(g *dag.Graph, target rules.Entity) (uint64, error) {
	v, err := Value(g, target)
	if err != nil {
		return 0, err
	}
	return v - 1, nil
}

// Value returns value(target) = 1 + Σ weight × value(child). A node with no
// outgoing edges has value 1.
func Value(g *dag.Graph, target rules.Entity) (uint64, error) {
	if err := expect(g, dag.Forward, KindContents); err != nil {
		return 0, err
	}
	start, err := lookup(g, target)
	if err != nil {
		return 0, err
	}
	a := &aggregator{
		g:     g,
		memo:  make([]uint64, g.NodeCount()),
		state: make([]visit, g.NodeCount()),
	}
	return a.value(start)
}

type visit uint8

const (
	unvisited visit = iota
	inProgress
	done
)

// aggregator holds the per-call memo table. state marks nodes currently on
// the recursion path so a cycle fails fast instead of recursing forever.
type aggregator struct {
	g     *dag.Graph
	memo  []uint64
	state []visit
	path  []dag.NodeID
}

func (a *aggregator) value(n dag.NodeID) (uint64, error) {
	switch a.state[n] {
	case done:
		return a.memo[n], nil
	case inProgress:
		return 0, a.cycle(n)
	}

	a.state[n] = inProgress
	a.path = append(a.path, n)

	total := uint64(1)
	for _, e := range a.g.Out(n) {
		v, err := a.value(e.To)
		if err != nil {
			return 0, err
		}
		hi, term := bits.Mul64(uint64(e.Weight), v)
		sum, carry := bits.Add64(total, term, 0)
		if hi != 0 || carry != 0 {
			return 0, errs.New(errs.ErrCodeInternal, "content count of %s overflows", a.name(n))
		}
		total = sum
	}

	a.path = a.path[:len(a.path)-1]
	a.state[n] = done
	a.memo[n] = total
	return total, nil
}

func (a *aggregator) cycle(n dag.NodeID) error {
	i := slices.Index(a.path, n)
	names := make([]string, 0, len(a.path)-i+1)
	for _, m := range a.path[i:] {
		names = append(names, a.name(m))
	}
	names = append(names, a.name(n))
	return errs.New(errs.ErrCodeCyclicContainment, "cyclic containment: %s", strings.Join(names, " -> "))
}

func (a *aggregator) name(n dag.NodeID) string {
	e, _ := a.g.Entity(n)
	return e.String()
}

func expect(g *dag.Graph, dir dag.Direction, k Kind) error {
	if g == nil {
		return errs.New(errs.ErrCodeInvalidInput, "%s query: nil graph", k)
	}
	if g.Direction() != dir {
		return errs.New(errs.ErrCodeInvalidInput, "%s query needs a %s graph, got %s", k, dir, g.Direction())
	}
	return nil
}

func lookup(g *dag.Graph, target rules.Entity) (dag.NodeID, error) {
	id, ok := g.Lookup(target)
	if !ok {
		return 0, errs.New(errs.ErrCodeEntityNotFound, "no such entity: %s", target)
	}
	return id, nil
}

// Describe formats a query outcome for logs and plain-text output.
func Describe(k Kind, target rules.Entity, n uint64) string {
	switch k {
	case KindAncestors:
		return fmt.Sprintf("%d bag colors can eventually contain %s", n, target)
	case KindContents:
		return fmt.Sprintf("%s contains %d other bags", target, n)
	}
	return fmt.Sprintf("%s(%s) = %d", k, target, n)
}
