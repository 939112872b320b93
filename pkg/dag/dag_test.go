package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bagrules/pkg/rules"
)

const sample = `light red bags contain 1 bright white bag, 2 muted yellow bags.
bright white bags contain 1 shiny gold bag.
muted yellow bags contain 2 shiny gold bags, 9 faded blue bags.
shiny gold bags contain no other bags.
faded blue bags contain no other bags.
`

func mustBuild(t *testing.T, input string, dir Direction) *Graph {
	t.Helper()
	rs, err := rules.Parse(input)
	require.NoError(t, err)
	g, err := Build(rs, dir)
	require.NoError(t, err)
	return g
}

func id(t *testing.T, g *Graph, name string) NodeID {
	t.Helper()
	n, ok := g.Lookup(rules.MustEntity(name))
	require.True(t, ok, "node %q missing", name)
	return n
}

func TestBuildForward(t *testing.T) {
	g := mustBuild(t, sample, Forward)

	assert.Equal(t, Forward, g.Direction())
	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 5, g.EdgeCount())

	red := id(t, g, "light red")
	out := g.Out(red)
	require.Len(t, out, 2)
	assert.Equal(t, Edge{From: red, To: id(t, g, "bright white"), Weight: 1}, out[0])
	assert.Equal(t, Edge{From: red, To: id(t, g, "muted yellow"), Weight: 2}, out[1])

	w, ok := g.Weight(id(t, g, "muted yellow"), id(t, g, "faded blue"))
	assert.True(t, ok)
	assert.Equal(t, 9, w)
}

func TestBuildReverse(t *testing.T) {
	g := mustBuild(t, sample, Reverse)

	gold := id(t, g, "shiny gold")
	assert.ElementsMatch(t,
		[]NodeID{id(t, g, "bright white"), id(t, g, "muted yellow")},
		g.Neighbors(gold))
	assert.Zero(t, g.OutDegree(id(t, g, "light red")))

	w, ok := g.Weight(gold, id(t, g, "muted yellow"))
	assert.True(t, ok)
	assert.Equal(t, 2, w)
}

func TestSameEdgeSetOppositeDirections(t *testing.T) {
	fwd := mustBuild(t, sample, Forward)
	rev := mustBuild(t, sample, Reverse)

	require.Equal(t, fwd.EdgeCount(), rev.EdgeCount())
	type key struct {
		from, to rules.Entity
		w        int
	}
	var a, b []key
	for _, e := range fwd.Edges() {
		from, _ := fwd.Entity(e.From)
		to, _ := fwd.Entity(e.To)
		a = append(a, key{from, to, e.Weight})
	}
	for _, e := range rev.Edges() {
		from, _ := rev.Entity(e.From)
		to, _ := rev.Entity(e.To)
		b = append(b, key{to, from, e.Weight})
	}
	assert.ElementsMatch(t, a, b)
}

func TestTerminalEntitiesBecomeNodes(t *testing.T) {
	g := mustBuild(t, "light red bags contain 3 dotted black bags.\n", Forward)

	black := id(t, g, "dotted black")
	assert.Equal(t, 2, g.NodeCount())
	assert.Zero(t, g.OutDegree(black))
	assert.Equal(t, 1, g.InDegree(black))
	assert.Equal(t, []NodeID{black}, g.Sinks())
}

func TestNoOtherBagsHasOutDegreeZero(t *testing.T) {
	g := mustBuild(t, sample, Forward)
	assert.Zero(t, g.OutDegree(id(t, g, "faded blue")))
	assert.Nil(t, g.Out(id(t, g, "shiny gold")))
}

func TestDuplicateSubjectLastWins(t *testing.T) {
	input := `light red bags contain 1 bright white bag.
light red bags contain 4 faded blue bags.
`
	g := mustBuild(t, input, Forward)

	red := id(t, g, "light red")
	out := g.Out(red)
	require.Len(t, out, 1)
	assert.Equal(t, id(t, g, "faded blue"), out[0].To)
	assert.Equal(t, 4, out[0].Weight)
	assert.Equal(t, []rules.Entity{rules.MustEntity("light red")}, g.Duplicates())

	// Objects named only by the overridden rule are never allocated.
	_, ok := g.Lookup(rules.MustEntity("bright white"))
	assert.False(t, ok)
}

func TestParallelEdges(t *testing.T) {
	g := mustBuild(t, "light red bags contain 1 faded blue bag, 2 faded blue bags.\n", Forward)

	red, blue := id(t, g, "light red"), id(t, g, "faded blue")
	assert.Len(t, g.Out(red), 2)
	assert.Equal(t, []NodeID{blue}, g.Neighbors(red))
	w, _ := g.Weight(red, blue)
	assert.Equal(t, 3, w)
}

func TestEmptyRuleSet(t *testing.T) {
	g, err := Build(nil, Forward)
	require.NoError(t, err)
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
	_, ok := g.Lookup(rules.MustEntity("shiny gold"))
	assert.False(t, ok)
}

func TestAddEdgeErrors(t *testing.T) {
	g := New(Forward)
	a, created := g.AddNode(rules.MustEntity("light red"))
	assert.True(t, created)
	again, created := g.AddNode(rules.MustEntity("light red"))
	assert.False(t, created)
	assert.Equal(t, a, again)

	assert.ErrorIs(t, g.AddEdge(7, a, 1), ErrUnknownSourceNode)
	assert.ErrorIs(t, g.AddEdge(a, 7, 1), ErrUnknownTargetNode)
	assert.ErrorIs(t, g.AddEdge(a, a, 0), ErrInvalidWeight)
	assert.NoError(t, g.AddEdge(a, a, 1))
}

func TestAccessorsOnMissingNode(t *testing.T) {
	g := mustBuild(t, sample, Forward)
	_, ok := g.Entity(99)
	assert.False(t, ok)
	assert.Nil(t, g.Out(-1))
	assert.Nil(t, g.In(99))
	assert.Zero(t, g.OutDegree(99))
	assert.Zero(t, g.InDegree(-1))
	_, ok = g.Weight(99, 0)
	assert.False(t, ok)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"forward", Forward, false},
		{"Reverse", Reverse, false},
		{"contains", Forward, false},
		{"contained-by", Reverse, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownDirection)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) Direction {
	t.Helper()
	d, err := ParseDirection(s)
	require.NoError(t, err)
	return d
}
