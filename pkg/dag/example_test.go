package dag_test

import (
	"fmt"

	"github.com/matzehuels/bagrules/pkg/dag"
	"github.com/matzehuels/bagrules/pkg/rules"
)

func ExampleBuild() {
	rs, _ := rules.Parse(`light red bags contain 1 bright white bag, 2 muted yellow bags.
bright white bags contain 1 shiny gold bag.
`)
	g, _ := dag.Build(rs, dag.Forward)

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())

	red, _ := g.Lookup(rules.MustEntity("light red"))
	for _, e := range g.Out(red) {
		to, _ := g.Entity(e.To)
		fmt.Printf("%d x %s\n", e.Weight, to)
	}
	// Output:
	// Nodes: 4
	// Edges: 3
	// 1 x bright white
	// 2 x muted yellow
}

func ExampleGraph_Neighbors() {
	rs, _ := rules.Parse(`light red bags contain 1 shiny gold bag.
dark orange bags contain 3 shiny gold bags.
`)
	g, _ := dag.Build(rs, dag.Reverse)

	gold, _ := g.Lookup(rules.MustEntity("shiny gold"))
	for _, n := range g.Neighbors(gold) {
		e, _ := g.Entity(n)
		fmt.Println(e)
	}
	// Output:
	// light red
	// dark orange
}
