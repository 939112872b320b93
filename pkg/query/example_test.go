package query_test

import (
	"fmt"

	"github.com/matzehuels/bagrules/pkg/dag"
	"github.com/matzehuels/bagrules/pkg/query"
	"github.com/matzehuels/bagrules/pkg/rules"
)

const input = `light red bags contain 1 bright white bag, 2 muted yellow bags.
bright white bags contain 1 shiny gold bag.
muted yellow bags contain 2 shiny gold bags, 9 faded blue bags.
shiny gold bags contain no other bags.
faded blue bags contain no other bags.
`

func ExampleAncestors() {
	rs, _ := rules.Parse(input)
	g, _ := dag.Build(rs, dag.Reverse)

	n, _ := query.Ancestors(g, rules.MustEntity("shiny gold"))
	fmt.Println(n)
	// Output: 3
}

func ExampleContents() {
	rs, _ := rules.Parse(input)
	g, _ := dag.Build(rs, dag.Forward)

	n, _ := query.Contents(g, rules.MustEntity("muted yellow"))
	fmt.Println(n)
	// Output: 11
}
