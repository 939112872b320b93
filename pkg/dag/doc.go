// Package dag provides the containment graph that bagrules queries run on.
//
// # Overview
//
// Rules such as "light red bags contain 1 bright white bag, 2 muted yellow
// bags." become weighted edges between entity nodes. Nodes are stored in an
// arena indexed by [NodeID], with a map from [rules.Entity] to ID built
// incrementally while edges are inserted. Entities that only ever appear as
// constraint objects still become nodes, with no edges of their own.
//
// # Direction
//
// The same rule set can be read two ways, and a [Graph] is always built for
// exactly one of them:
//
//   - [Forward]: container → containee, weighted by quantity. Used to
//     aggregate what a bag holds.
//   - [Reverse]: containee → container. Used to find every bag that can
//     eventually hold a given bag.
//
// Queries check [Graph.Direction] rather than reinterpreting edges, so a
// graph built for one query cannot silently answer the other.
//
// # Basic Usage
//
//	rs, _ := rules.Parse(input)
//	g, _ := dag.Build(rs, dag.Forward)
//	id, ok := g.Lookup(rules.MustEntity("shiny gold"))
//	for _, e := range g.Out(id) {
//	    // e.To, e.Weight
//	}
//
// # Duplicates and Cycles
//
// Duplicate subjects are resolved last-write-wins and reported by
// [Graph.Duplicates]. [Build] does not reject cycles; [FindCycle] reports
// one when diagnostics are wanted.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Once built it is read-only,
// and any number of queries may read it at the same time.
package dag
