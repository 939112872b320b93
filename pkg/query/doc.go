// Package query answers structural questions about a containment graph.
//
// Two independent algorithms share the [dag.Graph] abstraction:
//
//   - [Ancestors] counts the distinct entities that can eventually contain a
//     target. It needs a [dag.Reverse] graph and performs a depth-first walk
//     with a visited set, so diamond-shaped inputs count each node once.
//   - [Contents] totals the entities nested inside a target, multiplicities
//     included. It needs a [dag.Forward] graph and evaluates
//     value(n) = 1 + Σ weight × value(child) by memoised post-order
//     recursion, subtracting the target's own instance at the end.
//
// A target absent from the graph yields an ENTITY_NOT_FOUND error, never a
// zero. A cycle reachable from the target during aggregation yields a
// CYCLIC_CONTAINMENT error naming the loop. Memo tables and visited sets are
// per call, so repeated queries on the same graph always agree.
package query
