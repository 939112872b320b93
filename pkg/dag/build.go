package dag

import (
	"fmt"

	"github.com/matzehuels/bagrules/pkg/rules"
)

// Build assembles the containment graph of rs with edges oriented per dir.
//
// The first pass allocates one node per distinct subject. The second pass
// resolves each constraint's entity, allocating a node on demand for
// entities that never appear as a subject, and inserts one edge per
// constraint weighted by its quantity.
//
// When several rules declare the same subject, the last one wins: only its
// constraints become edges. Overridden subjects are reported by
// [Graph.Duplicates]. Build performs no cycle detection.
func Build(rs []rules.Rule, dir Direction) (*Graph, error) {
	g := New(dir)

	owner := make(map[NodeID]int, len(rs))
	for i, r := range rs {
		id, _ := g.AddNode(r.Subject)
		if _, seen := owner[id]; seen {
			g.duplicates = append(g.duplicates, r.Subject)
		}
		owner[id] = i
	}

	for i, r := range rs {
		subject, _ := g.Lookup(r.Subject)
		if owner[subject] != i {
			continue
		}
		for _, c := range r.Constraints {
			object, _ := g.AddNode(c.Entity)
			from, to := subject, object
			if dir == Reverse {
				from, to = object, subject
			}
			if err := g.AddEdge(from, to, c.Quantity); err != nil {
				return nil, fmt.Errorf("rule %q: constraint %q: %w", r.Subject, c, err)
			}
		}
	}

	return g, nil
}
