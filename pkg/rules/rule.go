package rules

import (
	"fmt"
	"strings"
)

// Entity is the two-token identity of a bag, such as "shiny gold".
// Entities are comparable and are used directly as map keys.
type Entity struct {
	Adjective string
	Color     string
}

// ParseEntity splits a "<adjective> <color>" name into an Entity.
// It does not accept the trailing "bag"/"bags" suffix.
func ParseEntity(name string) (Entity, error) {
	adj, color, ok := strings.Cut(name, " ")
	if !ok || adj == "" || color == "" || strings.Contains(color, " ") {
		return Entity{}, fmt.Errorf("entity %q: want two words separated by a single space", name)
	}
	return Entity{Adjective: adj, Color: color}, nil
}

// MustEntity is like ParseEntity but panics on malformed names.
// It is intended for constants and tests.
func MustEntity(name string) Entity {
	e, err := ParseEntity(name)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Entity) String() string { return e.Adjective + " " + e.Color }

// Constraint states that Quantity bags of Entity are directly required.
type Constraint struct {
	Quantity int
	Entity   Entity
}

// String renders the constraint as it appears in a rule line, using the
// singular "bag" for a quantity of one.
func (c Constraint) String() string {
	return fmt.Sprintf("%d %s %s", c.Quantity, c.Entity, noun(c.Quantity))
}

// Rule is one parsed input line. An empty Constraints list means the subject
// contains nothing.
type Rule struct {
	Subject     Entity
	Constraints []Constraint
}

// Empty reports whether the rule is a "no other bags" rule.
func (r Rule) Empty() bool { return len(r.Constraints) == 0 }

// String renders the rule in grammar form. Parsing the result yields a rule
// equal to r.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Subject.String())
	b.WriteString(" bags contain ")
	if r.Empty() {
		b.WriteString(noOtherBags)
	} else {
		for i, c := range r.Constraints {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
		}
	}
	b.WriteByte('.')
	return b.String()
}

// Describe renders the rule as an indented listing:
//
//	muted yellow bags contain:
//		2 shiny gold bags
//		9 faded blue bags
func (r Rule) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s bags contain:\n", r.Subject)
	if r.Empty() {
		b.WriteString("\tno other bags\n")
		return b.String()
	}
	for _, c := range r.Constraints {
		fmt.Fprintf(&b, "\t%s\n", c)
	}
	return b.String()
}

func noun(n int) string {
	if n == 1 {
		return "bag"
	}
	return "bags"
}
