// Package rules parses containment rules of the form
//
//	light red bags contain 1 bright white bag, 2 muted yellow bags.
//	faded blue bags contain no other bags.
//
// into structured [Rule] values.
//
// # Grammar
//
// A rule line is a subject [Entity] followed by the literal separator
// "contain" and a constraint list terminated by a period:
//
//	<adjective> <color> bag[s] contain <list>.
//	<list> := "no other bags" | <constraint> { ", " <constraint> }
//	<constraint> := <positive integer> " " <adjective> " " <color> " bag" ["s"]
//
// The singular/plural suffix carries no meaning. The "no other bags"
// sentinel yields an empty constraint list.
//
// # Errors
//
// Parsing is strict: a line that does not match the grammar fails with an
// INVALID_RULE error carrying a [*ParseError] that names the line, column and
// reason. [Parse] stops at the first bad line; partially parsed rule sets are
// never returned.
//
// # Round trip
//
// [Rule.String] renders a rule back into grammar text, so that
// ParseRule(r.String()) reproduces r. [Rule.Describe] renders the indented
// listing used by the "rules" CLI command.
package rules
