package rules

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/bagrules/pkg/errors"
)

const (
	noOtherBags = "no other bags"
	separator   = " contain "
)

// ParseError describes why a rule line does not match the grammar.
type ParseError struct {
	Line   int    // 1-based line number, 0 for a standalone line
	Column int    // 1-based byte offset where parsing stopped
	Text   string // the offending line
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s in %q", e.Line, e.Column, e.Reason, e.Text)
	}
	return fmt.Sprintf("column %d: %s in %q", e.Column, e.Reason, e.Text)
}

// Options controls how a whole input is parsed.
type Options struct {
	// Workers is the number of goroutines used to parse lines. Values below 2
	// parse sequentially. Output order always follows input order.
	Workers int
}

// ParseRule parses a single rule line.
// A malformed line yields an INVALID_RULE error wrapping a [*ParseError].
func ParseRule(line string) (Rule, error) {
	r, pe := parseLine(line, 0)
	if pe != nil {
		return Rule{}, invalid(pe)
	}
	return r, nil
}

// Parse parses a newline-separated input into rules, in input order.
// Blank lines are skipped, so an empty input produces no rules and no error.
// The first malformed line aborts the whole parse.
func Parse(input string) ([]Rule, error) {
	return ParseWithOptions(context.Background(), input, Options{})
}

// ParseReader reads r fully into memory and parses it with opts.
func ParseReader(ctx context.Context, r io.Reader, opts Options) ([]Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseWithOptions(ctx, string(data), opts)
}

// ParseWithOptions is Parse with cancellation and optional concurrent parsing.
func ParseWithOptions(ctx context.Context, input string, opts Options) ([]Rule, error) {
	lines := splitLines(input)
	if opts.Workers > 1 && len(lines) > opts.Workers {
		return parseConcurrent(ctx, lines, opts.Workers)
	}

	rs := make([]Rule, 0, len(lines))
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		r, pe := parseLine(line, i+1)
		if pe != nil {
			return nil, invalid(pe)
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// chunkResult holds the rules of one contiguous block of lines and the first
// error met in it, if any.
type chunkResult struct {
	rules []Rule
	err   *ParseError
}

// parseConcurrent splits lines into contiguous chunks, one per worker. Each
// worker only writes its own chunk slot, and a chunk stops at its first bad
// line, so the lowest-numbered error is reported regardless of scheduling.
func parseConcurrent(ctx context.Context, lines []string, workers int) ([]Rule, error) {
	size := (len(lines) + workers - 1) / workers
	results := make([]chunkResult, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * size
		if start >= len(lines) {
			break
		}
		end := min(start+size, len(lines))
		g.Go(func() error {
			res := &results[w]
			for i := start; i < end; i++ {
				if (i-start)%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if isBlank(lines[i]) {
					continue
				}
				r, pe := parseLine(lines[i], i+1)
				if pe != nil {
					res.err = pe
					return nil
				}
				res.rules = append(res.rules, r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rs []Rule
	for _, res := range results {
		if res.err != nil {
			return nil, invalid(res.err)
		}
		rs = append(rs, res.rules...)
	}
	return rs, nil
}

func invalid(pe *ParseError) error {
	return errs.Wrap(errs.ErrCodeInvalidRule, pe, "malformed rule")
}

func splitLines(input string) []string {
	if input == "" {
		return nil
	}
	lines := strings.Split(input, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

// parseLine reads one rule left to right without backtracking.
func parseLine(line string, n int) (Rule, *ParseError) {
	l := &lexer{src: line, line: n}

	subject, pe := l.entity()
	if pe != nil {
		return Rule{}, pe
	}
	if !l.accept(separator) {
		return Rule{}, l.fail("missing separator %q", strings.TrimSpace(separator))
	}

	var constraints []Constraint
	if !l.accept(noOtherBags) {
		for {
			c, pe := l.constraint()
			if pe != nil {
				return Rule{}, pe
			}
			constraints = append(constraints, c)
			if !l.accept(", ") {
				break
			}
		}
	}

	if !l.accept(".") {
		return Rule{}, l.fail("expected terminating '.'")
	}
	if l.pos != len(l.src) {
		return Rule{}, l.fail("unexpected trailing text")
	}
	return Rule{Subject: subject, Constraints: constraints}, nil
}

type lexer struct {
	src  string
	pos  int
	line int
}

func (l *lexer) rest() string { return l.src[l.pos:] }

func (l *lexer) fail(format string, args ...any) *ParseError {
	return &ParseError{
		Line:   l.line,
		Column: l.pos + 1,
		Text:   l.src,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (l *lexer) accept(lit string) bool {
	if strings.HasPrefix(l.rest(), lit) {
		l.pos += len(lit)
		return true
	}
	return false
}

// word consumes a token up to the next space or the end of the line.
func (l *lexer) word(what string) (string, *ParseError) {
	rest := l.rest()
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	tok := rest[:end]
	if tok == "" {
		return "", l.fail("expected %s", what)
	}
	if strings.ContainsAny(tok, ",.") {
		return "", l.fail("invalid %s %q", what, tok)
	}
	l.pos += end
	return tok, nil
}

// entity consumes "<adjective> <color> bag" with an optional plural "s".
func (l *lexer) entity() (Entity, *ParseError) {
	adj, pe := l.word("adjective")
	if pe != nil {
		return Entity{}, pe
	}
	if !l.accept(" ") {
		return Entity{}, l.fail("expected color after %q", adj)
	}
	color, pe := l.word("color")
	if pe != nil {
		return Entity{}, pe
	}
	if !l.accept(" bag") {
		return Entity{}, l.fail("expected \"bag\" or \"bags\" after %q", adj+" "+color)
	}
	l.accept("s")
	return Entity{Adjective: adj, Color: color}, nil
}

// constraint consumes "<quantity> <adjective> <color> bag[s]".
func (l *lexer) constraint() (Constraint, *ParseError) {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	digits := l.src[start:l.pos]
	if digits == "" {
		return Constraint{}, l.fail("expected quantity")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		l.pos = start
		return Constraint{}, l.fail("quantity %q out of range", digits)
	}
	if n <= 0 {
		l.pos = start
		return Constraint{}, l.fail("quantity must be positive, got %d", n)
	}
	if !l.accept(" ") {
		return Constraint{}, l.fail("expected space after quantity")
	}
	e, pe := l.entity()
	if pe != nil {
		return Constraint{}, pe
	}
	return Constraint{Quantity: n, Entity: e}, nil
}
