package rules

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/bagrules/pkg/errors"
)

const sample = `light red bags contain 1 bright white bag, 2 muted yellow bags.
bright white bags contain 1 shiny gold bag.
muted yellow bags contain 2 shiny gold bags, 9 faded blue bags.
shiny gold bags contain no other bags.
faded blue bags contain no other bags.
`

func TestParseRule(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Rule
	}{
		{
			name: "two constraints",
			line: "light red bags contain 1 bright white bag, 2 muted yellow bags.",
			want: Rule{
				Subject: MustEntity("light red"),
				Constraints: []Constraint{
					{Quantity: 1, Entity: MustEntity("bright white")},
					{Quantity: 2, Entity: MustEntity("muted yellow")},
				},
			},
		},
		{
			name: "single constraint",
			line: "bright white bags contain 1 shiny gold bag.",
			want: Rule{
				Subject:     MustEntity("bright white"),
				Constraints: []Constraint{{Quantity: 1, Entity: MustEntity("shiny gold")}},
			},
		},
		{
			name: "no other bags",
			line: "faded blue bags contain no other bags.",
			want: Rule{Subject: MustEntity("faded blue")},
		},
		{
			name: "suffix does not change meaning",
			line: "dotted black bag contain 1 faded blue bags, 3 dark olive bag.",
			want: Rule{
				Subject: MustEntity("dotted black"),
				Constraints: []Constraint{
					{Quantity: 1, Entity: MustEntity("faded blue")},
					{Quantity: 3, Entity: MustEntity("dark olive")},
				},
			},
		},
		{
			name: "multi-digit quantity",
			line: "vibrant plum bags contain 12 faded blue bags.",
			want: Rule{
				Subject:     MustEntity("vibrant plum"),
				Constraints: []Constraint{{Quantity: 12, Entity: MustEntity("faded blue")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRule(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRuleErrors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"empty", "", "expected adjective"},
		{"missing separator", "light red bags hold 1 bright white bag.", "missing separator"},
		{"non-numeric quantity", "light red bags contain two bright white bags.", "expected quantity"},
		{"zero quantity", "light red bags contain 0 bright white bags.", "must be positive"},
		{"wrong suffix", "light red bags contain 1 bright white box.", "expected \"bag\""},
		{"corrupt plural", "light red bags contain 1 bright white bagz.", "terminating '.'"},
		{"missing period", "light red bags contain no other bags", "terminating '.'"},
		{"trailing text", "light red bags contain no other bags. extra", "trailing text"},
		{"one-word subject", "red bags contain no other bags.", "expected \"bag\""},
		{"dangling comma", "light red bags contain 1 bright white bag, .", "expected quantity"},
		{"huge quantity", "light red bags contain 99999999999999999999 bright white bags.", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.line)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidRule), "code = %v", errs.GetCode(err))

			var pe *ParseError
			require.True(t, stderrors.As(err, &pe))
			assert.Contains(t, pe.Reason, tt.reason)
			assert.Equal(t, tt.line, pe.Text)
			assert.Zero(t, pe.Line)
		})
	}
}

func TestParse(t *testing.T) {
	rs, err := Parse(sample)
	require.NoError(t, err)
	require.Len(t, rs, 5)

	assert.Equal(t, MustEntity("light red"), rs[0].Subject)
	assert.Equal(t, MustEntity("faded blue"), rs[4].Subject)
	assert.True(t, rs[3].Empty())
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n", "\r\n\n"} {
		rs, err := Parse(in)
		require.NoError(t, err)
		assert.Empty(t, rs)
	}
}

func TestParseCRLF(t *testing.T) {
	rs, err := Parse(strings.ReplaceAll(sample, "\n", "\r\n"))
	require.NoError(t, err)
	assert.Len(t, rs, 5)
}

func TestParseReportsLine(t *testing.T) {
	input := sample + "shiny gold bags contain some bags.\n"
	rs, err := Parse(input)
	require.Error(t, err)
	assert.Nil(t, rs, "no partial rule set on failure")

	var pe *ParseError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, 6, pe.Line)
	assert.Contains(t, err.Error(), "line 6")
}

func TestParseConcurrentMatchesSequential(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "shade%d hue bags contain %d shade%d hue bags, 2 faded blue bags.\n", i, i+1, i+1)
	}
	b.WriteString("faded blue bags contain no other bags.\n")

	want, err := Parse(b.String())
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := ParseWithOptions(context.Background(), b.String(), Options{Workers: workers})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseConcurrentReportsFirstError(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "faded blue bags contain no other bags."
	}
	lines[40] = "broken"
	lines[90] = "also broken"

	_, err := ParseWithOptions(context.Background(), strings.Join(lines, "\n"), Options{Workers: 4})
	require.Error(t, err)

	var pe *ParseError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, 41, pe.Line)
}

func TestParseConcurrentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseWithOptions(ctx, sample+sample, Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseReader(t *testing.T) {
	rs, err := ParseReader(context.Background(), strings.NewReader(sample), Options{})
	require.NoError(t, err)
	assert.Len(t, rs, 5)
}
