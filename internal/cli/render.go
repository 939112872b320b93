package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bagrules/pkg/dag"
	errs "github.com/matzehuels/bagrules/pkg/errors"
	"github.com/matzehuels/bagrules/pkg/render/nodelink"
	"github.com/matzehuels/bagrules/pkg/rules"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type renderFlags struct {
	direction string
	format    string
	output    string
	highlight string
	detailed  bool
}

// renderCommand creates the "render" command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the containment graph as DOT or SVG",
		Long: `Render the containment graph as a node-link diagram. Edges point from
container to content (forward) or from content to container (reverse) and
carry the required quantity.`,
		Example: `  bagrules render rules.txt -o bags.svg
  bagrules render rules.txt --format dot --direction reverse | dot -Tpng > bags.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.direction, "direction", "forward", "edge direction: forward or reverse")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: dot or svg (default from -o extension, else dot)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&flags.highlight, "highlight", "", "bag to highlight (default the configured target)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show in/out degree in labels")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, flags renderFlags) error {
	dir, err := dag.ParseDirection(flags.direction)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid --direction")
	}
	format, err := renderFormat(flags.format, flags.output)
	if err != nil {
		return err
	}

	input, _, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	g, _, err := runner.Load(cmd.Context(), input, dir, c.cfg.Workers)
	if err != nil {
		return err
	}

	opts := nodelink.Options{Detailed: flags.detailed}
	if e, err := rules.ParseEntity(c.targetOr(flags.highlight)); err == nil {
		opts.Highlight = e
	}
	out := []byte(nodelink.ToDOT(g, opts))
	if format == formatSVG {
		if out, err = nodelink.RenderSVG(cmd.Context(), string(out)); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "render svg")
		}
	}

	if flags.output == "" {
		_, err := stdout.Write(out)
		return err
	}
	if err := os.WriteFile(flags.output, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	prog.done(fmt.Sprintf("Rendered %d bags", g.NodeCount()))
	printSuccess("Rendered %s graph", dir)
	printFile(flags.output)
	return nil
}

// renderFormat picks the output format from the flag, falling back to the
// output file extension.
func renderFormat(flag, output string) (string, error) {
	format := flag
	if format == "" {
		switch ext := extOf(output); ext {
		case formatSVG, formatDOT:
			format = ext
		default:
			format = formatDOT
		}
	}
	if format != formatDOT && format != formatSVG {
		return "", errs.New(errs.ErrCodeInvalidFormat, "invalid format %q (must be dot or svg)", format)
	}
	return format, nil
}

func extOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
