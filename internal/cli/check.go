package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bagrules/pkg/dag"
	errs "github.com/matzehuels/bagrules/pkg/errors"
)

// checkCommand creates the "check" command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate rules and report graph statistics",
		Long: `Parse the rules, build the containment graph and verify that no bag
can eventually contain itself. Exits non-zero on malformed rules or cycles.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, name, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			g, stats, err := runner.Load(cmd.Context(), input, dag.Forward, c.cfg.Workers)
			if err != nil {
				return err
			}

			if cycle := dag.FindCycle(g); cycle != nil {
				names := make([]string, len(cycle))
				for i, id := range cycle {
					e, _ := g.Entity(id)
					names[i] = e.String()
				}
				path := strings.Join(names, " -> ")
				if interactive() {
					printError("cycle: %s", path)
				}
				return errs.New(errs.ErrCodeCyclicContainment, "cyclic containment: %s", path)
			}

			if !interactive() {
				printPlain("ok %d rules %d bags %d edges", stats.Rules, stats.NodeCount, stats.EdgeCount)
				return nil
			}

			printSuccess("%s is well formed", name)
			printKeyValue("rules", strconv.Itoa(stats.Rules))
			printKeyValue("bags", strconv.Itoa(stats.NodeCount))
			printKeyValue("edges", strconv.Itoa(stats.EdgeCount))
			printKeyValue("outermost", strconv.Itoa(len(g.Sources())))
			printKeyValue("empty", strconv.Itoa(len(g.Sinks())))
			for _, d := range g.Duplicates() {
				printWarning("%s is defined more than once; the last rule is used", d)
			}
			return nil
		},
	}
}
