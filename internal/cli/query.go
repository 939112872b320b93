package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bagrules/pkg/pipeline"
	"github.com/matzehuels/bagrules/pkg/query"
)

type queryFlags struct {
	target  string
	list    bool
	json    bool
	refresh bool
}

// ancestorsCommand creates the "ancestors" command.
func (c *CLI) ancestorsCommand() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "ancestors [file]",
		Short: "Count bag colors that can eventually contain the target",
		Long: `Count bag colors that can eventually contain the target bag, directly or
through any chain of other bags. Reads rules from file, or stdin when file is
omitted or "-".`,
		Example: `  bagrules ancestors rules.txt
  bagrules ancestors rules.txt --target "dark olive" --list
  cat rules.txt | bagrules ancestors --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, args, query.KindAncestors, flags)
		},
	}
	addQueryFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.list, "list", false, "also list the containing bag colors")
	return cmd
}

// contentsCommand creates the "contents" command.
func (c *CLI) contentsCommand() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "contents [file]",
		Short: "Count the bags nested inside the target",
		Long: `Count the individual bags required inside the target bag, multiplying
quantities along every chain. Reads rules from file, or stdin when file is
omitted or "-".`,
		Example: `  bagrules contents rules.txt
  bagrules contents - --target "vibrant plum" < rules.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, args, query.KindContents, flags)
		},
	}
	addQueryFlags(cmd, &flags)
	return cmd
}

func addQueryFlags(cmd *cobra.Command, flags *queryFlags) {
	cmd.Flags().StringVarP(&flags.target, "target", "t", "", `target bag, e.g. "shiny gold" (default from config)`)
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
}

func (c *CLI) runQuery(cmd *cobra.Command, args []string, kind query.Kind, flags queryFlags) error {
	input, name, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Debug("running query", "query", kind, "input", name)
	res, err := runner.Execute(cmd.Context(), pipeline.Options{
		Input:    input,
		Query:    kind,
		Target:   c.targetOr(flags.target),
		List:     flags.list,
		Workers:  c.cfg.Workers,
		Refresh:  flags.refresh,
		CacheTTL: c.cfg.CacheTTL,
	})
	if err != nil {
		return err
	}

	switch {
	case flags.json:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case !interactive():
		printPlain("%d", res.Value)
		for _, a := range res.Ancestors {
			printPlain("%s", a)
		}
	default:
		printQueryResult(res)
	}
	return nil
}

func printQueryResult(res *pipeline.Result) {
	printSuccess("%s", res.Summary())
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	for _, a := range res.Ancestors {
		printDetail("%s", a)
	}
	for _, d := range res.Duplicates {
		printWarning("%s is defined more than once; the last rule was used", d)
	}
	printKeyValue("result", StyleNumber.Render(strconv.FormatUint(res.Value, 10)))
}
