package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rulesCommand creates the "rules" command.
func (c *CLI) rulesCommand() *cobra.Command {
	var canonical bool
	cmd := &cobra.Command{
		Use:   "rules [file]",
		Short: "Parse and list containment rules",
		Long: `Parse the input and list every rule. With --canonical the rules are
printed back in normalized rule syntax, one per line.`,
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

			rs, err := runner.Parse(cmd.Context(), input, c.cfg.Workers)
			if err != nil {
				return err
			}

			if canonical || !interactive() {
				for _, r := range rs {
					if canonical {
						printPlain("%s", r)
					} else {
						fmt.Fprint(stdout, r.Describe())
					}
				}
				return nil
			}

			for _, r := range rs {
				fmt.Fprint(stdout, StyleTitle.Render(r.Subject.String())+StyleDim.Render(" bags contain:")+"\n")
				if r.Empty() {
					printDetail("no other bags")
					continue
				}
				for _, con := range r.Constraints {
					printDetail("%s", con)
				}
			}
			printInfo("%d rules from %s", len(rs), name)
			printNextStep("Count containers", "bagrules ancestors "+name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&canonical, "canonical", false, "print rules in normalized rule syntax")
	return cmd
}
