package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRulesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules and whether the current settings enable them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := root.catalog
			res, err := catalog.Resolve(root.ruleSet())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENABLED\tPRIORITY\tOUTPUT")
			for _, r := range catalog.Rules() {
				priority, enabled := res.Priority(r.Name())
				if !enabled {
					priority = r.Priority()
					if p, ok := root.settings.Priority[r.Name()]; ok {
						priority = p
					}
				}
				output := "required"
				if !r.RequiresOutput() {
					output = "optional"
				}
				fmt.Fprintf(tw, "%s\t%t\t%d\t%s\n", r.Name(), enabled, priority, output)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, name := range res.Unknown {
				root.logger.Warn("unknown rule in settings", zap.String("rule", name))
			}
			return nil
		},
	}
}
