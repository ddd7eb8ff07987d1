package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rulekit/rulekit"
)

var clausesCmd = &cobra.Command{
	Use:   "clauses <expr>",
	Short: "Print the clause tree of a rule expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sentence, err := rulekit.ParseExpr(args[0])
		if err != nil {
			return err
		}
		if color.NoColor {
			fmt.Fprintln(cmd.OutOrStdout(), rulekit.PrettyString(sentence))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), rulekit.HighlightPrettyString(sentence))
		}
		return nil
	},
}
