package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rulekit/rulekit/examples/calc"
)

var calcCmd = &cobra.Command{
	Use:   "calc <expr>...",
	Short: "Evaluate an arithmetic expression",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := calc.New()
		if err != nil {
			return err
		}
		expr := strings.Join(args, "")
		v, err := c.Eval(expr)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), formatScanError(expr, err))
			return errReported
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	},
}
