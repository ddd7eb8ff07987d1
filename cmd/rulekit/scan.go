package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rulekit/rulekit/internal/grammarfile"
)

var (
	scanRule  string
	scanInput string
)

var scanCmd = &cobra.Command{
	Use:   "scan <grammar.yaml> [file]",
	Short: "Scan a file, or the standard input, with a grammar file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := grammarfile.Load(args[0])
		if err != nil {
			return err
		}
		g, err := f.Build(logger)
		if err != nil {
			return err
		}

		input, err := readInput(cmd, args[1:])
		if err != nil {
			return err
		}

		rule := scanRule
		if rule == "" {
			rule = f.Root()
		}
		logger.Debug("scanning", zap.String("rule", rule), zap.Int("bytes", len(input)))

		nodes, err := g.ScanRule(rule, input)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), formatScanError(input, err))
			return errReported
		}
		for _, n := range nodes {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if scanInput != "" {
		return scanInput, nil
	}
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func init() {
	scanCmd.Flags().StringVarP(&scanRule, "rule", "r", "", "Rule to start from instead of the grammar's start rule")
	scanCmd.Flags().StringVarP(&scanInput, "input", "i", "", "Text to scan instead of a file")
}
