package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "rulekit",
	Short:         "rulekit - scan text with grammars written as rule expressions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log what the grammar compiler does")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(clausesCmd)
	rootCmd.AddCommand(calcCmd)
}
