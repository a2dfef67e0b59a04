package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmmoran/cxxbind/pkg/action/analyze"
)

func init() {
	rootCmd.AddCommand(NewAnalyzeCommand())
}

func NewAnalyzeCommand() *cobra.Command {
	// analyzeCmd represents the cxxbind analyze command
	var analyzeCmd = &cobra.Command{
		Use:     "analyze",
		Short:   "analyze headers",
		Long:    "Parse the headers below the input directory and write the class decision report",
		PreRunE: bindOptionFlags,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			r, outFile, err := analyze.Generate(c.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "%s\nreport written to %s\n", r.Summary, outFile)
			return err
		},
	}
	addOptionFlags(analyzeCmd.Flags())

	return analyzeCmd
}
