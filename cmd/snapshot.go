package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cmmoran/cxxbind/pkg/action/snapshot"
)

func init() {
	rootCmd.AddCommand(NewSnapshotCommand())
	rootCmd.AddCommand(NewDiffCommand())
}

func NewSnapshotCommand() *cobra.Command {
	var manifestPath, name, version string

	var snapshotCmd = &cobra.Command{
		Use:     "snapshot",
		Short:   "record an analysis snapshot",
		Long:    "Analyze the headers and record the report in the snapshot manifest",
		PreRunE: bindOptionFlags,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			s, err := snapshot.Generate(c.Context(), opts, manifestPath, name, version)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "snapshot %s %s (%d classes) written to %s, run %s\n",
				s.Name, s.Version, s.Classes, s.File, s.RunID)
			return err
		},
	}
	addOptionFlags(snapshotCmd.Flags())
	snapshotCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "cxxbind-manifest.yaml", "snapshot manifest file")
	snapshotCmd.Flags().StringVarP(&name, "name", "n", "bindings", "snapshot name")
	snapshotCmd.Flags().StringVarP(&version, "version", "v", "", "snapshot version")
	_ = snapshotCmd.MarkFlagRequired("version")

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "list recorded snapshots",
		RunE: func(c *cobra.Command, args []string) error {
			m, err := snapshot.List(manifestPath)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tVERSION\tCLASSES\tTAKEN\tFILE")
			for _, s := range m.Snapshots {
				marker := ""
				switch s.Version {
				case m.CurrentVersion:
					marker = " (current)"
				case m.PreviousVersion:
					marker = " (previous)"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s%s\t%d\t%s\t%s\n", s.Name, s.Version, marker, s.Classes, s.TakenAt.Format("2006-01-02 15:04:05"), s.File)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "cxxbind-manifest.yaml", "snapshot manifest file")
	snapshotCmd.AddCommand(listCmd)

	return snapshotCmd
}

func NewDiffCommand() *cobra.Command {
	var manifestPath string

	var diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "diff the two latest snapshots",
		Long:  "Compare the current snapshot report with the previous one",
		RunE: func(c *cobra.Command, args []string) error {
			diff, err := snapshot.DiffCurrentWithPrevious(manifestPath)
			if err != nil {
				return err
			}
			if diff == "" {
				diff = "no changes\n"
			}
			_, err = fmt.Fprint(c.OutOrStdout(), diff)
			return err
		},
	}
	diffCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "cxxbind-manifest.yaml", "snapshot manifest file")

	return diffCmd
}
