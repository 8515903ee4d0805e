package main

import (
	"github.com/fatih/structs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Durai69/LLS-Survey/engine"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Inspect the permission matrix",
}

var matrixSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the counts of the stored permission matrix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := backends.Permissions.Load()
		if err != nil {
			return err
		}
		n, err := backends.Departments.Count()
		if err != nil {
			return err
		}
		summary := engine.Summarize(snap.Edges, int(n))
		fields := log.Fields(structs.Map(summary))
		fields["version"] = snap.Version
		if !snap.Window.IsZero() {
			fields["window"] = snap.Window.String()
		}
		logger := log.New()
		logger.SetOutput(cmd.OutOrStdout())
		logger.WithFields(fields).Info("permission matrix")
		return nil
	},
}

func init() {
	matrixCmd.AddCommand(matrixSummaryCmd)
}
