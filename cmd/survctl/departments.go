package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "Manage departments",
}

var departmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all departments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := backends.Departments.List()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, d := range list {
			fmt.Fprintf(w, "%d\t%s\n", d.ID, d.Name)
		}
		return w.Flush()
	},
}

var departmentsAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add departments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			d, err := backends.Departments.Create(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added department %q with id %d\n", d.Name, d.ID)
		}
		return nil
	},
}

func init() {
	departmentsCmd.AddCommand(departmentsListCmd, departmentsAddCmd)
}
