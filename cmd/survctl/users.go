package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage admin users",
}

var displayName string

var usersAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Add an admin user",
	Long:  "Add an admin user. Once the first user exists, the admin api requires authentication.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := backends.Users.Create(args[0], args[1], displayName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added admin user %q\n", u.Username)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		users, err := backends.Users.List()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tDISPLAY NAME\tDISABLED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%t\n", u.Username, u.DisplayName, u.Disabled)
		}
		return w.Flush()
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&displayName, "display-name", "", "the display name of the user")
	usersCmd.AddCommand(usersAddCmd, usersListCmd)
}
