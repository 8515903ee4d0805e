package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Durai69/LLS-Survey/api/userapi"
	"github.com/Durai69/LLS-Survey/cmd/llssurvey/config"
)

var (
	tokenUser       string
	tokenDepartment uint
	tokenName       string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage session tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a session token for development and testing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf := config.Get().API.User
		if conf.JWTSecret == "" {
			return errors.New("no jwt secret configured")
		}
		if _, err := backends.Departments.Get(tokenDepartment); err != nil {
			return err
		}
		tokens := userapi.NewTokens([]byte(conf.JWTSecret), conf.Issuer, conf.TokenLifetime.Duration())
		token, err := tokens.Issue(tokenUser, tokenDepartment, tokenName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenUser, "user", "", "the user id")
	tokenIssueCmd.Flags().UintVar(&tokenDepartment, "department", 0, "the department id of the user")
	tokenIssueCmd.Flags().StringVar(&tokenName, "name", "", "the display name of the user")
	_ = tokenIssueCmd.MarkFlagRequired("user")
	_ = tokenIssueCmd.MarkFlagRequired("department")
	tokenCmd.AddCommand(tokenIssueCmd)
}
