package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/erazemk/shramba/internal/store"
)

var accountUser string

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage tenant accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an account with an admin user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		account, password, err := createAccount(context.Background(), database, args[0], accountUser)
		if err != nil {
			return err
		}
		printCredentials(account, accountUser, password)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		accounts, err := store.ListAccounts(context.Background(), database)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println(color.HiBlackString("No accounts"))
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		for _, a := range accounts {
			fmt.Printf("%s  %s  %s\n", cyan(fmt.Sprintf("%4d", a.ID)), a.Name,
				color.HiBlackString(a.CreatedAt.Format("2006-01-02")))
		}
		return nil
	},
}

func init() {
	accountAddCmd.Flags().StringVarP(&accountUser, "user", "u", "Admin", "admin username")
	accountCmd.AddCommand(accountAddCmd, accountListCmd)
	rootCmd.AddCommand(accountCmd)
}
