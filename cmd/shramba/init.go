package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	initAccount string
	initUser    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new database with a first account",
	Long: `Create the database, its schema, a first account and that account's admin
user. The admin password is generated and printed once.

Example:
  shramba init --account "Bistro Nord" --user chef`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.DBPath); err == nil {
			return fmt.Errorf("database %s already exists", cfg.DBPath)
		}
		return initDatabase(context.Background(), initAccount, initUser)
	},
}

func init() {
	initCmd.Flags().StringVar(&initAccount, "account", "Restaurant", "account name")
	initCmd.Flags().StringVarP(&initUser, "user", "u", "Admin", "admin username")
	rootCmd.AddCommand(initCmd)
}
