package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/erazemk/shramba/internal/dedup"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

var scanAccount int64

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Inspect duplicate item candidates",
}

var duplicatesScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Re-check every item of an account for duplicates",
	Long: `Run the matcher over every active item of an account and record a pending
candidate for each pair at or above the candidate threshold. Dismissed pairs
are not suggested again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		account, err := store.GetAccount(ctx, database, scanAccount)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("account %d not found", scanAccount)
		}

		engine, err := dedup.New(database, cfg.Dedup)
		if err != nil {
			return err
		}

		report, err := engine.ScanAccount(ctx, account.ID)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("=== Duplicate scan: "+account.Name+" ==="))
		fmt.Printf("Items checked:  %d\n", report.Items)
		fmt.Printf("New candidates: %s\n", color.GreenString("%d", report.Created))
		fmt.Println()

		if len(report.Candidates) == 0 {
			fmt.Println(color.HiBlackString("  No pending duplicates"))
			return nil
		}
		for _, c := range report.Candidates {
			printCandidate(c)
		}
		fmt.Println()
		return nil
	},
}

// printCandidate prints one candidate, coloured by confidence.
func printCandidate(c model.DuplicateCandidate) {
	conf := color.YellowString("%.2f", c.Confidence)
	if c.Confidence >= 0.95 {
		conf = color.RedString("%.2f", c.Confidence)
	}
	fmt.Printf("  %s  #%d %s  <->  #%d %s  %s\n", conf,
		c.ItemID, c.ItemName, c.MatchedItemID, c.MatchedItemName,
		color.HiBlackString("[%s]", strings.Join(c.Signals, ", ")))
}

func init() {
	duplicatesScanCmd.Flags().Int64Var(&scanAccount, "account", 1, "account id")
	duplicatesCmd.AddCommand(duplicatesScanCmd)
	rootCmd.AddCommand(duplicatesCmd)
}
