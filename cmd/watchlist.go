package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the stolen plate watchlist",
}

var importWatchlistCmd = &cobra.Command{
	Use:   "import <csv-file-or-folder>",
	Short: "Import a stolen plate CSV export",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		info, err := os.Stat(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot read %s: %v\n", args[0], err)
			os.Exit(1)
		}

		var count int
		if info.IsDir() {
			count, err = watch.ImportFolder(ctx, args[0])
		} else {
			count, err = watch.ImportFile(ctx, args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d plate(s)\n", count)
	},
}

var checkWatchlistCmd = &cobra.Command{
	Use:   "check <plate-number>",
	Short: "Check a plate against the watchlist",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entry, err := watch.Check(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}
		if entry == nil {
			fmt.Println("Not on the watchlist")
			return
		}
		fmt.Printf("FLAGGED: %s", entry.PlateNumber)
		if entry.Reason != "" {
			fmt.Printf(" (%s)", entry.Reason)
		}
		fmt.Println()
		os.Exit(2)
	},
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(importWatchlistCmd)
	watchlistCmd.AddCommand(checkWatchlistCmd)
}
