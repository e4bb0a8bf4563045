package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued actions against the server",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := coord.Drain(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Synced %d action(s), %d rejected, %d remaining\n",
			result.Succeeded, result.Failed, result.Remaining)
		if result.Remaining > 0 {
			os.Exit(2)
		}
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queued actions awaiting sync",
	Run: func(cmd *cobra.Command, args []string) {
		actions, err := coord.Pending(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read queue: %v\n", err)
			os.Exit(1)
		}

		if len(actions) == 0 {
			fmt.Println("Queue is empty")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tCREATED")
		fmt.Fprintln(w, "--\t----\t-------")
		for _, a := range actions {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Kind, a.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		fmt.Printf("\nTotal queued: %d\n", len(actions))
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Refresh the local cache from the server",
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := coord.Pull(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Pull failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Pulled %d asset(s), %d vehicle(s), %d day scholar(s)\n",
			stats.Assets, stats.Vehicles, stats.Scholars)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(pullCmd)
}
