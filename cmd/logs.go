package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gatepass-client/internal/storage"
)

var (
	logsLimit  int
	logsType   string
	logsRemote bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent gate log entries",
	Long: `Show gate log entries from the local journal, or from the server
with --remote. Local entries include decisions made offline.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var logs []storage.GateLog
		var err error
		switch {
		case logsRemote:
			logs, err = gw.GateLogs(ctx)
		case logsType != "":
			logs, err = provider.ListGateLogsByType(ctx, logsType)
		default:
			logs, err = provider.ListGateLogs(ctx, logsLimit)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read gate logs: %v\n", err)
			os.Exit(1)
		}

		if len(logs) == 0 {
			fmt.Println("No gate logs recorded")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tSTATUS\tGUARD\tNOTES")
		fmt.Fprintln(w, "----\t----\t------\t-----\t-----")
		for _, l := range logs {
			notes := l.Notes
			if notes == "" {
				notes = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				l.Timestamp.Format("2006-01-02 15:04:05"), l.Type, l.Status, l.GuardID, notes)
		}
		w.Flush()
		fmt.Printf("\nTotal shown: %d\n", len(logs))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the server's dashboard statistics",
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := gw.DashboardStats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch stats: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Users\t%d\n", stats.TotalUsers)
		fmt.Fprintf(w, "Assets\t%d\n", stats.TotalAssets)
		fmt.Fprintf(w, "Vehicles\t%d\n", stats.TotalVehicles)
		fmt.Fprintf(w, "Logs today\t%d\n", stats.TodayLogs)
		fmt.Fprintf(w, "Active guards\t%d\n", stats.ActiveGuards)
		fmt.Fprintf(w, "Day scholars in\t%d\n", stats.DayScholarsIn)
		w.Flush()
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "l", 50, "maximum entries to show")
	logsCmd.Flags().StringVarP(&logsType, "type", "t", "", "filter by log type")
	logsCmd.Flags().BoolVar(&logsRemote, "remote", false, "fetch logs from the server instead of the local journal")
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(statsCmd)
}
