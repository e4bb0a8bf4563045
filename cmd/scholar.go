package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gatepass-client/internal/gateway"
)

var scholarsCmd = &cobra.Command{
	Use:   "scholars",
	Short: "Manage day scholar in/out status",
}

var listScholarsCmd = &cobra.Command{
	Use:   "list",
	Short: "List day scholars and their current status",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		scholars, err := gw.DayScholars(ctx)
		if err != nil {
			if !gateway.IsConnectivity(err) {
				fmt.Fprintf(os.Stderr, "Failed to list day scholars: %v\n", err)
				os.Exit(1)
			}
			// Server unreachable, show the cached roster.
			users, err := provider.ListUsersByRole(ctx, "day_scholar")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read cached roster: %v\n", err)
				os.Exit(1)
			}
			scholars = scholars[:0]
			for _, u := range users {
				status := u.ScholarStatus
				if status == "" {
					status = "out"
				}
				scholars = append(scholars, gateway.DayScholar{
					UserID: u.ID,
					Name:   u.FullName(),
					Status: status,
				})
			}
			fmt.Println("Server unreachable, showing cached roster")
		}

		if len(scholars) == 0 {
			fmt.Println("No day scholars found")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER ID\tNAME\tSTATUS")
		fmt.Fprintln(w, "-------\t----\t------")
		for _, s := range scholars {
			name := s.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.UserID, name, s.Status)
		}
		w.Flush()
		fmt.Printf("\nTotal day scholars: %d\n", len(scholars))
	},
}

var toggleScholarCmd = &cobra.Command{
	Use:   "toggle <user-id>",
	Short: "Flip a day scholar between in and out",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := engine.ToggleDayScholar(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Toggle failed: %v\n", err)
			os.Exit(1)
		}

		mode := ""
		if result.Offline {
			mode = " (queued for sync)"
		}
		name := result.Name
		if name == "" {
			name = result.UserID
		}
		fmt.Printf("%s is now %s%s\n", name, result.Status, mode)
	},
}

func init() {
	rootCmd.AddCommand(scholarsCmd)
	scholarsCmd.AddCommand(listScholarsCmd)
	scholarsCmd.AddCommand(toggleScholarCmd)
}
