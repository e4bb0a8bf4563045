package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gatepass-client/internal/verify"
)

var entryNotes string

var vehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Log vehicle movement at the gate",
}

var vehicleEntryCmd = &cobra.Command{
	Use:   "entry <plate-number>",
	Short: "Log a vehicle arriving at the gate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		decision, err := engine.LogVehicleEntry(context.Background(), args[0], entryNotes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Entry logging failed: %v\n", err)
			os.Exit(1)
		}

		printDecision(decision)
		switch decision.Verdict {
		case verify.VerdictValid, verify.VerdictVisitor, verify.VerdictPending:
		default:
			os.Exit(2)
		}
	},
}

func init() {
	vehicleEntryCmd.Flags().StringVarP(&entryNotes, "notes", "n", "", "notes for the gate log")

	rootCmd.AddCommand(vehicleCmd)
	vehicleCmd.AddCommand(vehicleEntryCmd)
}
