package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gatepass-client/internal/config"
	"gatepass-client/internal/qr"
)

var qrOutput string

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Render QR badges from cached records",
}

var qrAssetCmd = &cobra.Command{
	Use:   "asset <asset-id>",
	Short: "Render a cached asset's QR badge as PNG",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asset, err := provider.GetAsset(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read asset: %v\n", err)
			os.Exit(1)
		}
		if asset == nil {
			fmt.Fprintf(os.Stderr, "Asset %s not in local cache\n", args[0])
			os.Exit(1)
		}

		payload := qr.New(qr.KindAsset, asset.ID, asset.UserID, asset.VerificationHash)
		writeBadge(payload, args[0])
	},
}

var qrVehicleCmd = &cobra.Command{
	Use:   "vehicle <vehicle-id>",
	Short: "Render a cached vehicle's QR badge as PNG",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vehicle, err := provider.GetVehicle(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read vehicle: %v\n", err)
			os.Exit(1)
		}
		if vehicle == nil {
			fmt.Fprintf(os.Stderr, "Vehicle %s not in local cache\n", args[0])
			os.Exit(1)
		}

		payload := qr.New(qr.KindVehicle, vehicle.ID, vehicle.UserID, vehicle.VerificationHash)
		writeBadge(payload, args[0])
	},
}

func writeBadge(payload qr.Payload, id string) {
	png, err := payload.Image(config.QR_IMAGE_SIZE)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render QR badge: %v\n", err)
		os.Exit(1)
	}

	out := qrOutput
	if out == "" {
		out = id + ".png"
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", out)
}

func init() {
	qrCmd.PersistentFlags().StringVarP(&qrOutput, "output", "o", "", "output PNG path (default <id>.png)")

	rootCmd.AddCommand(qrCmd)
	qrCmd.AddCommand(qrAssetCmd)
	qrCmd.AddCommand(qrVehicleCmd)
}
