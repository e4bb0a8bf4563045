package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gatepass-client/internal/verify"
)

var scanFollow bool

var scanCmd = &cobra.Command{
	Use:   "scan [qr-payload]",
	Short: "Verify a scanned QR payload",
	Long: `Verify a scanned QR code payload. Pass the raw payload text as an
argument, pipe it on stdin, or use --follow to verify payloads line by
line as a connected scanner emits them. Prints the verdict and exits
non-zero for anything other than valid or pending.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		session := scanner.Start()
		defer session.Close()

		if scanFollow {
			followScans(ctx, session)
			return
		}

		raw := ""
		if len(args) > 0 {
			raw = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read payload from stdin: %v\n", err)
				os.Exit(1)
			}
			raw = strings.TrimSpace(string(data))
		}

		decision, err := session.Submit(ctx, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Verification failed: %v\n", err)
			os.Exit(1)
		}

		printDecision(decision)
		if decision.Verdict != verify.VerdictValid && decision.Verdict != verify.VerdictPending {
			os.Exit(2)
		}
	},
}

// followScans verifies one payload per input line until EOF. Hardware
// scanners in keyboard-wedge mode emit exactly that.
func followScans(ctx context.Context, session *verify.ScanSession) {
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		raw := strings.TrimSpace(in.Text())
		if raw == "" {
			continue
		}

		decision, err := session.Submit(ctx, raw)
		if errors.Is(err, verify.ErrSessionClosed) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Verification failed: %v\n", err)
			continue
		}
		printDecision(decision)
		fmt.Println()
	}
}

func printDecision(d *verify.Decision) {
	mode := "online"
	if d.Offline {
		mode = "offline"
	}
	fmt.Printf("Verdict: %s (%s)\n", strings.ToUpper(string(d.Verdict)), mode)
	if d.Owner != "" {
		fmt.Printf("Owner:   %s\n", d.Owner)
	}
	if d.Message != "" {
		fmt.Printf("Note:    %s\n", d.Message)
	}
}

func init() {
	scanCmd.Flags().BoolVarP(&scanFollow, "follow", "f", false, "verify payloads line by line from stdin")
	rootCmd.AddCommand(scanCmd)
}
