package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"gatepass-client/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local guard station API",
	Long: `Serve the HTTP API the gate UI talks to. Binds to the configured
listen address and keeps working against the local cache when the
remote server is unreachable.`,
	Run: func(cmd *cobra.Command, args []string) {
		if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
			gin.SetMode(gin.ReleaseMode)
		}

		server := httpapi.NewServer(sessions, engine, coord, provider, gw)
		if err := server.Run(cfg.ListenAddr); err != nil {
			slog.Error("Guard station API stopped", "error", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
