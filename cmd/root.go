package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gatepass-client/internal/alert"
	"gatepass-client/internal/config"
	"gatepass-client/internal/gateway"
	"gatepass-client/internal/session"
	"gatepass-client/internal/storage"
	syncpkg "gatepass-client/internal/sync"
	"gatepass-client/internal/verify"
	"gatepass-client/internal/watchlist"
)

var (
	cfgFile  string
	cfg      *config.Config
	provider storage.Provider
	gw       *gateway.Client
	sessions *session.Manager
	coord    *syncpkg.Coordinator
	watch    *watchlist.Importer
	engine   *verify.Engine
	scanner  *verify.Scanner
)

var rootCmd = &cobra.Command{
	Use:   "gatepass",
	Short: "University gate pass verification station",
	Long: `Gate-side verification client: scans asset and vehicle QR codes
against the campus gate pass service, keeps working from a local cache
when the network is down, and reconciles queued actions on sync.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadConfig(cfgFile)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}

		initLogger(cfg)

		provider = storage.NewProvider(&cfg.Storage)
		if provider == nil {
			slog.Error("Failed to initialize storage provider")
			os.Exit(1)
		}

		gw = gateway.New(cfg.APIBaseURL, time.Duration(cfg.RequestTimeout)*time.Second)
		sessions = session.NewManager(provider, gw)
		gw.SetTokenSource(sessions)

		coord = syncpkg.NewCoordinator(provider, gw)
		watch = watchlist.NewImporter(provider)

		engine = verify.NewEngine(gw, provider, coord, watch, cfg.Location)
		if cfg.Alert.Enabled() {
			engine.SetAlerter(alert.NewMailer(cfg.Alert))
		}
		scanner = verify.NewScanner(engine)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if provider != nil {
			provider.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(cfg *config.Config) {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		println("Invalid log level in config, defaulting to INFO")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./instance/config.yaml)")
}
