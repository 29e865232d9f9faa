// Command versed runs the Verse session server: one TCP listener
// accepting sessions, a tick loop per session draining/filling its
// queues, and a Prometheus metrics endpoint. Replaces the teacher's
// core/main.go (UDP RakNet listener + hardcoded gamemode) with a
// cobra root command and viper-bound configuration.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/versenet/verse/internal/config"
	"github.com/versenet/verse/internal/server"
	"github.com/versenet/verse/pkg/logging"
)

// Version is stamped at build time via -ldflags; it defaults to "dev"
// for local builds.
var Version = "dev"

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "versed",
		Short: "Verse session server",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML/TOML config file")
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var (
		listenAddr  string
		metricsAddr string
		maxSessions int
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start accepting sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("max-sessions") {
				cfg.MaxSessions = maxSessions
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", "address to accept sessions on (default 0.0.0.0:7780)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on (default 127.0.0.1:9780)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "reject new sessions beyond this count (0 = unlimited)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, or error")
	return cmd
}

func run(cfg config.Config) error {
	logging.SetLevel(cfg.LogLevel)
	logging.Banner("versed", Version)
	log := logging.For("main")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Infow("metrics listening", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Warnw("metrics server stopped", "error", err)
		}
	}()

	srv := server.New(server.Config{
		ListenAddr:       cfg.ListenAddr,
		MaxSessions:      cfg.MaxSessions,
		MaxOutboundBytes: cfg.MaxOutboundBytes,
		TickInterval:     cfg.TickInterval,
		IdleTimeout:      cfg.IdleTimeout,
		SendBufferSize:   cfg.SendBufferSize,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case sig := <-sigCh:
		log.Infow("shutting down", "signal", sig)
		srv.Stop()
		return nil
	case err := <-errCh:
		if err == server.ErrStopped {
			return nil
		}
		return err
	}
}
