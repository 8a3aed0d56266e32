package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse-mcp/internal/config"
	"pulse-mcp/internal/logging"
	"pulse-mcp/internal/mcp"
	"pulse-mcp/internal/metrics"
	"pulse-mcp/internal/performance"
	"pulse-mcp/internal/tracker"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	httpAddr string
	cfg      *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "pulse-mcp",
	Short: "Project performance analytics MCP server",
	Long: `pulse-mcp reads projects and tasks from the project-management backend and
derives completion, schedule efficiency, risk and utilization metrics, portfolio
KPIs, chart data and recommendations. It serves them as MCP tools over stdio or
streamable HTTP, and as a CLI report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			log.Warn().Err(err).Msg("File logging disabled")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("pulse-mcp starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, closeStore := newService(ctx, cfg)
		defer closeStore()
		defer svc.Wait()

		server := mcp.NewServer(mcp.Config{
			Service:             svc,
			EnableMermaidCharts: cfg.EnableMermaidCharts,
			Version:             Version,
		})

		addr := httpAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		if addr != "" {
			return serveHTTP(ctx, server, addr)
		}

		log.Info().Msg("MCP server starting stdio transport")
		if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func serveHTTP(ctx context.Context, server *sdkmcp.Server, addr string) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.Handle("/metrics", metrics.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": Version})
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("MCP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

// newService wires the tracker client and snapshot store from configuration.
// The returned func releases the store.
func newService(ctx context.Context, cfg *config.AppConfig) (*performance.Service, func()) {
	var store performance.Store = performance.NewFileStore(cfg.CacheDir)
	closeStore := func() {}

	if cfg.RedisURL != "" {
		redisStore, err := performance.NewRedisStore(ctx, cfg.RedisURL, 24*time.Hour)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, keeping snapshots on disk")
		} else {
			store = redisStore
			closeStore = func() { _ = redisStore.Close() }
			log.Info().Msg("Sharing snapshots through Redis")
		}
	}

	svc := performance.NewService(performance.Options{
		Client:            newTrackerClient(cfg),
		BaseURL:           cfg.Tracker.BaseURL,
		TTL:               cfg.CacheTTL,
		Store:             store,
		PersistLateStatus: cfg.PersistLateStatus,
	})
	return svc, closeStore
}

// newTrackerClient returns nil without a backend URL; every request then
// falls back to cached or default data.
func newTrackerClient(cfg *config.AppConfig) tracker.Client {
	if cfg.Tracker.BaseURL == "" {
		return nil
	}
	return tracker.NewClient(cfg.Tracker)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
}
