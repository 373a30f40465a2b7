package main

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-topology/pkg/fixture"
	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/health"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
	"github.com/dd0wney/cluso-topology/pkg/server"
	"github.com/dd0wney/cluso-topology/pkg/server/middleware"
)

var (
	serveAddr    string
	serveData    string
	serveOrigins []string
)

func init() {
	serveFixtureCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	serveFixtureCmd.Flags().StringVar(&serveData, "data", "", "YAML dataset (default: built-in sample)")
	serveFixtureCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "Allowed CORS origins (default: local dev ports)")
	rootCmd.AddCommand(serveFixtureCmd)
}

var serveFixtureCmd = &cobra.Command{
	Use:   "serve-fixture",
	Short: "Serve an in-memory graph backend for local use",
	Long: `Run an in-memory implementation of the graph REST API under /api,
seeded from a YAML dataset. Writes are kept until the process exits.

SIGHUP reloads the dataset file, discarding writes.

Examples:
  topology serve-fixture
  topology serve-fixture --addr :9000 --data books.yaml
  topology view --api-url http://localhost:9000/api`,
	Args: cobra.NoArgs,
	RunE: runServeFixture,
}

func loadFixtureData() (*graph.Dataset, error) {
	if serveData == "" {
		return fixture.DefaultDataset(), nil
	}
	return fixture.LoadFile(serveData)
}

func runServeFixture(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	reg := newRegistry()

	ds, err := loadFixtureData()
	if err != nil {
		return configError{err}
	}

	handler := newFixtureHandler(fixture.NewStore(ds), logger, reg)
	gs := server.NewGracefulServer(serveAddr, handler, logger)
	gs.SetConfigReloadFunc(func() error {
		ds, err := loadFixtureData()
		if err != nil {
			return err
		}
		handler.swap(fixture.NewStore(ds))
		logger.Info("fixture dataset reloaded", logging.Count(len(ds.Nodes)))
		return nil
	})

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	go gs.WatchReloadSignal(ctx)

	if reg != nil {
		hc := health.NewHealthChecker()
		hc.RegisterLivenessCheck("memory", health.MemoryCheck(nil))
		hc.RegisterReadinessCheck("fixture", func() health.Check {
			return health.SimpleCheck("fixture")
		})
		go runDiagnostics(ctx, hc, reg, logger)
	}

	logger.Info("serving fixture backend",
		logging.String("addr", serveAddr),
		logging.Int("nodes", len(ds.Nodes)),
		logging.Int("links", len(ds.Links)))
	fmt.Fprintf(stdout, "  fixture API on http://%s%s\n", displayAddr(serveAddr), fixture.APIPrefix)
	return gs.Run(ctx, server.DefaultShutdownTimeout)
}

// runDiagnostics serves health and metrics on cfg.Metrics.Addr until ctx
// is cancelled, refreshing the process gauges every few seconds.
func runDiagnostics(ctx context.Context, hc *health.HealthChecker, reg *metrics.Registry, logger logging.Logger) {
	started := time.Now()
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			reg.UpdateSystemMetrics(started)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	gs := server.NewGracefulServer(cfg.Metrics.Addr, server.DiagnosticsHandler(hc, reg, logger), logger)
	if err := gs.Run(ctx, server.DefaultShutdownTimeout); err != nil {
		logger.Error("diagnostics server failed", logging.Error(err))
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// fixtureHandler serves the current fixture server; SIGHUP swaps it.
type fixtureHandler struct {
	current atomic.Pointer[handlerBox]
	logger  logging.Logger
	reg     *metrics.Registry
	origins []string
}

type handlerBox struct{ http.Handler }

func newFixtureHandler(store *fixture.Store, logger logging.Logger, reg *metrics.Registry) *fixtureHandler {
	h := &fixtureHandler{logger: logger, reg: reg, origins: serveOrigins}
	h.swap(store)
	return h
}

func (h *fixtureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.current.Load().ServeHTTP(w, r)
}

func (h *fixtureHandler) swap(store *fixture.Store) {
	opts := []fixture.ServerOption{fixture.WithServerLogger(h.logger)}
	if h.reg != nil {
		opts = append(opts, fixture.WithServerMetrics(h.reg))
	}
	if len(h.origins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = h.origins
		opts = append(opts, fixture.WithCORS(cors))
	}
	h.current.Store(&handlerBox{fixture.NewServer(store, opts...).Handler()})
}
