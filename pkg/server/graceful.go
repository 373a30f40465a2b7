// Package server runs the viewer's HTTP endpoints (diagnostics and the
// fixture backend) with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-topology/pkg/logging"
)

// DefaultShutdownTimeout bounds connection draining on shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server         *http.Server
	logger         logging.Logger
	shutdownCh     chan struct{}
	shutdownOnce   sync.Once
	configReloadFn ConfigReloadFunc
	configMu       sync.RWMutex

	addrMu   sync.RWMutex
	listener net.Listener
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, logger logging.Logger) *GracefulServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:     logger.With(logging.Component("http-server")),
		shutdownCh: make(chan struct{}),
	}
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (gs *GracefulServer) Start() error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", gs.server.Addr, err)
	}
	gs.addrMu.Lock()
	gs.listener = ln
	gs.addrMu.Unlock()

	gs.logger.Info("starting HTTP server", logging.String("addr", ln.Addr().String()))
	if err := gs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down within timeout.
func (gs *GracefulServer) Run(ctx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := gs.Shutdown(timeout); err != nil {
			return err
		}
		return <-errCh
	}
}

// Addr returns the bound address once Start is listening, else the
// configured one.
func (gs *GracefulServer) Addr() string {
	gs.addrMu.RLock()
	defer gs.addrMu.RUnlock()
	if gs.listener != nil {
		return gs.listener.Addr().String()
	}
	return gs.server.Addr
}

// Shutdown initiates a graceful shutdown
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))

		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.logger.Error("error during shutdown", logging.Error(shutdownErr))
		} else {
			gs.logger.Info("server shutdown complete")
		}
	})
	return err
}

// WatchReloadSignal calls ReloadConfig on every SIGHUP until ctx is
// cancelled. Termination signals are left to the caller.
func (gs *GracefulServer) WatchReloadSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-gs.shutdownCh:
			return
		case sig := <-sigCh:
			gs.logger.Info("received signal, reloading configuration", logging.String("signal", sig.String()))
			if err := gs.ReloadConfig(); err != nil {
				gs.logger.Warn("configuration reload error", logging.Error(err))
			}
		}
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Info("configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Warn("configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("configuration reload complete")
	return nil
}
