package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caasmo/authrelay/config"
	"golang.org/x/sync/errgroup"
)

// Daemon is a long-running component whose lifecycle is tied to the
// server: started after the listener, stopped during graceful shutdown.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	reloadFunc     func() error
	daemons        []Daemon

	// exitFunc is os.Exit, replaceable in tests
	exitFunc func(code int)
}

// NewServer builds a server around the handler. reloadFunc runs on
// SIGHUP; pass nil when there is nothing to reload.
func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger, reloadFunc func() error) *Server {
	if reloadFunc == nil {
		reloadFunc = func() error { return nil }
	}
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		reloadFunc:     reloadFunc,
		exitFunc:       os.Exit,
	}
}

// AddDaemon registers a component for lifecycle management. Daemons
// start in registration order and stop concurrently on shutdown.
func (s *Server) AddDaemon(d Daemon) {
	s.daemons = append(s.daemons, d)
}

// Run starts the HTTP listener and all daemons, then blocks until a
// termination signal or a listener error. SIGHUP triggers the reload
// function without stopping the server.
func (s *Server) Run() {
	cfg := s.configProvider.Get().Server

	s.logger.Info("Server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
		"tls", cfg.EnableTLS,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", cfg.Addr)
		var err error
		if cfg.EnableTLS {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	if err := s.startDaemons(); err != nil {
		s.logger.Error("Daemon startup failed - shutting down", "err", err)
		s.shutdown(srv, cfg.ShutdownGracefulTimeout.Duration)
		s.exitFunc(1)
		return
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		syscall.SIGHUP,  // kill -SIGHUP XXXX
		syscall.SIGINT,  // kill -SIGINT XXXX or Ctrl+c
		syscall.SIGQUIT, // kill -SIGQUIT XXXX
	)
	defer signal.Stop(sig)

	for {
		select {
		case received := <-sig:
			if received == syscall.SIGHUP {
				s.logger.Info("Received SIGHUP - reloading")
				if err := s.reloadFunc(); err != nil {
					s.logger.Error("Reload failed", "err", err)
				}
				continue
			}
			s.logger.Info("Received shutdown signal - gracefully shutting down")
		case err := <-serverError:
			s.logger.Error("Server error - initiating shutdown", "err", err)
		}
		break
	}

	if err := s.shutdown(srv, cfg.ShutdownGracefulTimeout.Duration); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		s.exitFunc(1)
		return
	}

	s.logger.Info("All systems stopped gracefully")
	s.exitFunc(0)
}

// startDaemons starts every registered daemon in order. On failure the
// already-started daemons are stopped before the error is returned.
func (s *Server) startDaemons() error {
	for i, d := range s.daemons {
		s.logger.Info("Starting daemon", "name", d.Name())
		if err := d.Start(); err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.configProvider.Get().Server.ShutdownGracefulTimeout.Duration)
			defer cancel()
			for _, started := range s.daemons[:i] {
				if stopErr := started.Stop(ctx); stopErr != nil {
					s.logger.Error("Daemon cleanup stop failed", "name", started.Name(), "err", stopErr)
				}
			}
			return err
		}
	}
	return nil
}

// shutdown stops the HTTP server and all daemons concurrently, bounded
// by the graceful timeout.
func (s *Server) shutdown(srv *http.Server, timeout time.Duration) error {
	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		return nil
	})

	for _, d := range s.daemons {
		shutdownGroup.Go(func() error {
			s.logger.Info("Shutting down daemon", "name", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("Daemon shutdown error", "name", d.Name(), "err", err)
				return err
			}
			return nil
		})
	}

	return shutdownGroup.Wait()
}
