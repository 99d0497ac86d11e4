package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

var (
	// ErrStart is returned when the listener fails.
	ErrStart = errors.New("httpserver: failed to start")

	// ErrShutdown is returned when graceful shutdown does not complete in time.
	ErrShutdown = errors.New("httpserver: failed to shut down gracefully")
)

type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`           // Addr is the listen address.
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`     // ReadTimeout bounds reading a full request.
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`    // WriteTimeout bounds writing a full response.
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`    // IdleTimeout bounds keep-alive waits.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"` // ShutdownTimeout bounds graceful drain.
}

// Server runs an http.Server with signal-aware graceful shutdown.
type Server struct {
	cfg Config
	log *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr overrides the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.cfg.Addr = addr
		}
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithShutdownTimeout overrides the graceful drain deadline.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.cfg.ShutdownTimeout = d
		}
	}
}

// New creates a Server from defaults and options.
func New(opts ...Option) *Server {
	s := &Server{
		cfg: Config{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig creates a Server from env-backed configuration.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	s := New(opts...)
	if cfg.Addr != "" {
		s.cfg.Addr = cfg.Addr
	}
	if cfg.ReadTimeout > 0 {
		s.cfg.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		s.cfg.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.IdleTimeout > 0 {
		s.cfg.IdleTimeout = cfg.IdleTimeout
	}
	if cfg.ShutdownTimeout > 0 {
		s.cfg.ShutdownTimeout = cfg.ShutdownTimeout
	}
	return s
}

// Run serves handler until the context is cancelled or SIGINT/SIGTERM
// arrives, then drains in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Join(ErrStart, err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(ErrShutdown, err)
	}
	return <-errCh
}
