// Package server serves the dashboard over HTTP: the page, JSON APIs,
// rendered chart images and a websocket that pushes recomputed charts.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
	"github.com/spektr-org/plotdash/render"
)

// ============================================================================
// SERVER — Dashboard shell around one Binder
// ============================================================================
// The binder and dataset are shared read-only by every request. Control
// state exists only inside websocket sessions, one per connection; plain
// HTTP requests carry their selection in the query string.
// ============================================================================

// Theme holds the page colors and font.
type Theme struct {
	Background string
	Header     string
	Text       string
	Font       string
}

// DefaultTheme is the beige dashboard theme.
var DefaultTheme = Theme{
	Background: "#F3E9D2",
	Header:     "#F7D6BF",
	Text:       "#283044",
	Font:       "Poppins",
}

// Option configures a Server.
type Option func(*options)

type options struct {
	Theme           Theme
	Format          render.Format
	Size            render.Size
	FigureOptions   []figure.Option
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// WithTheme sets the page theme.
func WithTheme(theme Theme) Option {
	return func(o *options) {
		o.Theme = theme
	}
}

// WithImage sets the format and size of chart images embedded in the page.
func WithImage(format render.Format, size render.Size) Option {
	return func(o *options) {
		o.Format = format
		o.Size = size
	}
}

// WithFigureOptions sets the options used to compute every figure.
func WithFigureOptions(opts ...figure.Option) Option {
	return func(o *options) {
		o.FigureOptions = opts
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// Server serves one dashboard.
type Server struct {
	binder   *engine.Binder
	opts     *options
	upgrader websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a Server for b.
func New(b *engine.Binder, opts ...Option) *Server {
	o := &options{
		Theme:           DefaultTheme,
		Format:          render.PNG,
		Size:            render.DefaultSize,
		ShutdownTimeout: 5 * time.Second,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Server{
		binder: b,
		opts:   o,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		closing: make(chan struct{}),
	}
}

// Handler returns the HTTP handler of the dashboard. Everything except the
// websocket endpoint is gzip-compressed for clients that accept it.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /{$}", s.handleIndex)
	api.HandleFunc("GET /healthz", s.handleHealth)
	api.HandleFunc("GET /api/table", s.handleTable)
	api.HandleFunc("GET /api/slots", s.handleSlots)
	api.HandleFunc("GET /api/slots/{id}/spec", s.handleSpec)
	api.HandleFunc("GET /api/slots/{id}/figure", s.handleFigure)
	api.HandleFunc("GET /slots/{id}/{file}", s.handleChart)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("/", gzhttp.GzipHandler(api))

	return mux
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeSessions)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.opts.Logger.Info("serving dashboard", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		s.opts.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// closeSessions tells every open websocket to close.
func (s *Server) closeSessions() {
	s.closeOnce.Do(func() { close(s.closing) })
}
