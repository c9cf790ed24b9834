// Package dashboard serves the EV comparison dashboard over HTTP: the HTML
// page, a JSON API, chart images, CSV export and a share QR code.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/filter"
)

//go:embed templates/*
var content embed.FS

// Options configures a Server.
type Options struct {
	// SampleSize is how many brands and models the default selection picks.
	SampleSize int
	// PublicURL is the externally reachable base URL used in share links.
	PublicURL string
	// ChartWidth and ChartHeight size static chart images.
	ChartWidth  int
	ChartHeight int
	// Rand drives default selections; nil seeds from the clock.
	Rand    *rand.Rand
	Version string
}

// Server holds the shared state for all requests. The dataset cache and the
// random source are the only mutable parts.
type Server struct {
	cache *dataset.Cache
	src   dataset.Source
	opt   Options
	tmpl  *template.Template

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New builds a Server. It does not touch the data source; call Warm to fail
// fast on an unreadable source.
func New(cache *dataset.Cache, src dataset.Source, opt Options) (*Server, error) {
	if cache == nil {
		cache = dataset.NewCache(nil)
	}
	if opt.SampleSize <= 0 {
		opt.SampleSize = filter.DefaultSampleSize
	}
	if opt.Version == "" {
		opt.Version = "dev"
	}
	if opt.Rand == nil {
		opt.Rand = filter.NewRand()
	}
	tmpl, err := template.New("index.html").Funcs(funcs).ParseFS(content, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Server{cache: cache, src: src, opt: opt, tmpl: tmpl, rng: opt.Rand}, nil
}

// Warm loads the dataset into the cache.
func (s *Server) Warm(ctx context.Context) (*dataset.Dataset, error) {
	return s.cache.Get(ctx, s.src)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /charts/{file}", s.handleChart)
	mux.HandleFunc("GET /export.csv", s.handleExport)
	mux.HandleFunc("GET /qr.png", s.handleQR)
	return withRequestLog(withServerHeader(mux, s.opt.Version))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("[serve] dashboard ➜ %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Printf("[serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// resolve loads the dataset, reads the selection from q and fills its
// unspecified facets.
func (s *Server) resolve(ctx context.Context, q url.Values) (*dataset.Dataset, filter.Selection, filter.Result, error) {
	sel := parseSelection(q)
	ds, err := s.cache.Get(ctx, s.src)
	if err != nil {
		return nil, sel, filter.Result{}, err
	}
	if prev, ok := parsePrevious(q); ok {
		sel = filter.Cascade(ds, prev, sel)
	}
	s.mu.Lock()
	sel = filter.Resolve(ds, sel, s.rng, s.opt.SampleSize)
	s.mu.Unlock()
	return ds, sel, filter.Apply(ds, sel), nil
}
