// Package httpapi exposes the allow-list service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/dmitrijs2005/boardingpass/internal/api"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
	"github.com/dmitrijs2005/boardingpass/internal/server/services"
)

type Server struct {
	address         string
	origins         []string
	shutdownTimeout time.Duration
	service         services.AllowListService
	logger          logging.Logger
}

func NewServer(address string, origins []string, shutdownTimeout time.Duration,
	s services.AllowListService, l logging.Logger) *Server {
	return &Server{
		address:         address,
		origins:         origins,
		shutdownTimeout: shutdownTimeout,
		service:         s,
		logger:          l.With("module", "http_server"),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler)

	r.Get(api.PathHealth, s.health)
	r.Method(http.MethodGet, api.PathMetrics, promhttp.Handler())

	r.Get(api.PathTwitterToken, s.twitterToken)
	r.Post(api.PathVerify, s.verify)
	r.Post(api.PathSubmit, s.submit)
	r.Get(api.PathAllowListed+"{address}", s.allowListed)
	r.Get(api.PathClaim, s.claim)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Requests keep ctx values but not its cancellation; Shutdown drains them.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
