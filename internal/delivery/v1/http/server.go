package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
)

const readHeaderTimeout = 5 * time.Second

// Server обслуживает API скрапинга и запросов.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig, logger logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Run блокируется до ошибки или остановки сервера. После остановки возвращает nil.
func (s *Server) Run() error {
	s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Infof("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}
