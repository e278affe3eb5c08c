package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPServer runs the API with the configured timeouts. Stop drains in-flight
// requests but is bounded by the idle timeout so a wedged client cannot hold
// the process open while the queue worker waits to exit.
type HTTPServer struct {
	srv         *http.Server
	stopTimeout time.Duration
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTPWriteTimeout,
			IdleTimeout:       cfg.HTTPIdleTimeout,
		},
		stopTimeout: cfg.HTTPIdleTimeout,
	}
}

// Start blocks serving requests until Stop is called. A shutdown initiated
// through Stop is a normal exit, not an error.
func (s *HTTPServer) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully drains the server, waiting at most the stop timeout.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.stopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stopTimeout)
		defer cancel()
	}
	return s.srv.Shutdown(ctx)
}
