package supervisor

import (
	"context"
	"log/slog"

	"seotrack/internal/server"
)

// HTTPService runs the API server as a supervised service.
type HTTPService struct {
	srv *server.Server
}

// NewHTTPService wraps srv.
func NewHTTPService(srv *server.Server) *HTTPService {
	return &HTTPService{srv: srv}
}

// Serve listens until ctx is cancelled, then shuts the server down.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := h.srv.Shutdown(); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String names the service in supervisor logs.
func (h *HTTPService) String() string {
	return "http-server"
}
