package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/logisim/api/deliveries"
	"github.com/kilianp07/logisim/api/fleet"
)

// Handler returns the read-only API: delivery logs, fleet status and hub
// stock. Only the delivery log is guarded by the token.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/deliveries/logs", deliveries.NewLogHandler(s.store, s.cfg.API.Token))
	mux.Handle("/api/fleet/status", fleet.NewStatusHandler(s.Orchestrator))
	mux.Handle("/api/inventory", fleet.NewInventoryHandler(s.Warehouse))
	return mux
}

func (s *Service) serveAPI(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
