package monitor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
)

// NewRouter wires the map feed endpoints.
func NewRouter(h *Hub, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": h.Clients()})
	})
	r.GET("/api/map", func(c *gin.Context) {
		b := h.Latest()
		if b == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "map not loaded yet"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
	})
	r.GET("/ws", func(c *gin.Context) {
		h.ServeWS(c.Writer, c.Request)
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return r
}

// Serve runs the router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, l *slog.Logger) error {
	log := logger.OrDiscard(l)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("map feed listening", logger.Action("monitor_serve"), slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("map feed shutting down", logger.Action("monitor_serve"))
		return srv.Shutdown(shutdownCtx)
	}
}
