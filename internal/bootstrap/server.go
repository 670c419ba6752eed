package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tripweaver/api"
	"tripweaver/config"
	"tripweaver/internal/service/itinerary"
)

// Run starts the HTTP server and blocks until context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger, itinerarySvc itinerary.ItineraryUseCase, reports api.ReportStore) error {
	srv := newServer(cfg, log, itinerarySvc, reports)

	errCh := make(chan error, 1)

	go func() { errCh <- srv.ListenAndServe() }()
	log.Info().Str("address", cfg.HTTP.Address).Msg("http server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg *config.Config, log zerolog.Logger, itinerarySvc itinerary.ItineraryUseCase, reports api.ReportStore) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), accessLog(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := api.NewItineraryHandler(itinerarySvc, reports)
	handler.Register(router.Group("/itineraries"))

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
}

// accessLog logs method, path, status, and elapsed time for every request.
func accessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}
