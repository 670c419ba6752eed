package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"tripweaver/config"
	"tripweaver/internal/bootstrap"
	"tripweaver/internal/cache"
	"tripweaver/internal/enrich"
	"tripweaver/internal/kafka"
	"tripweaver/internal/logger"
	"tripweaver/internal/service/continuity"
	"tripweaver/internal/service/depgraph"
	"tripweaver/internal/service/gapfill"
	"tripweaver/internal/service/inference"
	"tripweaver/internal/service/itinerary"
	"tripweaver/internal/service/locmatch"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var matcherOpts []locmatch.MatcherOption
	if cfg.Engine.CoordinateRadiusMeters > 0 {
		matcherOpts = append(matcherOpts, locmatch.WithCoordinateRadius(cfg.Engine.CoordinateRadiusMeters))
	}
	matcher := locmatch.NewMatcher(matcherOpts...)
	inferencer := inference.NewInferencer()
	classifier := continuity.NewClassifier(matcher)
	analyzer := continuity.NewAnalyzer(matcher, inferencer, classifier)

	fillerOpts := []gapfill.FillerOption{
		gapfill.WithBuffers(
			minutesOr(cfg.Engine.LocalBufferMinutes, gapfill.DefaultLocalBuffer),
			minutesOr(cfg.Engine.AirportBufferMinutes, gapfill.DefaultAirportBuffer),
		),
		gapfill.WithWalkingWindow(minutesOr(cfg.Engine.WalkingWindowMinutes, gapfill.DefaultWalkingWindow)),
		gapfill.WithTightThreshold(minutesOr(cfg.Engine.TightThresholdMinutes, gapfill.DefaultTightThreshold)),
		gapfill.WithEnrichTimeout(secondsOr(cfg.Engine.EnrichTimeoutSeconds, gapfill.DefaultEnrichTimeout)),
	}
	if cfg.Enrichment.BaseURL != "" {
		var httpOpts []enrich.HTTPOption
		if cfg.Enrichment.RatePerSecond > 0 {
			burst := cfg.Enrichment.Burst
			if burst <= 0 {
				burst = enrich.DefaultBurst
			}
			httpOpts = append(httpOpts, enrich.WithRateLimit(rate.Limit(cfg.Enrichment.RatePerSecond), burst))
		}
		var provider gapfill.EnrichmentProvider = enrich.NewHTTPProvider(cfg.Enrichment.BaseURL, cfg.Enrichment.APIKey, httpOpts...)
		if cfg.Enrichment.CacheTTLSeconds > 0 {
			provider = enrich.NewCachedProvider(provider, time.Duration(cfg.Enrichment.CacheTTLSeconds)*time.Second)
		}
		fillerOpts = append(fillerOpts, gapfill.WithProvider(provider))
	}
	filler := gapfill.NewFiller(matcher, inferencer, analyzer, fillerOpts...)

	redisCache := cache.NewRedisCache(cfg.Redis, secondsOr(cfg.Worker.ReportTTLSeconds, time.Hour))
	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()

	itineraryService := itinerary.NewItineraryService(
		analyzer,
		filler,
		itinerary.WithLocks(redisCache, secondsOr(cfg.Worker.LockTTLSeconds, 30*time.Second)),
		itinerary.WithProducer(producer, cfg.Kafka.ItineraryTopic),
		itinerary.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		itinerary.WithGraphOptions(depgraph.WithImplicitWindow(minutesOr(cfg.Engine.ImplicitWindowMinutes, depgraph.DefaultImplicitWindow))),
		itinerary.WithLogger(logg),
	)

	if err := bootstrap.Run(ctx, cfg, logg, itineraryService, redisCache); err != nil {
		logg.Fatal().Err(err).Msg("server error")
	}
}

func minutesOr(minutes int, fallback time.Duration) time.Duration {
	if minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
