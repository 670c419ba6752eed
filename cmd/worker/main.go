package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	kafkaGo "github.com/segmentio/kafka-go"
	"golang.org/x/time/rate"

	"tripweaver/config"
	"tripweaver/internal/cache"
	"tripweaver/internal/domain"
	"tripweaver/internal/email"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	processedTTL := minutesOr(cfg.Worker.ProcessedTTLMinutes, 24*time.Hour)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.RevisionsTopic)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			event, err := kafka.DecodeRevision(msg)
			if err != nil {
				logg.Warn().Err(err).Msg("skipping malformed revision event")
				return nil
			}
			return processRevision(ctx, logg, redisCache, itineraryService, processedTTL, event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logg.Error().Err(err).Msg("consumer stopped")
		}
	}()

	if cfg.Kafka.NotificationsTopic != "" {
		notifyConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-notifications", cfg.Kafka.NotificationsTopic)
		defer notifyConsumer.Close()

		emailSender := email.NewSender()

		go func() {
			err := notifyConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
				var event kafka.FilledEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					logg.Warn().Err(err).Msg("skipping malformed notification event")
					return nil
				}
				if event.Type != kafka.EventTypeFilled {
					return nil
				}
				return emailSender.Send(ctx, event)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logg.Error().Err(err).Msg("notification consumer stopped")
			}
		}()
	}

	lagTicker := time.NewTicker(time.Minute)
	defer lagTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-lagTicker.C:
			stats := consumer.Stats()
			logg.Debug().Int64("lag", stats.Lag).Msg("revision consumer lag")
		case s := <-sig:
			logg.Info().Str("signal", s.String()).Msg("shutting down")
			return
		}
	}
}

// processRevision fills one itinerary revision. Non-nil errors stop the
// consumer, so everything recoverable is logged and swallowed here.
func processRevision(
	ctx context.Context,
	logg zerolog.Logger,
	store *cache.RedisCache,
	svc itinerary.ItineraryUseCase,
	processedTTL time.Duration,
	event *kafka.RevisionEvent,
) error {
	evtLog := logg.With().Str("itinerary_id", event.ItineraryID).Int64("revision", event.Revision).Logger()

	seen, err := store.AlreadyProcessed(ctx, event.ItineraryID, event.Revision)
	if err != nil {
		evtLog.Warn().Err(err).Msg("processed check failed, filling anyway")
	}
	if seen {
		evtLog.Debug().Msg("revision already processed")
		return nil
	}

	report, err := fillWithRetry(ctx, svc, event.Itinerary)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		evtLog.Error().Err(err).Msg("fill failed, skipping revision")
		return nil
	}

	if err := store.SetFillReport(ctx, report); err != nil {
		evtLog.Warn().Err(err).Msg("store fill report failed")
	}
	if err := store.MarkProcessed(ctx, event.ItineraryID, event.Revision, processedTTL); err != nil {
		evtLog.Warn().Err(err).Msg("mark processed failed")
	}

	evtLog.Info().Int("filled", len(report.Filled)).Int("conflicts", len(report.Conflicts)).Msg("revision filled")
	return nil
}

// fillWithRetry waits out a concurrent fill holding the itinerary lock.
func fillWithRetry(ctx context.Context, svc itinerary.ItineraryUseCase, it *domain.Itinerary) (*itinerary.FillReport, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		report, err := svc.FillGaps(ctx, it)
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, itinerary.ErrFillInProgress) {
			return nil, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
		}
	}
	return nil, lastErr
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
