package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dkrayten/newswire/internal/admin"
	"github.com/Dkrayten/newswire/internal/config"
	"github.com/Dkrayten/newswire/internal/dedupe"
	"github.com/Dkrayten/newswire/internal/generator"
	"github.com/Dkrayten/newswire/internal/logger"
	"github.com/Dkrayten/newswire/internal/models"
	"github.com/Dkrayten/newswire/internal/preflight"
	"github.com/Dkrayten/newswire/internal/publisher"
)

type recordPublisher interface {
	Publish(ctx context.Context, rec models.NewsRecord) error
}

func main() {
	log := logger.New("generator")
	cfg, err := config.LoadGenerator()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Preflight {
		if err := preflight.Check(ctx, cfg.BrokerHost, cfg.BrokerPort, cfg.PreflightTimeout, log); err != nil {
			log.Error("preflight check failed", slog.Any("err", err))
			os.Exit(1)
		}
	}

	sink := buildSink(cfg, log)
	pub := publisher.New(sink, publisher.Config{
		MaxRetries:     cfg.MaxRetries,
		ConnectBackoff: cfg.ConnectBackoff,
		PublishTimeout: cfg.PublishTimeout,
	}, log)

	var adminServer *http.Server
	if cfg.AdminAddr != "" {
		adminServer = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           admin.NewRouter(log, pub),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("admin server starting", slog.String("addr", cfg.AdminAddr))
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server stopped", slog.Any("err", err))
			}
		}()
	}

	log.Info("generator started",
		slog.String("driver", cfg.BrokerDriver),
		slog.String("broker", cfg.BrokerAddr()),
		slog.String("exchange", cfg.Exchange),
	)

	// A failed initial connect is transient; the first publish retries it.
	if err := pub.Connect(ctx); err != nil {
		log.Warn("initial connect failed, retrying per cycle", slog.Any("err", err))
	}

	gen := generator.New()
	tracker := dedupe.NewTracker(cfg.DedupeCapacity, cfg.DedupeTTL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	runLoop(ctx, log, gen, pub, tracker, cfg.IntervalMin, cfg.IntervalMax, rng)

	log.Info("shutdown signal received")
	if adminServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			log.Error("admin server shutdown", slog.Any("err", err))
		}
		cancel()
	}
	if err := pub.Close(); err != nil {
		log.Error("close publisher", slog.Any("err", err))
	}
	log.Info("generator stopped")
}

func buildSink(cfg *config.Generator, log *slog.Logger) publisher.Sink {
	if cfg.BrokerDriver == config.DriverKafka {
		return publisher.NewKafkaSink(publisher.KafkaConfig{
			Brokers: []string{cfg.BrokerAddr()},
			Topic:   cfg.Exchange,
		}, log)
	}
	return publisher.NewAMQPSink(publisher.AMQPConfig{
		URL:      cfg.AMQPURL(),
		Exchange: cfg.Exchange,
	}, log)
}

// runLoop is one generate-publish-sleep cycle after another until the
// context is cancelled. Failures inside a cycle are logged and never stop
// the loop; no state leaks from one cycle into the next.
func runLoop(
	ctx context.Context,
	log *slog.Logger,
	gen *generator.Generator,
	pub recordPublisher,
	tracker *dedupe.Tracker,
	intervalMin, intervalMax time.Duration,
	rng *rand.Rand,
) {
	for {
		if ctx.Err() != nil {
			return
		}

		rec := gen.Generate()
		if tracker.Observe(rec.ID) {
			// Ids carry no uniqueness guarantee; a repeat is worth a
			// trace, not a drop.
			log.Debug("record id repeated", slog.Int64("id", rec.ID))
		}

		if err := pub.Publish(ctx, rec); err != nil {
			log.Error("publish cycle failed",
				slog.Any("err", err),
				slog.Bool("retryable", publisher.IsRetryable(err)),
			)
		}

		select {
		case <-time.After(sleepInterval(rng, intervalMin, intervalMax)):
		case <-ctx.Done():
			return
		}
	}
}

// sleepInterval draws a uniform duration in [min, max].
func sleepInterval(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}
