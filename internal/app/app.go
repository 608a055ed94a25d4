package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sharetube/watchparty/internal/controller"
	conninmemory "github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	roominmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	"github.com/sharetube/watchparty/internal/service/liveness"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/randstr"
	"github.com/sharetube/watchparty/pkg/telemetry"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 30 * time.Second
	videoDataTimeout = 5 * time.Second
)

type AppConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	LogLevel          string        `json:"log_level"`
	ParticipantsLimit int           `json:"participants_limit"`
	MessagesLimit     int           `json:"messages_limit"`
	PingInterval      time.Duration `json:"ping_interval"`
	ReactionTTL       time.Duration `json:"reaction_ttl"`
	MaxMessageSize    int64         `json:"max_message_size"`
	RateLimit         float64       `json:"rate_limit"`
	RateBurst         int           `json:"rate_burst"`
	VideoMetadata     bool          `json:"video_metadata"`
	OtelEndpoint      string        `json:"otel_endpoint"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.ParticipantsLimit < 1 {
		return fmt.Errorf("participants limit must be greater than 0")
	}
	if cfg.MessagesLimit < 0 {
		return fmt.Errorf("messages limit must not be negative")
	}
	if cfg.PingInterval <= 0 {
		return fmt.Errorf("ping interval must be greater than 0")
	}
	if cfg.ReactionTTL <= 0 {
		return fmt.Errorf("reaction ttl must be greater than 0")
	}
	if cfg.MaxMessageSize < 1 {
		return fmt.Errorf("max message size must be greater than 0")
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst < 1 {
		return fmt.Errorf("rate limit and burst must be greater than 0")
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return l, nil
}

func newLogger(level slog.Level) *slog.Logger {
	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}),
	}

	return slog.New(h)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel, _ := parseLogLevel(cfg.LogLevel)
	logger := newLogger(logLevel)

	shutdownTelemetry, err := telemetry.Init(ctx, &telemetry.Config{
		ServiceName: "watchparty",
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    true,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("failed to shutdown telemetry", "error", err)
		}
	}()

	clock := clockwork.NewRealClock()
	roomRepo := roominmemory.NewRepo(randstr.New(roominmemory.CodeLetters()), cfg.MessagesLimit, logger)
	connRepo := conninmemory.NewRepo(logger)

	roomCfg := &room.Config{
		ParticipantsLimit: cfg.ParticipantsLimit,
		ReactionTTL:       cfg.ReactionTTL,
		Clock:             clock,
	}
	if cfg.VideoMetadata {
		roomCfg.VideoData = ytvideodata.NewClient(videoDataTimeout)
	}
	roomService := room.NewService(roomRepo, connRepo, roomCfg, logger)
	monitor := liveness.NewMonitor(cfg.PingInterval, clock, logger)

	ctrl := controller.NewController(roomService, monitor, controller.Config{
		MaxMessageSize: cfg.MaxMessageSize,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	}, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           ctrl.GetMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return monitor.Run(gCtx)
	})
	g.Go(func() error {
		return roomService.RunReactionReaper(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// hijacked websocket conns are not tracked by Shutdown
		monitor.TerminateAll(shutdownCtx)
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		roomService.Wait()

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
