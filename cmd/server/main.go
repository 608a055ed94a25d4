package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	participantsLimit = configVar[int]{
		envKey:       "SERVER_PARTICIPANTS_LIMIT",
		flagKey:      "participants-limit",
		defaultValue: 50,
	}
	messagesLimit = configVar[int]{
		envKey:       "SERVER_MESSAGES_LIMIT",
		flagKey:      "messages-limit",
		defaultValue: 0,
	}
	pingInterval = configVar[time.Duration]{
		envKey:       "SERVER_PING_INTERVAL",
		flagKey:      "ping-interval",
		defaultValue: 30 * time.Second,
	}
	reactionTTL = configVar[time.Duration]{
		envKey:       "SERVER_REACTION_TTL",
		flagKey:      "reaction-ttl",
		defaultValue: 3 * time.Second,
	}
	maxMessageSize = configVar[int64]{
		envKey:       "SERVER_MAX_MESSAGE_SIZE",
		flagKey:      "max-message-size",
		defaultValue: 8192,
	}
	rateLimit = configVar[float64]{
		envKey:       "SERVER_RATE_LIMIT",
		flagKey:      "rate-limit",
		defaultValue: 20,
	}
	rateBurst = configVar[int]{
		envKey:       "SERVER_RATE_BURST",
		flagKey:      "rate-burst",
		defaultValue: 40,
	}
	videoMetadata = configVar[bool]{
		envKey:       "SERVER_VIDEO_METADATA",
		flagKey:      "video-metadata",
		defaultValue: false,
	}
	otelEndpoint = configVar[string]{
		envKey:       "OTEL_EXPORTER_OTLP_ENDPOINT",
		flagKey:      "otel-endpoint",
		defaultValue: "",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	// .env is optional
	_ = godotenv.Load()

	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(participantsLimit.flagKey, participantsLimit.defaultValue, "Maximum number of participants in a room")
	pflag.Int(messagesLimit.flagKey, messagesLimit.defaultValue, "Trim room history to this many messages, 0 keeps every message")
	pflag.Duration(pingInterval.flagKey, pingInterval.defaultValue, "Liveness ping interval")
	pflag.Duration(reactionTTL.flagKey, reactionTTL.defaultValue, "Reaction overlay lifetime")
	pflag.Int64(maxMessageSize.flagKey, maxMessageSize.defaultValue, "Maximum inbound frame size in bytes")
	pflag.Float64(rateLimit.flagKey, rateLimit.defaultValue, "Inbound frames per second per connection")
	pflag.Int(rateBurst.flagKey, rateBurst.defaultValue, "Inbound frame burst per connection")
	pflag.Bool(videoMetadata.flagKey, videoMetadata.defaultValue, "Fetch YouTube title and author for video sources")
	pflag.String(otelEndpoint.flagKey, otelEndpoint.defaultValue, "OTLP gRPC endpoint for metrics")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(host)
	bind(port)
	bind(logLevel)
	bind(participantsLimit)
	bind(messagesLimit)
	bind(pingInterval)
	bind(reactionTTL)
	bind(maxMessageSize)
	bind(rateLimit)
	bind(rateBurst)
	bind(videoMetadata)
	bind(otelEndpoint)

	return &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		ParticipantsLimit: viper.GetInt(participantsLimit.flagKey),
		MessagesLimit:     viper.GetInt(messagesLimit.flagKey),
		PingInterval:      viper.GetDuration(pingInterval.flagKey),
		ReactionTTL:       viper.GetDuration(reactionTTL.flagKey),
		MaxMessageSize:    viper.GetInt64(maxMessageSize.flagKey),
		RateLimit:         viper.GetFloat64(rateLimit.flagKey),
		RateBurst:         viper.GetInt(rateBurst.flagKey),
		VideoMetadata:     viper.GetBool(videoMetadata.flagKey),
		OtelEndpoint:      viper.GetString(otelEndpoint.flagKey),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Fprintf(os.Stderr, "starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
