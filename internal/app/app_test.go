package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Host:              "127.0.0.1",
		Port:              8080,
		LogLevel:          "INFO",
		ParticipantsLimit: 50,
		MessagesLimit:     0,
		PingInterval:      30 * time.Second,
		ReactionTTL:       3 * time.Second,
		MaxMessageSize:    8192,
		RateLimit:         20,
		RateBurst:         40,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := map[string]func(*AppConfig){
		"port":               func(c *AppConfig) { c.Port = 0 },
		"participants limit": func(c *AppConfig) { c.ParticipantsLimit = 0 },
		"messages limit":     func(c *AppConfig) { c.MessagesLimit = -1 },
		"ping interval":      func(c *AppConfig) { c.PingInterval = 0 },
		"reaction ttl":       func(c *AppConfig) { c.ReactionTTL = 0 },
		"max message size":   func(c *AppConfig) { c.MaxMessageSize = 0 },
		"rate burst":         func(c *AppConfig) { c.RateBurst = 0 },
		"log level":          func(c *AppConfig) { c.LogLevel = "LOUD" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsMessagesBound(t *testing.T) {
	cfg := validConfig()
	cfg.MessagesLimit = 1000
	assert.NoError(t, cfg.Validate())
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func TestRunServesAndShutsDown(t *testing.T) {
	cfg := validConfig()
	cfg.Port = freePort(t)
	cfg.LogLevel = "ERROR"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg)
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/healthz", cfg.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "OK"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.ParticipantsLimit = 0

	assert.Error(t, Run(context.Background(), cfg))
}
