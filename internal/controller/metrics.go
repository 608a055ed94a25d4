package controller

import (
	"github.com/sharetube/watchparty/pkg/telemetry"
	"go.opentelemetry.io/otel/metric"
)

var (
	activeConns    metric.Int64UpDownCounter
	framesReceived metric.Int64Counter
	frameErrors    metric.Int64Counter
	frameDuration  metric.Float64Histogram
)

func init() {
	f := telemetry.NewFactory(telemetry.ComponentTransport)

	f.Gauge(&activeConns, "ws.connections.active", "Open websocket connections")
	f.Counter(&framesReceived, "ws.frames.received", "Inbound websocket frames")
	f.Counter(&frameErrors, "ws.frames.rejected", "Inbound frames answered with an error event")
	f.Duration(&frameDuration, "ws.frame.duration", "Time spent handling an inbound frame")
}
