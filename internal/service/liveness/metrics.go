package liveness

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/sharetube/watchparty/pkg/telemetry"
)

var (
	trackedPeers    metric.Int64UpDownCounter
	pingsSent       metric.Int64Counter
	peersTerminated metric.Int64Counter
)

func init() {
	f := telemetry.NewFactory(telemetry.ComponentLiveness)

	f.Gauge(&trackedPeers, "liveness.tracked", "Connections watched by the liveness monitor")
	f.Counter(&pingsSent, "liveness.pings", "Pings sent to connections")
	f.Counter(&peersTerminated, "liveness.terminated", "Connections terminated for missing a pong")
}
