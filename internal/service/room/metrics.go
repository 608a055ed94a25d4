package room

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/sharetube/watchparty/pkg/telemetry"
)

var (
	roomsCreated metric.Int64Counter
	roomsClosed  metric.Int64Counter
	roomsActive  metric.Int64UpDownCounter

	joinRequests  metric.Int64Counter
	joinsApproved metric.Int64Counter
	joinsDenied   metric.Int64Counter
	joinsCanceled metric.Int64Counter

	messagesSent       metric.Int64Counter
	reactionsSent      metric.Int64Counter
	reactionsExpired   metric.Int64Counter
	participantActions metric.Int64Counter
	videoControls      metric.Int64Counter
)

func init() {
	f := telemetry.NewFactory(telemetry.ComponentRooms)

	// Room lifecycle
	f.Counter(&roomsCreated, "rooms.created", "Total rooms created")
	f.Counter(&roomsClosed, "rooms.closed", "Total rooms closed after host departure")
	f.Gauge(&roomsActive, "rooms.active", "Number of rooms currently open")

	// Admission
	f.Counter(&joinRequests, "join.requests", "Join requests forwarded to a host")
	f.Counter(&joinsApproved, "join.approved", "Join requests approved by a host")
	f.Counter(&joinsDenied, "join.denied", "Join requests denied by a host")
	f.Counter(&joinsCanceled, "join.cancelled", "Join requests dropped because the joiner disconnected")

	// Room activity
	f.Counter(&messagesSent, "messages.sent", "Chat messages appended")
	f.Counter(&reactionsSent, "reactions.sent", "Reaction overlays broadcast")
	f.Counter(&reactionsExpired, "reactions.expired", "Reaction overlays expired server side")
	f.Counter(&participantActions, "participant.actions", "Host moderation actions applied")
	f.Counter(&videoControls, "video.controls", "Playback commands applied")
}
