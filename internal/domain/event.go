package domain

const (
	EventRoomCreated        = "room-created"
	EventJoinRequest        = "join-request"
	EventJoinApproved       = "join-approved"
	EventJoinDenied         = "join-denied"
	EventJoinCancelled      = "join-cancelled"
	EventParticipantJoined  = "participant-joined"
	EventParticipantLeft    = "participant-left"
	EventParticipantUpdated = "participant-updated"
	EventMessageReceived    = "message-received"
	EventReactionAdded      = "reaction-added"
	EventVideoSourceUpdated = "video-source-updated"
	EventVideoControl       = "video-control"
	EventRoomClosed         = "room-closed"
	EventError              = "error"
)

// Event is an outbound frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Conn is a live client connection as seen by the engine.
type Conn interface {
	Id() string
	// Send enqueues ev without blocking on the network.
	Send(ev *Event) error
	Close() error
	IsOpen() bool
}

type RoomSession struct {
	Room          *Room  `json:"room"`
	ParticipantId string `json:"participantId"`
}

type JoinRequestPayload struct {
	RequestId   string             `json:"requestId"`
	Participant PendingParticipant `json:"participant"`
}

type JoinCancelledPayload struct {
	RequestId string `json:"requestId"`
}

type JoinDeniedPayload struct {
	Reason string `json:"reason"`
}

type ParticipantPayload struct {
	Participant Participant `json:"participant"`
}

type ParticipantLeftPayload struct {
	ParticipantId string `json:"participantId"`
}

type MessagePayload struct {
	Message Message `json:"message"`
}

type ReactionPayload struct {
	Reaction ReactionOverlay `json:"reaction"`
}

type VideoSourcePayload struct {
	Source VideoSource `json:"source"`
}

type VideoControlPayload struct {
	Action      string   `json:"action"`
	CurrentTime *float64 `json:"currentTime,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEvent(eventType string, data any) *Event {
	if data == nil {
		data = struct{}{}
	}
	return &Event{Type: eventType, Data: data}
}
