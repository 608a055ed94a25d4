package connection

import "errors"

var (
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyExists = errors.New("connection already exists")
)

// Binding is the room association of a connection. ParticipantId is empty
// while the connection waits for host approval.
type Binding struct {
	RoomCode      string
	ParticipantId string
}

func (b Binding) Admitted() bool {
	return b.ParticipantId != ""
}
