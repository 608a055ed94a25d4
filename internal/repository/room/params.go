package room

import "github.com/sharetube/watchparty/internal/domain"

type CreateParams struct {
	Name        string
	HostName    string
	HostAvatar  string
	IsMuted     bool
	IsCameraOff bool
	CreatedAt   int64
}

// UpdateParams changes only the non-nil fields.
type UpdateParams struct {
	Code        string
	VideoSource *domain.VideoSource
	VideoState  *domain.VideoState
}

type AddParticipantParams struct {
	Code        string
	Participant domain.Participant
	// Limit caps the number of participants. Zero means unlimited.
	Limit int
}

type UpdateParticipantParams struct {
	Code          string
	ParticipantId string
	IsMuted       *bool
	IsCameraOff   *bool
}

type TransferHostParams struct {
	Code      string
	NewHostId string
}

type TransferHostResult struct {
	OldHost domain.Participant
	NewHost domain.Participant
}
