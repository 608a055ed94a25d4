package domain

type Participant struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	IsHost      bool   `json:"isHost"`
	IsMuted     bool   `json:"isMuted"`
	IsCameraOff bool   `json:"isCameraOff"`
	JoinedAt    int64  `json:"joinedAt"`
}

// JoinRequest is a participant awaiting host approval. It has no participant id yet.
type JoinRequest struct {
	Id          string
	ConnId      string
	Name        string
	Avatar      string
	IsMuted     bool
	IsCameraOff bool
	RequestedAt int64
}

type PendingParticipant struct {
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	IsHost      bool   `json:"isHost"`
	IsMuted     bool   `json:"isMuted"`
	IsCameraOff bool   `json:"isCameraOff"`
	JoinedAt    int64  `json:"joinedAt"`
}

func (r JoinRequest) Preview() PendingParticipant {
	return PendingParticipant{
		Name:        r.Name,
		Avatar:      r.Avatar,
		IsMuted:     r.IsMuted,
		IsCameraOff: r.IsCameraOff,
		JoinedAt:    r.RequestedAt,
	}
}

func (r JoinRequest) Participant(id string, joinedAt int64) Participant {
	return Participant{
		Id:          id,
		Name:        r.Name,
		Avatar:      r.Avatar,
		IsMuted:     r.IsMuted,
		IsCameraOff: r.IsCameraOff,
		JoinedAt:    joinedAt,
	}
}
