package domain

const (
	MessageTypeText     = "text"
	MessageTypeReaction = "reaction"
	MessageTypeGif      = "gif"
)

type Message struct {
	Id                string `json:"id"`
	ParticipantId     string `json:"participantId"`
	ParticipantName   string `json:"participantName"`
	ParticipantAvatar string `json:"participantAvatar"`
	Content           string `json:"content"`
	Timestamp         int64  `json:"timestamp"`
	Type              string `json:"type"`
}

type ReactionOverlay struct {
	Id              string `json:"id"`
	ParticipantId   string `json:"participantId"`
	ParticipantName string `json:"participantName"`
	Emoji           string `json:"emoji"`
	Timestamp       int64  `json:"timestamp"`
}
