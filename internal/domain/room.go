package domain

var AvatarOptions = []string{
	"avatar-1", "avatar-2", "avatar-3", "avatar-4",
	"avatar-5", "avatar-6", "avatar-7", "avatar-8",
	"avatar-9", "avatar-10", "avatar-11", "avatar-12",
}

const (
	VideoSourceYoutube     = "youtube"
	VideoSourceScreenshare = "screenshare"
)

type VideoSource struct {
	Type         string `json:"type"`
	Url          string `json:"url,omitempty"`
	Title        string `json:"title,omitempty"`
	AuthorName   string `json:"authorName,omitempty"`
	ThumbnailUrl string `json:"thumbnailUrl,omitempty"`
}

func (v *VideoSource) Clone() *VideoSource {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type VideoState struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	LastUpdate  int64   `json:"lastUpdate"`
}

type Room struct {
	Id           string            `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	HostId       string            `json:"hostId"`
	VideoSource  *VideoSource      `json:"videoSource,omitempty"`
	Participants []Participant     `json:"participants"`
	Messages     []Message         `json:"messages"`
	Reactions    []ReactionOverlay `json:"reactions"`
	VideoState   VideoState        `json:"videoState"`
	CreatedAt    int64             `json:"createdAt"`
}

// Clone returns a deep copy safe to hand out of the store.
func (r *Room) Clone() *Room {
	c := *r
	c.VideoSource = r.VideoSource.Clone()
	c.Participants = append(make([]Participant, 0, len(r.Participants)), r.Participants...)
	c.Messages = append(make([]Message, 0, len(r.Messages)), r.Messages...)
	c.Reactions = append(make([]ReactionOverlay, 0, len(r.Reactions)), r.Reactions...)
	return &c
}

func (r *Room) Participant(id string) (Participant, bool) {
	for _, p := range r.Participants {
		if p.Id == id {
			return p, true
		}
	}
	return Participant{}, false
}

func (r *Room) Host() (Participant, bool) {
	return r.Participant(r.HostId)
}
