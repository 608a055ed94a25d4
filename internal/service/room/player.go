package room

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
)

type SetVideoSourceParams struct {
	Conn   domain.Conn
	Source domain.VideoSource
}

type SetVideoSourceResponse struct {
	Source domain.VideoSource
}

func (s *service) SetVideoSource(ctx context.Context, params *SetVideoSourceParams) (SetVideoSourceResponse, error) {
	source := domain.VideoSource{Type: params.Source.Type}
	var videoId string
	switch params.Source.Type {
	case domain.VideoSourceYoutube:
		id, err := ytvideodata.ParseVideoId(params.Source.Url)
		if err != nil {
			return SetVideoSourceResponse{}, ErrInvalidVideoSource
		}
		videoId = id
		source.Url = params.Source.Url
	case domain.VideoSourceScreenshare:
	default:
		return SetVideoSourceResponse{}, ErrInvalidVideoSource
	}

	ctx, b, _, unlock, err := s.lockHost(ctx, params.Conn)
	if err != nil {
		return SetVideoSourceResponse{}, err
	}
	defer unlock()

	if _, err := s.roomRepo.Update(ctx, &room.UpdateParams{
		Code:        b.RoomCode,
		VideoSource: &source,
	}); err != nil {
		return SetVideoSourceResponse{}, mapStoreError(err)
	}

	s.broadcast(b.RoomCode, domain.NewEvent(domain.EventVideoSourceUpdated, domain.VideoSourcePayload{Source: source}))

	if s.videoData != nil && videoId != "" {
		s.wg.Add(1)
		go s.enrichVideoSource(context.WithoutCancel(ctx), b.RoomCode, source, videoId)
	}

	return SetVideoSourceResponse{Source: source}, nil
}

// enrichVideoSource fetches metadata without holding the room lock and re-broadcasts
// the source if the room still plays it.
func (s *service) enrichVideoSource(ctx context.Context, roomCode string, source domain.VideoSource, videoId string) {
	defer s.wg.Done()

	fetchCtx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	data, err := s.videoData.Get(fetchCtx, videoId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get video data", "video_id", videoId, "error", err)
		return
	}

	unlock := s.locker.Lock(roomCode)
	defer unlock()

	rm, err := s.roomRepo.Get(ctx, roomCode)
	if err != nil || rm.VideoSource == nil || *rm.VideoSource != source {
		return
	}

	source.Title = data.Title
	source.AuthorName = data.AuthorName
	source.ThumbnailUrl = data.ThumbnailUrl
	if _, err := s.roomRepo.Update(ctx, &room.UpdateParams{Code: roomCode, VideoSource: &source}); err != nil {
		return
	}

	s.broadcast(roomCode, domain.NewEvent(domain.EventVideoSourceUpdated, domain.VideoSourcePayload{Source: source}))
}

type ControlVideoParams struct {
	Conn        domain.Conn
	Action      string
	CurrentTime *float64
}

type ControlVideoResponse struct {
	VideoState domain.VideoState
}

// ControlVideo replaces the playback state: playing only after play, position from the
// command or kept as is.
func (s *service) ControlVideo(ctx context.Context, params *ControlVideoParams) (ControlVideoResponse, error) {
	ctx, b, rm, unlock, err := s.lockHost(ctx, params.Conn)
	if err != nil {
		return ControlVideoResponse{}, err
	}
	defer unlock()

	state := domain.VideoState{
		IsPlaying:   params.Action == ActionPlay,
		CurrentTime: rm.VideoState.CurrentTime,
		LastUpdate:  s.now(),
	}
	if params.CurrentTime != nil {
		state.CurrentTime = *params.CurrentTime
	}

	if _, err := s.roomRepo.Update(ctx, &room.UpdateParams{
		Code:       b.RoomCode,
		VideoState: &state,
	}); err != nil {
		return ControlVideoResponse{}, mapStoreError(err)
	}

	s.broadcast(b.RoomCode, domain.NewEvent(domain.EventVideoControl, domain.VideoControlPayload{
		Action:      params.Action,
		CurrentTime: params.CurrentTime,
	}))
	videoControls.Add(ctx, 1)

	return ControlVideoResponse{VideoState: state}, nil
}
