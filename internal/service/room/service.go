package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrAlreadyInRoom       = errors.New("connection already belongs to a room")
	ErrNotAdmitted         = errors.New("connection is not admitted")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrJoinRequestPending  = errors.New("join request already pending")
	ErrNoPendingRequest    = errors.New("no pending join request")
	ErrJoinerGone          = errors.New("joining connection is gone")
	ErrRoomFull            = errors.New("room is full")
	ErrBanned              = errors.New("participant is banned")
	ErrInvalidTarget       = errors.New("invalid target")
	ErrInvalidVideoSource  = errors.New("invalid video source")
)

const (
	deniedReason   = "The host denied your request to join"
	roomFullReason = "Room is full"

	enrichTimeout = 10 * time.Second
)

type iRoomRepo interface {
	Create(context.Context, *room.CreateParams) (*domain.Room, error)
	Get(ctx context.Context, code string) (*domain.Room, error)
	Update(context.Context, *room.UpdateParams) (*domain.Room, error)
	Delete(ctx context.Context, code string) error
	Count() int
	Codes() []string
	// participant
	AddParticipant(context.Context, *room.AddParticipantParams) (*domain.Room, error)
	RemoveParticipant(ctx context.Context, code, participantId string) (domain.Participant, error)
	GetParticipant(ctx context.Context, code, participantId string) (domain.Participant, error)
	UpdateParticipant(context.Context, *room.UpdateParticipantParams) (domain.Participant, error)
	TransferHost(context.Context, *room.TransferHostParams) (room.TransferHostResult, error)
	BanParticipant(ctx context.Context, code, participantId string) error
	// messages
	AddMessage(ctx context.Context, code string, msg domain.Message) error
	AddReaction(ctx context.Context, code string, reaction domain.ReactionOverlay) error
	ExpireReactions(ctx context.Context, code string, before int64) (int, error)
	// join requests
	SetPendingJoinRequest(ctx context.Context, code string, req domain.JoinRequest) error
	GetPendingJoinRequest(ctx context.Context, code string) (domain.JoinRequest, error)
	ClearPendingJoinRequest(ctx context.Context, code string) error
}

type iConnRepo interface {
	Associate(conn domain.Conn, roomCode, participantId string) error
	Promote(connId, participantId string) error
	Remove(connId string) (connection.Binding, error)
	RemoveRoom(roomCode string) []domain.Conn
	Binding(connId string) (connection.Binding, error)
	GetByParticipantId(roomCode, participantId string) (domain.Conn, error)
	FindPending(roomCode, connId string) (domain.Conn, error)
	Broadcast(roomCode string, ev *domain.Event, excludeConnId string) int
	Count() int
}

type iVideoDataGetter interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

type Config struct {
	ParticipantsLimit int
	ReactionTTL       time.Duration
	Clock             clockwork.Clock
	// VideoData enables metadata lookup for youtube sources when set.
	VideoData iVideoDataGetter
}

type service struct {
	roomRepo          iRoomRepo
	connRepo          iConnRepo
	videoData         iVideoDataGetter
	locker            *roomLocker
	clock             clockwork.Clock
	participantsLimit int
	reactionTTL       time.Duration
	logger            *slog.Logger
	wg                sync.WaitGroup
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &service{
		roomRepo:          roomRepo,
		connRepo:          connRepo,
		videoData:         cfg.VideoData,
		locker:            newRoomLocker(),
		clock:             clock,
		participantsLimit: cfg.ParticipantsLimit,
		reactionTTL:       cfg.ReactionTTL,
		logger:            logger,
	}
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

func (s *service) Stats() Stats {
	return Stats{
		Rooms:       s.roomRepo.Count(),
		Connections: s.connRepo.Count(),
	}
}

// Wait blocks until background video metadata lookups finish.
func (s *service) Wait() {
	s.wg.Wait()
}

func (s *service) now() int64 {
	return s.clock.Now().UnixMilli()
}
