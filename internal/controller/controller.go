package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/liveness"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	ApproveJoin(context.Context, *room.DecideJoinParams) (room.ApproveJoinResponse, error)
	DenyJoin(context.Context, *room.DecideJoinParams) error
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	SetVideoSource(context.Context, *room.SetVideoSourceParams) (room.SetVideoSourceResponse, error)
	ControlVideo(context.Context, *room.ControlVideoParams) (room.ControlVideoResponse, error)
	ApplyParticipantAction(context.Context, *room.ParticipantActionParams) error
	UpdatePresence(context.Context, *room.UpdatePresenceParams) (domain.Participant, error)
	Disconnect(context.Context, domain.Conn)
	Stats() room.Stats
}

type iMonitor interface {
	Track(liveness.Peer)
	Untrack(id string)
	MarkAlive(id string)
}

type Config struct {
	MaxMessageSize int64
	// RateLimit is the sustained number of inbound frames per second per connection.
	RateLimit  float64
	RateBurst  int
	SendBuffer int
}

type controller struct {
	roomService iRoomService
	monitor     iMonitor
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsRouter    *wsrouter.WSRouter[*wsConn]
	cfg         Config
	logger      *slog.Logger
}

func NewController(roomService iRoomService, monitor iMonitor, cfg Config, logger *slog.Logger) *controller {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		monitor:     monitor,
		validate:    validator.NewValidator(),
		cfg:         cfg,
		logger:      logger,
	}

	if err := c.validate.RegisterAllowedValues("avatar", domain.AvatarOptions); err != nil {
		panic(err)
	}
	c.wsRouter = c.getWSRouter()

	return c
}
