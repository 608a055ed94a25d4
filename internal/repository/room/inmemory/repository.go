package inmemory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
)

const (
	codeLength      = 6
	maxCodeAttempts = 1000
)

var codeLetters = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

type iGenerator interface {
	GenerateRandomString(length int) string
}

type roomState struct {
	room    *domain.Room
	pending *domain.JoinRequest
	banned  map[string]struct{}
}

type repo struct {
	rooms         map[string]*roomState
	generator     iGenerator
	messagesLimit int
	logger        *slog.Logger
	mu            sync.RWMutex
}

func NewRepo(generator iGenerator, messagesLimit int, logger *slog.Logger) *repo {
	return &repo{
		rooms:         make(map[string]*roomState),
		generator:     generator,
		messagesLimit: messagesLimit,
		logger:        logger,
	}
}

func CodeLetters() []byte {
	return codeLetters
}

func (r *repo) generateCode() (string, error) {
	for range maxCodeAttempts {
		code := r.generator.GenerateRandomString(codeLength)
		if _, exists := r.rooms[code]; !exists {
			return code, nil
		}
	}

	return "", room.ErrCodeSpaceExhausted
}

func (r *repo) Create(ctx context.Context, params *room.CreateParams) (*domain.Room, error) {
	funcName := "room.inmemory.Create"
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.generateCode()
	if err != nil {
		r.logger.WarnContext(ctx, funcName, "error", err)
		return nil, err
	}

	host := domain.Participant{
		Id:          uuid.NewString(),
		Name:        params.HostName,
		Avatar:      params.HostAvatar,
		IsHost:      true,
		IsMuted:     params.IsMuted,
		IsCameraOff: params.IsCameraOff,
		JoinedAt:    params.CreatedAt,
	}

	rm := &domain.Room{
		Id:           uuid.NewString(),
		Code:         code,
		Name:         params.Name,
		HostId:       host.Id,
		Participants: []domain.Participant{host},
		Messages:     []domain.Message{},
		Reactions:    []domain.ReactionOverlay{},
		VideoState:   domain.VideoState{LastUpdate: params.CreatedAt},
		CreatedAt:    params.CreatedAt,
	}
	r.rooms[code] = &roomState{
		room:   rm,
		banned: make(map[string]struct{}),
	}

	r.logger.DebugContext(ctx, funcName, "room_code", code, "host_id", host.Id)
	return rm.Clone(), nil
}

func (r *repo) Get(ctx context.Context, code string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[code]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return state.room.Clone(), nil
}

func (r *repo) Update(ctx context.Context, params *room.UpdateParams) (*domain.Room, error) {
	funcName := "room.inmemory.Update"
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, funcName, "error", room.ErrRoomNotFound)
		return nil, room.ErrRoomNotFound
	}

	if params.VideoSource != nil {
		state.room.VideoSource = params.VideoSource.Clone()
	}
	if params.VideoState != nil {
		state.room.VideoState = *params.VideoState
	}

	return state.room.Clone(), nil
}

// Delete removes the room together with its pending request and ban list.
func (r *repo) Delete(ctx context.Context, code string) error {
	funcName := "room.inmemory.Delete"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; !ok {
		return room.ErrRoomNotFound
	}
	delete(r.rooms, code)

	r.logger.DebugContext(ctx, funcName, "room_code", code)
	return nil
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *repo) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}

	return codes
}

// getState must be called with mu held.
func (r *repo) getState(code string) (*roomState, error) {
	state, ok := r.rooms[code]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return state, nil
}
