package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

type CreateRoomParams struct {
	Conn     domain.Conn
	RoomName string
	UserName string
	Avatar   string
}

type CreateRoomResponse struct {
	Room          *domain.Room
	ParticipantId string
}

func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if _, err := s.connRepo.Binding(params.Conn.Id()); err == nil {
		return CreateRoomResponse{}, ErrAlreadyInRoom
	}

	rm, err := s.roomRepo.Create(ctx, &room.CreateParams{
		Name:        params.RoomName,
		HostName:    params.UserName,
		HostAvatar:  params.Avatar,
		IsMuted:     false,
		IsCameraOff: true,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to create room", "error", err)
		return CreateRoomResponse{}, err
	}

	unlock := s.locker.Lock(rm.Code)
	defer unlock()

	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", rm.Code))
	if err := s.connRepo.Associate(params.Conn, rm.Code, rm.HostId); err != nil {
		s.logger.InfoContext(ctx, "failed to associate host conn", "error", err)
		if err := s.roomRepo.Delete(ctx, rm.Code); err != nil {
			s.logger.InfoContext(ctx, "failed to delete room", "error", err)
		}
		return CreateRoomResponse{}, ErrAlreadyInRoom
	}

	s.send(ctx, params.Conn, domain.NewEvent(domain.EventRoomCreated, domain.RoomSession{
		Room:          rm,
		ParticipantId: rm.HostId,
	}))

	roomsCreated.Add(ctx, 1)
	roomsActive.Add(ctx, 1)
	s.logger.InfoContext(ctx, "room created", "host_id", rm.HostId)

	return CreateRoomResponse{
		Room:          rm,
		ParticipantId: rm.HostId,
	}, nil
}

// Disconnect is the single teardown path for a connection. It is called once the
// connection's read loop has ended, whatever the reason.
func (s *service) Disconnect(ctx context.Context, conn domain.Conn) {
	b, err := s.connRepo.Binding(conn.Id())
	if err != nil {
		return
	}

	unlock := s.locker.Lock(b.RoomCode)
	defer unlock()

	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", b.RoomCode))

	// Kick, deny and room close unbind the conn themselves.
	b, err = s.connRepo.Remove(conn.Id())
	if errors.Is(err, connection.ErrNotFound) {
		return
	}

	if !b.Admitted() {
		s.cancelJoinRequest(ctx, b.RoomCode, conn.Id())
		return
	}

	rm, err := s.roomRepo.Get(ctx, b.RoomCode)
	if err != nil {
		s.logger.DebugContext(ctx, "room already gone", "error", err)
		return
	}

	if rm.HostId == b.ParticipantId {
		s.closeRoom(ctx, b.RoomCode)
		return
	}

	if _, err := s.roomRepo.RemoveParticipant(ctx, b.RoomCode, b.ParticipantId); err != nil {
		s.logger.DebugContext(ctx, "failed to remove participant", "error", err)
		return
	}

	s.broadcast(b.RoomCode, domain.NewEvent(domain.EventParticipantLeft, domain.ParticipantLeftPayload{
		ParticipantId: b.ParticipantId,
	}))
	s.logger.InfoContext(ctx, "participant left", "participant_id", b.ParticipantId)
}

// closeRoom must be called with the room lock held.
func (s *service) closeRoom(ctx context.Context, roomCode string) {
	closed := domain.NewEvent(domain.EventRoomClosed, nil)
	for _, conn := range s.connRepo.RemoveRoom(roomCode) {
		if conn.IsOpen() {
			s.send(ctx, conn, closed)
		}
		if err := conn.Close(); err != nil {
			s.logger.DebugContext(ctx, "failed to close conn", "conn_id", conn.Id(), "error", err)
		}
	}

	if err := s.roomRepo.Delete(ctx, roomCode); err != nil {
		s.logger.InfoContext(ctx, "failed to delete room", "error", err)
		return
	}

	roomsClosed.Add(ctx, 1)
	roomsActive.Add(ctx, -1)
	s.logger.InfoContext(ctx, "room closed")
}
