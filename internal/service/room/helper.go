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

// lockAdmitted locks the room of an admitted connection. The binding is read again
// under the lock so a participant removed meanwhile is rejected.
func (s *service) lockAdmitted(ctx context.Context, conn domain.Conn) (context.Context, connection.Binding, func(), error) {
	b, err := s.connRepo.Binding(conn.Id())
	if err != nil || !b.Admitted() {
		return ctx, connection.Binding{}, nil, ErrNotAdmitted
	}

	unlock := s.locker.Lock(b.RoomCode)
	current, err := s.connRepo.Binding(conn.Id())
	if err != nil || current != b {
		unlock()
		return ctx, connection.Binding{}, nil, ErrNotAdmitted
	}

	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", b.RoomCode))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("participant_id", b.ParticipantId))
	return ctx, b, unlock, nil
}

// lockHost is lockAdmitted plus a check that the sender is the current host.
func (s *service) lockHost(ctx context.Context, conn domain.Conn) (context.Context, connection.Binding, *domain.Room, func(), error) {
	ctx, b, unlock, err := s.lockAdmitted(ctx, conn)
	if err != nil {
		return ctx, b, nil, nil, err
	}

	rm, err := s.roomRepo.Get(ctx, b.RoomCode)
	if err != nil {
		unlock()
		s.logger.DebugContext(ctx, "failed to get room", "error", err)
		return ctx, b, nil, nil, ErrRoomNotFound
	}

	if rm.HostId != b.ParticipantId {
		unlock()
		s.logger.DebugContext(ctx, "sender is not host")
		return ctx, b, nil, nil, ErrPermissionDenied
	}

	return ctx, b, rm, unlock, nil
}

func (s *service) send(ctx context.Context, conn domain.Conn, ev *domain.Event) {
	if err := conn.Send(ev); err != nil {
		s.logger.DebugContext(ctx, "failed to send event", "conn_id", conn.Id(), "type", ev.Type, "error", err)
	}
}

func (s *service) broadcast(roomCode string, ev *domain.Event) {
	s.connRepo.Broadcast(roomCode, ev, "")
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, room.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, room.ErrParticipantsLimit):
		return ErrRoomFull
	case errors.Is(err, room.ErrParticipantBanned):
		return ErrBanned
	case errors.Is(err, room.ErrJoinRequestExists):
		return ErrJoinRequestPending
	case errors.Is(err, room.ErrJoinRequestNotFound):
		return ErrNoPendingRequest
	default:
		return err
	}
}
