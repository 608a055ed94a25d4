package room

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ActionMute         = "mute"
	ActionUnmute       = "unmute"
	ActionKick         = "kick"
	ActionBan          = "ban"
	ActionTransferHost = "transfer-host"
)

type ParticipantActionParams struct {
	Conn          domain.Conn
	ParticipantId string
	Action        string
}

func (s *service) ApplyParticipantAction(ctx context.Context, params *ParticipantActionParams) error {
	ctx, b, _, unlock, err := s.lockHost(ctx, params.Conn)
	if err != nil {
		return err
	}
	defer unlock()

	if params.ParticipantId == b.ParticipantId {
		switch params.Action {
		case ActionKick, ActionBan, ActionTransferHost:
			return ErrInvalidTarget
		}
	}

	if _, err := s.roomRepo.GetParticipant(ctx, b.RoomCode, params.ParticipantId); err != nil {
		s.logger.DebugContext(ctx, "target not found", "target_id", params.ParticipantId)
		return mapStoreError(err)
	}

	switch params.Action {
	case ActionMute, ActionUnmute:
		err = s.setMuted(ctx, b.RoomCode, params.ParticipantId, params.Action == ActionMute)
	case ActionKick, ActionBan:
		err = s.removeParticipant(ctx, b.RoomCode, params.ParticipantId, params.Action == ActionBan)
	case ActionTransferHost:
		err = s.transferHost(ctx, b.RoomCode, params.ParticipantId)
	default:
		return ErrInvalidTarget
	}
	if err != nil {
		return err
	}

	participantActions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", params.Action)))
	s.logger.InfoContext(ctx, "participant action applied", "action", params.Action, "target_id", params.ParticipantId)
	return nil
}

func (s *service) setMuted(ctx context.Context, roomCode, participantId string, muted bool) error {
	p, err := s.roomRepo.UpdateParticipant(ctx, &room.UpdateParticipantParams{
		Code:          roomCode,
		ParticipantId: participantId,
		IsMuted:       &muted,
	})
	if err != nil {
		return mapStoreError(err)
	}

	s.broadcast(roomCode, domain.NewEvent(domain.EventParticipantUpdated, domain.ParticipantPayload{Participant: p}))
	return nil
}

// removeParticipant evicts the target. Its conn is unbound first so it gets room-closed
// and not the participant-left broadcast.
func (s *service) removeParticipant(ctx context.Context, roomCode, participantId string, ban bool) error {
	if ban {
		if err := s.roomRepo.BanParticipant(ctx, roomCode, participantId); err != nil {
			return mapStoreError(err)
		}
	}

	if _, err := s.roomRepo.RemoveParticipant(ctx, roomCode, participantId); err != nil {
		return mapStoreError(err)
	}

	if target, err := s.connRepo.GetByParticipantId(roomCode, participantId); err == nil {
		if _, err := s.connRepo.Remove(target.Id()); err != nil {
			s.logger.DebugContext(ctx, "failed to unbind target conn", "error", err)
		}
		if target.IsOpen() {
			s.send(ctx, target, domain.NewEvent(domain.EventRoomClosed, nil))
		}
		if err := target.Close(); err != nil {
			s.logger.DebugContext(ctx, "failed to close target conn", "error", err)
		}
	}

	s.broadcast(roomCode, domain.NewEvent(domain.EventParticipantLeft, domain.ParticipantLeftPayload{
		ParticipantId: participantId,
	}))
	return nil
}

func (s *service) transferHost(ctx context.Context, roomCode, newHostId string) error {
	res, err := s.roomRepo.TransferHost(ctx, &room.TransferHostParams{
		Code:      roomCode,
		NewHostId: newHostId,
	})
	if err != nil {
		return mapStoreError(err)
	}

	s.broadcast(roomCode, domain.NewEvent(domain.EventParticipantUpdated, domain.ParticipantPayload{Participant: res.OldHost}))
	s.broadcast(roomCode, domain.NewEvent(domain.EventParticipantUpdated, domain.ParticipantPayload{Participant: res.NewHost}))
	return nil
}

type UpdatePresenceParams struct {
	Conn        domain.Conn
	IsMuted     *bool
	IsCameraOff *bool
}

// UpdatePresence changes the sender's own presence flags.
func (s *service) UpdatePresence(ctx context.Context, params *UpdatePresenceParams) (domain.Participant, error) {
	ctx, b, unlock, err := s.lockAdmitted(ctx, params.Conn)
	if err != nil {
		return domain.Participant{}, err
	}
	defer unlock()

	p, err := s.roomRepo.UpdateParticipant(ctx, &room.UpdateParticipantParams{
		Code:          b.RoomCode,
		ParticipantId: b.ParticipantId,
		IsMuted:       params.IsMuted,
		IsCameraOff:   params.IsCameraOff,
	})
	if err != nil {
		return domain.Participant{}, mapStoreError(err)
	}

	s.broadcast(b.RoomCode, domain.NewEvent(domain.EventParticipantUpdated, domain.ParticipantPayload{Participant: p}))
	return p, nil
}
