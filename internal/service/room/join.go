package room

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
)

type JoinRoomParams struct {
	Conn     domain.Conn
	RoomCode string
	UserName string
	Avatar   string
}

type JoinRoomResponse struct {
	RequestId string
}

// JoinRoom records a pending join request and forwards it to the host.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if _, err := s.connRepo.Binding(params.Conn.Id()); err == nil {
		return JoinRoomResponse{}, ErrAlreadyInRoom
	}

	unlock := s.locker.Lock(params.RoomCode)
	defer unlock()

	rm, err := s.roomRepo.Get(ctx, params.RoomCode)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to get room", "room_code", params.RoomCode, "error", err)
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	if s.participantsLimit > 0 && len(rm.Participants) >= s.participantsLimit {
		return JoinRoomResponse{}, ErrRoomFull
	}

	hostConn, err := s.connRepo.GetByParticipantId(rm.Code, rm.HostId)
	if err != nil {
		s.logger.DebugContext(ctx, "host conn not found", "room_code", rm.Code, "error", err)
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	req := domain.JoinRequest{
		Id:          uuid.NewString(),
		ConnId:      params.Conn.Id(),
		Name:        params.UserName,
		Avatar:      params.Avatar,
		IsMuted:     false,
		IsCameraOff: true,
		RequestedAt: s.now(),
	}
	if err := s.roomRepo.SetPendingJoinRequest(ctx, rm.Code, req); err != nil {
		return JoinRoomResponse{}, mapStoreError(err)
	}

	if err := s.connRepo.Associate(params.Conn, rm.Code, ""); err != nil {
		s.logger.InfoContext(ctx, "failed to associate joining conn", "error", err)
		if err := s.roomRepo.ClearPendingJoinRequest(ctx, rm.Code); err != nil {
			s.logger.DebugContext(ctx, "failed to clear join request", "error", err)
		}
		return JoinRoomResponse{}, ErrAlreadyInRoom
	}

	s.send(ctx, hostConn, domain.NewEvent(domain.EventJoinRequest, domain.JoinRequestPayload{
		RequestId:   req.Id,
		Participant: req.Preview(),
	}))

	joinRequests.Add(ctx, 1)
	s.logger.DebugContext(ctx, "join request forwarded", "room_code", rm.Code, "request_id", req.Id)

	return JoinRoomResponse{RequestId: req.Id}, nil
}

type DecideJoinParams struct {
	Conn domain.Conn
	// RequestId optionally pins the decision to a specific request.
	RequestId string
}

type ApproveJoinResponse struct {
	Participant domain.Participant
}

// takePendingRequest clears and returns the pending request along with the joining connection.
// Must be called with the room lock held.
func (s *service) takePendingRequest(ctx context.Context, roomCode, requestId string) (domain.JoinRequest, domain.Conn, error) {
	req, err := s.roomRepo.GetPendingJoinRequest(ctx, roomCode)
	if err != nil {
		return domain.JoinRequest{}, nil, mapStoreError(err)
	}
	if requestId != "" && requestId != req.Id {
		return domain.JoinRequest{}, nil, ErrNoPendingRequest
	}

	if err := s.roomRepo.ClearPendingJoinRequest(ctx, roomCode); err != nil {
		return domain.JoinRequest{}, nil, mapStoreError(err)
	}

	joiner, err := s.connRepo.FindPending(roomCode, req.ConnId)
	if err != nil || !joiner.IsOpen() {
		s.logger.DebugContext(ctx, "joining conn is gone", "request_id", req.Id)
		return req, nil, ErrJoinerGone
	}

	return req, joiner, nil
}

func (s *service) ApproveJoin(ctx context.Context, params *DecideJoinParams) (ApproveJoinResponse, error) {
	ctx, b, _, unlock, err := s.lockHost(ctx, params.Conn)
	if err != nil {
		return ApproveJoinResponse{}, err
	}
	defer unlock()

	req, joiner, err := s.takePendingRequest(ctx, b.RoomCode, params.RequestId)
	if err != nil {
		return ApproveJoinResponse{}, err
	}

	participant := req.Participant(uuid.NewString(), s.now())
	rm, err := s.roomRepo.AddParticipant(ctx, &room.AddParticipantParams{
		Code:        b.RoomCode,
		Participant: participant,
		Limit:       s.participantsLimit,
	})
	if err != nil {
		err = mapStoreError(err)
		if errors.Is(err, ErrRoomFull) {
			s.rejectJoiner(ctx, joiner, roomFullReason)
		}
		return ApproveJoinResponse{}, err
	}

	if err := s.connRepo.Promote(joiner.Id(), participant.Id); err != nil {
		s.logger.InfoContext(ctx, "failed to promote joining conn", "error", err)
		if _, err := s.roomRepo.RemoveParticipant(ctx, b.RoomCode, participant.Id); err != nil {
			s.logger.DebugContext(ctx, "failed to roll back participant", "error", err)
		}
		return ApproveJoinResponse{}, ErrJoinerGone
	}

	s.send(ctx, joiner, domain.NewEvent(domain.EventJoinApproved, domain.RoomSession{
		Room:          rm,
		ParticipantId: participant.Id,
	}))
	s.connRepo.Broadcast(b.RoomCode, domain.NewEvent(domain.EventParticipantJoined, domain.ParticipantPayload{
		Participant: participant,
	}), joiner.Id())

	joinsApproved.Add(ctx, 1)
	s.logger.InfoContext(ctx, "participant joined", "joined_id", participant.Id)

	return ApproveJoinResponse{Participant: participant}, nil
}

func (s *service) DenyJoin(ctx context.Context, params *DecideJoinParams) error {
	ctx, b, _, unlock, err := s.lockHost(ctx, params.Conn)
	if err != nil {
		return err
	}
	defer unlock()

	_, joiner, err := s.takePendingRequest(ctx, b.RoomCode, params.RequestId)
	if err != nil {
		return err
	}

	s.rejectJoiner(ctx, joiner, deniedReason)
	joinsDenied.Add(ctx, 1)

	return nil
}

// rejectJoiner unbinds the joining conn, tells it why and closes it.
func (s *service) rejectJoiner(ctx context.Context, joiner domain.Conn, reason string) {
	if _, err := s.connRepo.Remove(joiner.Id()); err != nil {
		s.logger.DebugContext(ctx, "failed to unbind joining conn", "error", err)
	}
	s.send(ctx, joiner, domain.NewEvent(domain.EventJoinDenied, domain.JoinDeniedPayload{Reason: reason}))
	if err := joiner.Close(); err != nil {
		s.logger.DebugContext(ctx, "failed to close joining conn", "error", err)
	}
}

// cancelJoinRequest drops the pending request of a joiner that went away and tells the host.
// Must be called with the room lock held.
func (s *service) cancelJoinRequest(ctx context.Context, roomCode, connId string) {
	req, err := s.roomRepo.GetPendingJoinRequest(ctx, roomCode)
	if err != nil || req.ConnId != connId {
		return
	}
	if err := s.roomRepo.ClearPendingJoinRequest(ctx, roomCode); err != nil {
		return
	}

	joinsCanceled.Add(ctx, 1)
	rm, err := s.roomRepo.Get(ctx, roomCode)
	if err != nil {
		return
	}
	hostConn, err := s.connRepo.GetByParticipantId(roomCode, rm.HostId)
	if err != nil {
		return
	}

	s.send(ctx, hostConn, domain.NewEvent(domain.EventJoinCancelled, domain.JoinCancelledPayload{RequestId: req.Id}))
}
