package inmemory

import (
	"context"
	"slices"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func indexOfParticipant(rm *domain.Room, id string) int {
	return slices.IndexFunc(rm.Participants, func(p domain.Participant) bool {
		return p.Id == id
	})
}

func (r *repo) AddParticipant(ctx context.Context, params *room.AddParticipantParams) (*domain.Room, error) {
	funcName := "room.inmemory.AddParticipant"
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(params.Code)
	if err != nil {
		return nil, err
	}

	if _, banned := state.banned[params.Participant.Id]; banned {
		r.logger.DebugContext(ctx, funcName, "error", room.ErrParticipantBanned)
		return nil, room.ErrParticipantBanned
	}
	if indexOfParticipant(state.room, params.Participant.Id) != -1 {
		return nil, room.ErrParticipantExists
	}
	if params.Limit > 0 && len(state.room.Participants) >= params.Limit {
		return nil, room.ErrParticipantsLimit
	}

	p := params.Participant
	p.IsHost = false
	state.room.Participants = append(state.room.Participants, p)

	r.logger.DebugContext(ctx, funcName, "participant_id", p.Id)
	return state.room.Clone(), nil
}

func (r *repo) RemoveParticipant(ctx context.Context, code, participantId string) (domain.Participant, error) {
	funcName := "room.inmemory.RemoveParticipant"
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return domain.Participant{}, err
	}

	i := indexOfParticipant(state.room, participantId)
	if i == -1 {
		return domain.Participant{}, room.ErrParticipantNotFound
	}
	removed := state.room.Participants[i]
	state.room.Participants = slices.Delete(state.room.Participants, i, i+1)

	r.logger.DebugContext(ctx, funcName, "participant_id", participantId)
	return removed, nil
}

func (r *repo) GetParticipant(ctx context.Context, code, participantId string) (domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, err := r.getState(code)
	if err != nil {
		return domain.Participant{}, err
	}

	p, ok := state.room.Participant(participantId)
	if !ok {
		return domain.Participant{}, room.ErrParticipantNotFound
	}

	return p, nil
}

// UpdateParticipant applies the non-nil flags. A missing room or participant is reported
// as ErrRoomNotFound or ErrParticipantNotFound and leaves the store untouched.
func (r *repo) UpdateParticipant(ctx context.Context, params *room.UpdateParticipantParams) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(params.Code)
	if err != nil {
		return domain.Participant{}, err
	}

	i := indexOfParticipant(state.room, params.ParticipantId)
	if i == -1 {
		return domain.Participant{}, room.ErrParticipantNotFound
	}

	p := &state.room.Participants[i]
	if params.IsMuted != nil {
		p.IsMuted = *params.IsMuted
	}
	if params.IsCameraOff != nil {
		p.IsCameraOff = *params.IsCameraOff
	}

	return *p, nil
}

// TransferHost moves the host flag and hostId in one step.
func (r *repo) TransferHost(ctx context.Context, params *room.TransferHostParams) (room.TransferHostResult, error) {
	funcName := "room.inmemory.TransferHost"
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(params.Code)
	if err != nil {
		return room.TransferHostResult{}, err
	}

	oldIdx := indexOfParticipant(state.room, state.room.HostId)
	newIdx := indexOfParticipant(state.room, params.NewHostId)
	if oldIdx == -1 || newIdx == -1 {
		return room.TransferHostResult{}, room.ErrParticipantNotFound
	}

	state.room.Participants[oldIdx].IsHost = false
	state.room.Participants[newIdx].IsHost = true
	state.room.HostId = params.NewHostId

	r.logger.DebugContext(ctx, funcName, "old_host_id", state.room.Participants[oldIdx].Id, "new_host_id", params.NewHostId)
	return room.TransferHostResult{
		OldHost: state.room.Participants[oldIdx],
		NewHost: state.room.Participants[newIdx],
	}, nil
}

func (r *repo) BanParticipant(ctx context.Context, code, participantId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return err
	}
	state.banned[participantId] = struct{}{}

	return nil
}
