package inmemory

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
)

// SetPendingJoinRequest stores req as the single outstanding request of the room.
func (r *repo) SetPendingJoinRequest(ctx context.Context, code string, req domain.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return err
	}
	if state.pending != nil {
		return room.ErrJoinRequestExists
	}
	state.pending = &req

	return nil
}

func (r *repo) GetPendingJoinRequest(ctx context.Context, code string) (domain.JoinRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, err := r.getState(code)
	if err != nil {
		return domain.JoinRequest{}, err
	}
	if state.pending == nil {
		return domain.JoinRequest{}, room.ErrJoinRequestNotFound
	}

	return *state.pending, nil
}

func (r *repo) ClearPendingJoinRequest(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return err
	}
	if state.pending == nil {
		return room.ErrJoinRequestNotFound
	}
	state.pending = nil

	return nil
}
