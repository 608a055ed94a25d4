package inmemory

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
)

// AddMessage appends msg. With a positive limit the oldest messages beyond it are dropped.
func (r *repo) AddMessage(ctx context.Context, code string, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return err
	}

	state.room.Messages = append(state.room.Messages, msg)
	if r.messagesLimit > 0 && len(state.room.Messages) > r.messagesLimit {
		overflow := len(state.room.Messages) - r.messagesLimit
		state.room.Messages = append(state.room.Messages[:0:0], state.room.Messages[overflow:]...)
	}

	return nil
}

func (r *repo) AddReaction(ctx context.Context, code string, reaction domain.ReactionOverlay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return err
	}
	state.room.Reactions = append(state.room.Reactions, reaction)

	return nil
}

// ExpireReactions drops overlays with a timestamp before the given unix millis and
// reports how many were removed.
func (r *repo) ExpireReactions(ctx context.Context, code string, before int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.getState(code)
	if err != nil {
		return 0, err
	}

	kept := state.room.Reactions[:0]
	for _, reaction := range state.room.Reactions {
		if reaction.Timestamp >= before {
			kept = append(kept, reaction)
		}
	}
	removed := len(state.room.Reactions) - len(kept)
	state.room.Reactions = kept

	return removed, nil
}
