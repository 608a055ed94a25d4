package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/domain"
)

type SendMessageParams struct {
	Conn    domain.Conn
	Content string
	Type    string
}

type SendMessageResponse struct {
	Id string
}

// SendMessage appends a chat message, or for type reaction broadcasts a reaction overlay.
// Both go to the whole room, sender included.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	ctx, b, unlock, err := s.lockAdmitted(ctx, params.Conn)
	if err != nil {
		return SendMessageResponse{}, err
	}
	defer unlock()

	sender, err := s.roomRepo.GetParticipant(ctx, b.RoomCode, b.ParticipantId)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to get sender", "error", err)
		return SendMessageResponse{}, ErrNotAdmitted
	}

	if params.Type == domain.MessageTypeReaction {
		reaction := domain.ReactionOverlay{
			Id:              uuid.NewString(),
			ParticipantId:   sender.Id,
			ParticipantName: sender.Name,
			Emoji:           params.Content,
			Timestamp:       s.now(),
		}
		if err := s.roomRepo.AddReaction(ctx, b.RoomCode, reaction); err != nil {
			return SendMessageResponse{}, mapStoreError(err)
		}

		s.broadcast(b.RoomCode, domain.NewEvent(domain.EventReactionAdded, domain.ReactionPayload{Reaction: reaction}))
		reactionsSent.Add(ctx, 1)
		return SendMessageResponse{Id: reaction.Id}, nil
	}

	msg := domain.Message{
		Id:                uuid.NewString(),
		ParticipantId:     sender.Id,
		ParticipantName:   sender.Name,
		ParticipantAvatar: sender.Avatar,
		Content:           params.Content,
		Timestamp:         s.now(),
		Type:              params.Type,
	}
	if err := s.roomRepo.AddMessage(ctx, b.RoomCode, msg); err != nil {
		return SendMessageResponse{}, mapStoreError(err)
	}

	s.broadcast(b.RoomCode, domain.NewEvent(domain.EventMessageReceived, domain.MessagePayload{Message: msg}))
	messagesSent.Add(ctx, 1)
	return SendMessageResponse{Id: msg.Id}, nil
}

// ExpireReactions removes overlays older than the reaction ttl from every room.
func (s *service) ExpireReactions(ctx context.Context) int {
	cutoff := s.clock.Now().Add(-s.reactionTTL).UnixMilli()

	total := 0
	for _, code := range s.roomRepo.Codes() {
		unlock := s.locker.Lock(code)
		removed, err := s.roomRepo.ExpireReactions(ctx, code, cutoff)
		unlock()
		if err != nil {
			continue
		}
		total += removed
	}

	if total > 0 {
		reactionsExpired.Add(ctx, int64(total))
		s.logger.DebugContext(ctx, "reactions expired", "count", total)
	}
	return total
}

// RunReactionReaper expires reactions every reaction ttl until ctx is done.
func (s *service) RunReactionReaper(ctx context.Context) error {
	interval := s.reactionTTL
	if interval <= 0 {
		interval = time.Second
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.ExpireReactions(ctx)
		}
	}
}
