package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

const (
	msgInvalidRequest     = "Invalid request"
	msgInternalError      = "Internal error"
	msgRateLimited        = "Rate limit exceeded"
	msgRoomNotFound       = "Room not found"
	msgAlreadyInRoom      = "Already in a room"
	msgJoinPending        = "A join request is already pending"
	msgRoomFull           = "Room is full"
	msgBanned             = "You are banned from this room"
	msgInvalidTarget      = "Invalid target"
	msgInvalidVideoSource = "Invalid video source"
)

var errPanic = errors.New("panic while handling message")

type validationError struct {
	errs []validator.ValidationError
}

func (e *validationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.errs)
}

// ErrorOutput is the error event payload, with field details for invalid input.
type ErrorOutput struct {
	domain.ErrorPayload
	Errors []validator.ValidationError `json:"errors,omitempty"`
}

func errorOutput(message string) ErrorOutput {
	return ErrorOutput{ErrorPayload: domain.ErrorPayload{Message: message}}
}

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + uuid.NewString()[:8]
}

func (c controller) validateInput(input any) error {
	if errs, ok := c.validate.Validate(input); !ok {
		return &validationError{errs: errs}
	}

	return nil
}

func (c controller) writeError(ctx context.Context, conn domain.Conn, out ErrorOutput) {
	if err := conn.Send(domain.NewEvent(domain.EventError, out)); err != nil {
		c.logger.DebugContext(ctx, "failed to send error", "error", err)
	}
}

// handleError replies to a rejected frame. Authority and lookup failures are
// dropped without a reply.
func (c controller) handleError(ctx context.Context, conn domain.Conn, err error) {
	var vErr *validationError
	if errors.As(err, &vErr) {
		c.logger.DebugContext(ctx, "invalid payload", "error", err)
		out := errorOutput(msgInvalidRequest)
		out.Errors = vErr.errs
		c.writeError(ctx, conn, out)
		return
	}

	var msg string
	switch {
	case errors.Is(err, wsrouter.ErrMalformedFrame),
		errors.Is(err, wsrouter.ErrUnknownType),
		errors.Is(err, wsrouter.ErrInvalidPayload):
		msg = msgInvalidRequest
	case errors.Is(err, room.ErrRoomNotFound):
		msg = msgRoomNotFound
	case errors.Is(err, room.ErrAlreadyInRoom):
		msg = msgAlreadyInRoom
	case errors.Is(err, room.ErrJoinRequestPending):
		msg = msgJoinPending
	case errors.Is(err, room.ErrRoomFull):
		msg = msgRoomFull
	case errors.Is(err, room.ErrBanned):
		msg = msgBanned
	case errors.Is(err, room.ErrInvalidTarget):
		msg = msgInvalidTarget
	case errors.Is(err, room.ErrInvalidVideoSource):
		msg = msgInvalidVideoSource
	case errors.Is(err, room.ErrNotAdmitted),
		errors.Is(err, room.ErrPermissionDenied),
		errors.Is(err, room.ErrParticipantNotFound),
		errors.Is(err, room.ErrNoPendingRequest),
		errors.Is(err, room.ErrJoinerGone):
		c.logger.DebugContext(ctx, "message ignored", "error", err)
		return
	case errors.Is(err, errPanic):
		msg = msgInternalError
	default:
		c.logger.WarnContext(ctx, "failed to handle message", "error", err)
		msg = msgInternalError
	}

	frameErrors.Add(ctx, 1)
	c.logger.DebugContext(ctx, "message rejected", "error", err, "reply", msg)
	c.writeError(ctx, conn, errorOutput(msg))
}
