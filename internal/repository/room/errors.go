package room

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already exists")
	ErrParticipantBanned   = errors.New("participant is banned")
	ErrParticipantsLimit   = errors.New("participants limit reached")
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrJoinRequestExists   = errors.New("join request already exists")
	ErrCodeSpaceExhausted  = errors.New("failed to generate unique room code")
)
