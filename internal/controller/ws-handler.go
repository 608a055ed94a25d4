package controller

import (
	"context"
	"strings"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/room"
)

type CreateRoomInput struct {
	RoomName string `json:"roomName" validate:"required,min=1,max=100"`
	UserName string `json:"userName" validate:"required,min=1,max=50"`
	Avatar   string `json:"avatar" validate:"required,avatar"`
}

func (c controller) handleCreateRoom(ctx context.Context, conn *wsConn, input CreateRoomInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		Conn:     conn,
		RoomName: input.RoomName,
		UserName: input.UserName,
		Avatar:   input.Avatar,
	})
	return err
}

type JoinRoomInput struct {
	RoomCode string `json:"roomCode" validate:"required,len=6,alphanum,uppercase"`
	UserName string `json:"userName" validate:"required,min=1,max=50"`
	Avatar   string `json:"avatar" validate:"required,avatar"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *wsConn, input JoinRoomInput) error {
	input.RoomCode = strings.ToUpper(input.RoomCode)
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		Conn:     conn,
		RoomCode: input.RoomCode,
		UserName: input.UserName,
		Avatar:   input.Avatar,
	})
	return err
}

type DecideJoinInput struct {
	RequestId string `json:"requestId" validate:"omitempty,uuid"`
}

func (c controller) handleApproveJoin(ctx context.Context, conn *wsConn, input DecideJoinInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.ApproveJoin(ctx, &room.DecideJoinParams{
		Conn:      conn,
		RequestId: input.RequestId,
	})
	return err
}

func (c controller) handleDenyJoin(ctx context.Context, conn *wsConn, input DecideJoinInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.DenyJoin(ctx, &room.DecideJoinParams{
		Conn:      conn,
		RequestId: input.RequestId,
	})
}

type SendMessageInput struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
	Type    string `json:"type" validate:"required,oneof=text reaction gif"`
}

func (c controller) handleSendMessage(ctx context.Context, conn *wsConn, input SendMessageInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		Conn:    conn,
		Content: input.Content,
		Type:    input.Type,
	})
	return err
}

type VideoSourceInput struct {
	Type string `json:"type" validate:"required,oneof=youtube screenshare"`
	Url  string `json:"url" validate:"required_if=Type youtube,excluded_if=Type screenshare,omitempty,url"`
}

type SetVideoSourceInput struct {
	Source VideoSourceInput `json:"source" validate:"required"`
}

func (c controller) handleSetVideoSource(ctx context.Context, conn *wsConn, input SetVideoSourceInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.SetVideoSource(ctx, &room.SetVideoSourceParams{
		Conn: conn,
		Source: domain.VideoSource{
			Type: input.Source.Type,
			Url:  input.Source.Url,
		},
	})
	return err
}

type VideoControlInput struct {
	Action      string   `json:"action" validate:"required,oneof=play pause seek"`
	CurrentTime *float64 `json:"currentTime" validate:"omitempty,gte=0"`
}

func (c controller) handleVideoControl(ctx context.Context, conn *wsConn, input VideoControlInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.ControlVideo(ctx, &room.ControlVideoParams{
		Conn:        conn,
		Action:      input.Action,
		CurrentTime: input.CurrentTime,
	})
	return err
}

type ParticipantActionInput struct {
	ParticipantId string `json:"participantId" validate:"required"`
	Action        string `json:"action" validate:"required,oneof=mute unmute kick ban transfer-host"`
}

func (c controller) handleParticipantAction(ctx context.Context, conn *wsConn, input ParticipantActionInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.ApplyParticipantAction(ctx, &room.ParticipantActionParams{
		Conn:          conn,
		ParticipantId: input.ParticipantId,
		Action:        input.Action,
	})
}

// UpdatePresenceInput must change at least one flag.
type UpdatePresenceInput struct {
	IsMuted     *bool `json:"isMuted" validate:"required_without=IsCameraOff"`
	IsCameraOff *bool `json:"isCameraOff" validate:"required_without=IsMuted"`
}

func (c controller) handleUpdatePresence(ctx context.Context, conn *wsConn, input UpdatePresenceInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	_, err := c.roomService.UpdatePresence(ctx, &room.UpdatePresenceParams{
		Conn:        conn,
		IsMuted:     input.IsMuted,
		IsCameraOff: input.IsCameraOff,
	})
	return err
}
