package controller

import (
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

const (
	typeCreateRoom        = "create-room"
	typeJoinRoom          = "join-room"
	typeApproveJoin       = "approve-join"
	typeDenyJoin          = "deny-join"
	typeSendMessage       = "send-message"
	typeSetVideoSource    = "set-video-source"
	typeVideoControl      = "video-control"
	typeParticipantAction = "participant-action"
	typeUpdatePresence    = "update-presence"
)

func (c controller) getWSRouter() *wsrouter.WSRouter[*wsConn] {
	r := wsrouter.New[*wsConn]()
	r.Use(c.wsRecoverMw, c.wsRequestIdMw, c.wsLoggingMw)

	wsrouter.Handle(r, typeCreateRoom, c.handleCreateRoom)
	wsrouter.Handle(r, typeJoinRoom, c.handleJoinRoom)
	wsrouter.Handle(r, typeApproveJoin, c.handleApproveJoin)
	wsrouter.Handle(r, typeDenyJoin, c.handleDenyJoin)
	wsrouter.Handle(r, typeSendMessage, c.handleSendMessage)
	wsrouter.Handle(r, typeSetVideoSource, c.handleSetVideoSource)
	wsrouter.Handle(r, typeVideoControl, c.handleVideoControl)
	wsrouter.Handle(r, typeParticipantAction, c.handleParticipantAction)
	wsrouter.Handle(r, typeUpdatePresence, c.handleUpdatePresence)

	return r
}
