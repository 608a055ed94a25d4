package controller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/sharetube/watchparty/internal/domain"
	conninmemory "github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	roominmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	"github.com/sharetube/watchparty/internal/service/liveness"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/randstr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// pongCountingMonitor counts pongs on top of the real monitor.
type pongCountingMonitor struct {
	*liveness.Monitor
	pongs atomic.Int64
}

func (m *pongCountingMonitor) MarkAlive(id string) {
	m.Monitor.MarkAlive(id)
	m.pongs.Add(1)
}

type testEnv struct {
	srv     *httptest.Server
	svc     iRoomService
	monitor *pongCountingMonitor
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roomRepo := roominmemory.NewRepo(randstr.New(roominmemory.CodeLetters()), 0, logger)
	connRepo := conninmemory.NewRepo(logger)
	svc := room.NewService(roomRepo, connRepo, &room.Config{
		ParticipantsLimit: 10,
		ReactionTTL:       3 * time.Second,
	}, logger)
	monitor := &pongCountingMonitor{
		Monitor: liveness.NewMonitor(time.Hour, clockwork.NewRealClock(), logger),
	}

	srv := httptest.NewServer(NewController(svc, monitor, cfg, logger).GetMux())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, svc: svc, monitor: monitor}
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()

	return newTestEnv(t, cfg).srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return ws
}

func sendFrame(t *testing.T, ws *websocket.Conn, messageType string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(frame{Type: messageType, Data: raw}))
}

func readFrame(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var f frame
	require.NoError(t, ws.ReadJSON(&f))

	return f
}

func expectFrame(t *testing.T, ws *websocket.Conn, messageType string, target any) {
	t.Helper()

	f := readFrame(t, ws)
	require.Equal(t, messageType, f.Type, "data: %s", f.Data)
	if target != nil {
		require.NoError(t, json.Unmarshal(f.Data, target))
	}
}

func expectError(t *testing.T, ws *websocket.Conn, message string) ErrorOutput {
	t.Helper()

	var out ErrorOutput
	expectFrame(t, ws, domain.EventError, &out)
	assert.Equal(t, message, out.Message)

	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestWatchPartyScenario(t *testing.T) {
	srv := newTestServer(t, Config{})
	alice := dial(t, srv)
	bob := dial(t, srv)

	sendFrame(t, alice, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})
	var created domain.RoomSession
	expectFrame(t, alice, domain.EventRoomCreated, &created)
	require.NotNil(t, created.Room)
	require.Len(t, created.Room.Code, 6)
	host, ok := created.Room.Participant(created.ParticipantId)
	require.True(t, ok)
	assert.True(t, host.IsHost)
	assert.False(t, host.IsMuted)
	assert.True(t, host.IsCameraOff)

	sendFrame(t, bob, typeJoinRoom, JoinRoomInput{RoomCode: strings.ToLower(created.Room.Code), UserName: "Bob", Avatar: "avatar-2"})
	var request domain.JoinRequestPayload
	expectFrame(t, alice, domain.EventJoinRequest, &request)
	assert.Equal(t, "Bob", request.Participant.Name)

	sendFrame(t, alice, typeApproveJoin, DecideJoinInput{RequestId: request.RequestId})
	var approved domain.RoomSession
	expectFrame(t, bob, domain.EventJoinApproved, &approved)
	require.NotNil(t, approved.Room)
	assert.Len(t, approved.Room.Participants, 2)

	var joined domain.ParticipantPayload
	expectFrame(t, alice, domain.EventParticipantJoined, &joined)
	assert.Equal(t, approved.ParticipantId, joined.Participant.Id)
	assert.NotEmpty(t, joined.Participant.Id)

	sendFrame(t, bob, typeSendMessage, SendMessageInput{Content: "hi", Type: domain.MessageTypeText})
	var toAlice, toBob domain.MessagePayload
	expectFrame(t, alice, domain.EventMessageReceived, &toAlice)
	expectFrame(t, bob, domain.EventMessageReceived, &toBob)
	assert.Equal(t, toAlice.Message.Id, toBob.Message.Id)
	assert.Equal(t, "Bob", toAlice.Message.ParticipantName)
	assert.Equal(t, "avatar-2", toAlice.Message.ParticipantAvatar)

	sendFrame(t, alice, typeParticipantAction, ParticipantActionInput{ParticipantId: approved.ParticipantId, Action: room.ActionMute})
	var mutedA, mutedB domain.ParticipantPayload
	expectFrame(t, alice, domain.EventParticipantUpdated, &mutedA)
	expectFrame(t, bob, domain.EventParticipantUpdated, &mutedB)
	assert.True(t, mutedA.Participant.IsMuted)
	assert.True(t, mutedB.Participant.IsMuted)

	require.NoError(t, alice.Close())
	expectFrame(t, bob, domain.EventRoomClosed, nil)

	assert.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/v1/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		var stats room.Stats
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return false
		}
		return stats.Rooms == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestInvalidFrames(t *testing.T) {
	srv := newTestServer(t, Config{})
	ws := dial(t, srv)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	expectError(t, ws, msgInvalidRequest)

	sendFrame(t, ws, "launch-rockets", struct{}{})
	expectError(t, ws, msgInvalidRequest)

	sendFrame(t, ws, typeCreateRoom, CreateRoomInput{RoomName: "", UserName: "Alice", Avatar: "avatar-99"})
	out := expectError(t, ws, msgInvalidRequest)
	fields := make([]string, 0, len(out.Errors))
	for _, e := range out.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"roomName", "avatar"}, fields)

	// the connection survives bad input
	sendFrame(t, ws, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})
	expectFrame(t, ws, domain.EventRoomCreated, nil)
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t, Config{})
	ws := dial(t, srv)

	sendFrame(t, ws, typeJoinRoom, JoinRoomInput{RoomCode: "ZZZZZZ", UserName: "Bob", Avatar: "avatar-2"})
	expectError(t, ws, msgRoomNotFound)
}

func TestDeniedJoinerIsClosed(t *testing.T) {
	srv := newTestServer(t, Config{})
	alice := dial(t, srv)
	bob := dial(t, srv)

	sendFrame(t, alice, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})
	var created domain.RoomSession
	expectFrame(t, alice, domain.EventRoomCreated, &created)

	sendFrame(t, bob, typeJoinRoom, JoinRoomInput{RoomCode: created.Room.Code, UserName: "Bob", Avatar: "avatar-2"})
	expectFrame(t, alice, domain.EventJoinRequest, nil)

	sendFrame(t, alice, typeDenyJoin, DecideJoinInput{})
	var denied domain.JoinDeniedPayload
	expectFrame(t, bob, domain.EventJoinDenied, &denied)
	assert.NotEmpty(t, denied.Reason)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := bob.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestNonHostCommandsAreIgnored(t *testing.T) {
	srv := newTestServer(t, Config{})
	ws := dial(t, srv)

	sendFrame(t, ws, typeVideoControl, VideoControlInput{Action: room.ActionPlay})
	sendFrame(t, ws, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})

	// the unadmitted video-control produced nothing, so the next frame is the room
	expectFrame(t, ws, domain.EventRoomCreated, nil)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Config{RateLimit: 0.001, RateBurst: 1})
	ws := dial(t, srv)

	sendFrame(t, ws, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})
	expectFrame(t, ws, domain.EventRoomCreated, nil)

	sendFrame(t, ws, typeSendMessage, SendMessageInput{Content: "hi", Type: domain.MessageTypeText})
	expectError(t, ws, msgRateLimited)
}

func TestUnresponsiveHostIsSweptAndRoomCloses(t *testing.T) {
	env := newTestEnv(t, Config{})
	alice := dial(t, env.srv)
	bob := dial(t, env.srv)

	// alice stops answering pings
	alice.SetPingHandler(func(string) error { return nil })

	sendFrame(t, alice, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})
	var created domain.RoomSession
	expectFrame(t, alice, domain.EventRoomCreated, &created)

	sendFrame(t, bob, typeJoinRoom, JoinRoomInput{RoomCode: created.Room.Code, UserName: "Bob", Avatar: "avatar-2"})
	expectFrame(t, alice, domain.EventJoinRequest, nil)
	sendFrame(t, alice, typeApproveJoin, DecideJoinInput{})
	expectFrame(t, bob, domain.EventJoinApproved, nil)
	expectFrame(t, alice, domain.EventParticipantJoined, nil)
	require.Equal(t, 1, env.svc.Stats().Rooms)

	// bob keeps reading, which answers pings
	bobFrames := make(chan frame, 16)
	go func() {
		defer close(bobFrames)
		for {
			var f frame
			if err := bob.ReadJSON(&f); err != nil {
				return
			}
			bobFrames <- f
		}
	}()

	ctx := context.Background()
	require.Equal(t, 0, env.monitor.Sweep(ctx))
	require.Eventually(t, func() bool {
		return env.monitor.pongs.Load() >= 1
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, env.monitor.Sweep(ctx))

	select {
	case f, ok := <-bobFrames:
		require.True(t, ok, "bob's connection closed before room-closed")
		assert.Equal(t, domain.EventRoomClosed, f.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("bob did not receive room-closed")
	}

	assert.Eventually(t, func() bool {
		return env.svc.Stats().Rooms == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestEmptyPresenceUpdateIsRejected(t *testing.T) {
	srv := newTestServer(t, Config{})
	alice := dial(t, srv)
	bob := dial(t, srv)

	sendFrame(t, alice, typeCreateRoom, CreateRoomInput{RoomName: "Movie Night", UserName: "Alice", Avatar: "avatar-1"})
	var created domain.RoomSession
	expectFrame(t, alice, domain.EventRoomCreated, &created)
	sendFrame(t, bob, typeJoinRoom, JoinRoomInput{RoomCode: created.Room.Code, UserName: "Bob", Avatar: "avatar-2"})
	expectFrame(t, alice, domain.EventJoinRequest, nil)
	sendFrame(t, alice, typeApproveJoin, DecideJoinInput{})
	expectFrame(t, bob, domain.EventJoinApproved, nil)
	expectFrame(t, alice, domain.EventParticipantJoined, nil)

	sendFrame(t, bob, typeUpdatePresence, struct{}{})
	out := expectError(t, bob, msgInvalidRequest)
	assert.Len(t, out.Errors, 2)

	// alice saw no participant-updated, so her next frame is bob's real change
	muted := true
	sendFrame(t, bob, typeUpdatePresence, UpdatePresenceInput{IsMuted: &muted})
	var updated domain.ParticipantPayload
	expectFrame(t, alice, domain.EventParticipantUpdated, &updated)
	assert.True(t, updated.Participant.IsMuted)
}
