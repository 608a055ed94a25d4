package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"golang.org/x/exp/maps"
)

type entry struct {
	conn    domain.Conn
	binding connection.Binding
}

type repo struct {
	rooms   map[string]map[string]domain.Conn
	entries map[string]*entry
	logger  *slog.Logger
	mu      sync.RWMutex
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:   make(map[string]map[string]domain.Conn),
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Associate binds an unbound connection to roomCode. participantId may be empty.
func (r *repo) Associate(conn domain.Conn, roomCode, participantId string) error {
	funcName := "connection.inmemory.Associate"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[conn.Id()]; exists {
		r.logger.Debug(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.entries[conn.Id()] = &entry{
		conn:    conn,
		binding: connection.Binding{RoomCode: roomCode, ParticipantId: participantId},
	}
	set, ok := r.rooms[roomCode]
	if !ok {
		set = make(map[string]domain.Conn)
		r.rooms[roomCode] = set
	}
	set[conn.Id()] = conn

	r.logger.Debug(funcName, "conn_id", conn.Id(), "room_code", roomCode, "participant_id", participantId)
	return nil
}

// Promote completes the association of a pending connection.
func (r *repo) Promote(connId, participantId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connId]
	if !ok {
		return connection.ErrNotFound
	}
	if e.binding.Admitted() {
		return connection.ErrAlreadyExists
	}
	e.binding.ParticipantId = participantId

	return nil
}

// Remove drops the connection and returns the binding it had.
func (r *repo) Remove(connId string) (connection.Binding, error) {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connId]
	if !ok {
		return connection.Binding{}, connection.ErrNotFound
	}
	delete(r.entries, connId)
	if set, ok := r.rooms[e.binding.RoomCode]; ok {
		delete(set, connId)
		if len(set) == 0 {
			delete(r.rooms, e.binding.RoomCode)
		}
	}

	r.logger.Debug(funcName, "conn_id", connId, "room_code", e.binding.RoomCode)
	return e.binding, nil
}

// RemoveRoom unbinds every connection of roomCode and returns them.
func (r *repo) RemoveRoom(roomCode string) []domain.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.rooms[roomCode]
	delete(r.rooms, roomCode)
	for connId := range set {
		delete(r.entries, connId)
	}

	return maps.Values(set)
}

func (r *repo) Binding(connId string) (connection.Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[connId]
	if !ok {
		return connection.Binding{}, connection.ErrNotFound
	}

	return e.binding, nil
}

func (r *repo) GetByParticipantId(roomCode, participantId string) (domain.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for connId, conn := range r.rooms[roomCode] {
		if r.entries[connId].binding.ParticipantId == participantId {
			return conn, nil
		}
	}

	return nil, connection.ErrNotFound
}

// FindPending returns the unadmitted connection connId of roomCode.
func (r *repo) FindPending(roomCode, connId string) (domain.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[connId]
	if !ok || e.binding.RoomCode != roomCode || e.binding.Admitted() {
		return nil, connection.ErrNotFound
	}

	return e.conn, nil
}

// Broadcast sends ev to every admitted, open connection of roomCode except
// excludeConnId. Send failures are logged and skipped.
func (r *repo) Broadcast(roomCode string, ev *domain.Event, excludeConnId string) int {
	funcName := "connection.inmemory.Broadcast"
	r.mu.RLock()
	defer r.mu.RUnlock()

	sent := 0
	for connId, conn := range r.rooms[roomCode] {
		if connId == excludeConnId || !r.entries[connId].binding.Admitted() || !conn.IsOpen() {
			continue
		}
		if err := conn.Send(ev); err != nil {
			r.logger.Debug(funcName, "conn_id", connId, "error", err)
			continue
		}
		sent++
	}

	return sent
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
