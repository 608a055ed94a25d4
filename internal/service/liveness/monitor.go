// Package liveness detects dead connections with a ping sweep. A peer that has not
// answered the previous ping by the next sweep is terminated; terminating closes
// the socket, so the connection's own read loop runs the regular teardown.
package liveness

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Peer interface {
	Id() string
	Ping() error
	Terminate() error
}

type peerState struct {
	peer  Peer
	alive bool
}

type Monitor struct {
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	peers    map[string]*peerState
	mu       sync.Mutex
}

func NewMonitor(interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Monitor {
	return &Monitor{
		interval: interval,
		clock:    clock,
		logger:   logger,
		peers:    make(map[string]*peerState),
	}
}

// Track starts watching p. A fresh peer counts as alive until the first sweep.
func (m *Monitor) Track(p Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.peers[p.Id()]; !exists {
		trackedPeers.Add(context.Background(), 1)
	}
	m.peers[p.Id()] = &peerState{peer: p, alive: true}
}

func (m *Monitor) Untrack(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.peers[id]; exists {
		delete(m.peers, id)
		trackedPeers.Add(context.Background(), -1)
	}
}

// MarkAlive records a pong from the peer.
func (m *Monitor) MarkAlive(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, ok := m.peers[id]; ok {
		state.alive = true
	}
}

func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.peers)
}

// Sweep terminates peers that missed the previous ping and pings the rest.
// It returns the number of terminated peers.
func (m *Monitor) Sweep(ctx context.Context) int {
	var dead, live []Peer

	m.mu.Lock()
	for id, state := range m.peers {
		if !state.alive {
			dead = append(dead, state.peer)
			delete(m.peers, id)
			trackedPeers.Add(ctx, -1)
			continue
		}
		state.alive = false
		live = append(live, state.peer)
	}
	m.mu.Unlock()

	for _, p := range live {
		if err := p.Ping(); err != nil {
			m.logger.DebugContext(ctx, "failed to ping peer", "conn_id", p.Id(), "error", err)
			m.Untrack(p.Id())
			dead = append(dead, p)
			continue
		}
		pingsSent.Add(ctx, 1)
	}

	for _, p := range dead {
		m.logger.InfoContext(ctx, "terminating unresponsive connection", "conn_id", p.Id())
		if err := p.Terminate(); err != nil {
			m.logger.DebugContext(ctx, "failed to terminate peer", "conn_id", p.Id(), "error", err)
		}
	}
	if len(dead) > 0 {
		peersTerminated.Add(ctx, int64(len(dead)))
	}

	return len(dead)
}

func (m *Monitor) Run(ctx context.Context) error {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			m.Sweep(ctx)
		}
	}
}

// TerminateAll closes every tracked peer. Used on shutdown.
func (m *Monitor) TerminateAll(ctx context.Context) {
	m.mu.Lock()
	peers := make([]Peer, 0, len(m.peers))
	for _, state := range m.peers {
		peers = append(peers, state.peer)
	}
	m.mu.Unlock()

	for _, p := range peers {
		if err := p.Terminate(); err != nil {
			m.logger.DebugContext(ctx, "failed to terminate peer", "conn_id", p.Id(), "error", err)
		}
	}
}
