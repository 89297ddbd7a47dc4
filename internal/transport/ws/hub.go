package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"campusduel/internal/cache"
	"campusduel/internal/model"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents a WebSocket connection
type Connection struct {
	MatchID  string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	MatchID  string
	ToPlayer string // Empty means both players
	Message  *Message
}

// Hub manages WebSocket connections for matches. Every match with at least
// one connected player holds a Redis subscription to the match's event
// channel; record changes published by the match service are fanned out to
// the connected clients from there, so the push path works across server
// instances.
type Hub struct {
	matchCache cache.MatchCache

	// matchID -> playerID -> conn
	conns  map[string]map[string]*Connection
	relays map[string]func() // matchID -> relay cancel

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// NewHub creates a new WebSocket hub
func NewHub(matchCache cache.MatchCache) *Hub {
	h := &Hub{
		matchCache: matchCache,
		conns:      make(map[string]map[string]*Connection),
		relays:     make(map[string]func()),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.MatchID] == nil {
				h.conns[conn.MatchID] = make(map[string]*Connection)
			}
			h.conns[conn.MatchID][conn.PlayerID] = conn
			log.Printf("Player %s connected to match %s", conn.PlayerID, conn.MatchID)
			h.ensureRelayLocked(conn.MatchID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if players, ok := h.conns[conn.MatchID]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					log.Printf("Player %s disconnected from match %s", conn.PlayerID, conn.MatchID)
				}
				if len(players) == 0 {
					delete(h.conns, conn.MatchID)
					h.stopRelayLocked(conn.MatchID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			if players, ok := h.conns[msg.MatchID]; ok {
				for id, conn := range players {
					if msg.ToPlayer != "" && id != msg.ToPlayer {
						continue
					}
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ensureRelayLocked starts the Redis -> websocket relay for a match if it
// is not running. Caller holds h.mu.
func (h *Hub) ensureRelayLocked(matchID string) {
	if _, running := h.relays[matchID]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := h.matchCache.Subscribe(ctx, matchID)
	h.relays[matchID] = func() {
		cancel()
		if sub != nil {
			sub.Close()
		}
	}

	go func() {
		if sub == nil {
			return
		}
		for redisMsg := range sub.Channel() {
			var event model.MatchEvent
			if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
				log.Printf("bad event on match %s channel: %v", matchID, err)
				continue
			}
			h.broadcast <- &BroadcastMessage{
				MatchID: matchID,
				Message: &Message{
					Type:    string(event.Type),
					Payload: json.RawMessage(redisMsg.Payload),
				},
			}
		}
	}()
}

func (h *Hub) stopRelayLocked(matchID string) {
	if stop, ok := h.relays[matchID]; ok {
		stop()
		delete(h.relays, matchID)
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToMatch sends a message to both players (implements service.Broadcaster)
func (h *Hub) BroadcastToMatch(matchID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		MatchID: matchID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(matchID, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		MatchID:  matchID,
		ToPlayer: playerID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// DisconnectMatch tears down connections and the relay for an ended match
// (implements service.Broadcaster)
func (h *Hub) DisconnectMatch(matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if players, ok := h.conns[matchID]; ok {
		for id, conn := range players {
			close(conn.Send)
			delete(players, id)
		}
		delete(h.conns, matchID)
	}
	h.stopRelayLocked(matchID)
}
