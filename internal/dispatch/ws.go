package dispatch

import (
	"errors"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrNoSession is returned when the target user has no live connection.
var ErrNoSession = errors.New("no websocket session")

// WSSession wraps one client connection. Writes are serialized because
// gorilla connections allow only a single concurrent writer.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) Send(payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(payload)
}

// WSRegistry holds live sessions keyed by user ID. Passengers and drivers
// share one registry; IDs never collide.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WSSession
}

func NewWSRegistry() *WSRegistry {
	return &WSRegistry{sessions: make(map[string]*WSSession)}
}

// Add registers a connection for a user, replacing any previous session.
func (r *WSRegistry) Add(userID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = &WSSession{conn: conn}
}

// Remove drops a user's session.
func (r *WSRegistry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Publish sends a JSON payload to a connected user.
func (r *WSRegistry) Publish(userID string, payload any) error {
	r.mu.RLock()
	s, ok := r.sessions[userID]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	if err := s.Send(payload); err != nil {
		log.Printf("ws send to %s failed: %v", userID, err)
		return err
	}
	return nil
}
