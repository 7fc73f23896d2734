// Package live pushes leaderboard change notifications over websockets.
package live

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	scopeKey    = "scope"
	ScopeGlobal = "global"
)

// Event is the message sent to subscribers. Clients refetch the board on receipt.
type Event struct {
	Type  string    `json:"type"`
	Scope string    `json:"scope"`
	At    time.Time `json:"at"`
}

const EventLeaderboardUpdated = "leaderboard_updated"

// Hub fans out events to websocket sessions subscribed to a scope
// ("global" or a group id).
type Hub struct {
	m *melody.Melody
}

func NewHub() *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 512
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		scope, _ := s.Get(scopeKey)
		log.Debug().Interface("scope", scope).Msg("live subscriber connected")
	})
	m.HandleDisconnect(func(s *melody.Session) {
		scope, _ := s.Get(scopeKey)
		log.Debug().Interface("scope", scope).Msg("live subscriber disconnected")
	})
	m.HandleError(func(_ *melody.Session, err error) {
		log.Warn().Err(err).Msg("live session error")
	})
	return &Hub{m: m}
}

// Subscribe upgrades the request and keeps the session until the client leaves.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, scope string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]any{scopeKey: scope})
}

// Publish notifies subscribers of scope. Global subscribers hear every scope.
func (h *Hub) Publish(scope string) {
	msg, err := json.Marshal(Event{Type: EventLeaderboardUpdated, Scope: scope, At: time.Now().UTC()})
	if err != nil {
		return
	}
	err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		v, ok := s.Get(scopeKey)
		return ok && (v == scope || v == ScopeGlobal)
	})
	if err != nil && !errors.Is(err, melody.ErrClosed) {
		log.Warn().Err(err).Str("scope", scope).Msg("live broadcast failed")
	}
}

func (h *Hub) Sessions() int { return h.m.Len() }

func (h *Hub) Close() error { return h.m.Close() }
