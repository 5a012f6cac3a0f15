package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	stateWSWriteTimeout = 10 * time.Second
	stateWSPongTimeout  = 90 * time.Second
	stateWSPingInterval = 30 * time.Second
)

var stateWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StateWS handles GET /v1/state/ws — pushes a state snapshot to the
// presentation layer on every transition. Registered outside the auth
// middleware because browsers cannot set headers on WebSocket dials; the
// token is checked here instead (header or ?token= query parameter).
func (h *Handler) StateWS(w http.ResponseWriter, r *http.Request) {
	if !h.wsAuthorized(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid api token")
		return
	}

	conn, err := stateWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("state ws upgrade failed")
		return
	}
	defer conn.Close()

	states, unsubscribe := h.studio.Subscribe()
	defer unsubscribe()

	// Reader pump: the client never sends data, but reading is what
	// surfaces close frames and pongs.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(stateWSPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(stateWSPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Initial snapshot so the page renders without waiting for a transition.
	_ = conn.SetWriteDeadline(time.Now().Add(stateWSWriteTimeout))
	if err := conn.WriteJSON(h.studio.Snapshot()); err != nil {
		return
	}

	pings := time.NewTicker(stateWSPingInterval)
	defer pings.Stop()

	for {
		select {
		case view, ok := <-states:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(stateWSWriteTimeout))
			if err := conn.WriteJSON(view); err != nil {
				log.Debug().Err(err).Msg("state ws write")
				return
			}
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(stateWSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) wsAuthorized(r *http.Request) bool {
	if h.apiToken == "" {
		return true
	}
	candidate := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			candidate = parts[1]
		}
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(h.apiToken)) == 1
}
