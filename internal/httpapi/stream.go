package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/hub"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
	"github.com/lukemcneil/shields-up-engineering-client/internal/view"
)

// Stream upgrades to a websocket that pushes every view of a session and
// accepts gestures as JSON text frames.
func Stream(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := lookup(h, w, r)
		if s == nil {
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan view.View, 8)
		clientID := uuid.NewString()
		if !s.Post(session.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "session ended")
			return
		}
		defer s.Post(session.Leave{ClientID: clientID})
		log := log.With(zap.String("session", s.ID()), zap.String("client", clientID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for v := range out {
				payload, err := json.Marshal(v)
				if err != nil {
					log.Warn("encode view", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
			// Outbox closed: the session ended or dropped us.
			conn.Close(websocket.StatusGoingAway, "session ended")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("stream read ended", zap.Error(err))
				}
				return
			}

			var g flow.Gesture
			if err := json.Unmarshal(data, &g); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"error":"bad json"}`))
				continue
			}
			if !s.Post(session.Input{Gesture: g}) {
				return
			}
		}
	}
}
