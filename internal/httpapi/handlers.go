package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/hub"
	"github.com/lukemcneil/shields-up-engineering-client/internal/journal"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
	"github.com/lukemcneil/shields-up-engineering-client/internal/view"
)

const replyTimeout = 2 * time.Second

// JournalReader serves the recent action log of a game.
type JournalReader interface {
	Recent(ctx context.Context, gameName string, limit int) ([]journal.Entry, error)
}

type createSessionRequest struct {
	Game   string `json:"game"`
	Player string `json:"player"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}

func lookup(h *hub.Hub, w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.Get(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return s
}

func CreateSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.Game = strings.TrimSpace(req.Game)
		if req.Game == "" {
			writeError(w, http.StatusBadRequest, "enter a game name")
			return
		}
		if req.Player == "" {
			req.Player = string(game.Player1)
		}
		player, err := game.ParsePlayer(req.Player)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s, err := h.Open(req.Game, player)
		if err != nil {
			if errors.Is(err, hub.ErrHubClosed) {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, hub.Summary{ID: s.ID(), Game: s.Game(), Player: s.Player()})
	}
}

func ListSessions(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.List())
	}
}

func GetView(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := lookup(h, w, r)
		if s == nil {
			return
		}
		reply := make(chan view.View, 1)
		if !s.Post(session.GetView{Reply: reply}) {
			writeError(w, http.StatusGone, session.ErrEnded.Error())
			return
		}
		select {
		case v := <-reply:
			writeJSON(w, http.StatusOK, v)
		case <-time.After(replyTimeout):
			writeError(w, http.StatusGatewayTimeout, "session busy")
		}
	}
}

// PostGesture feeds one gesture to the session. 202 means the gesture was
// taken; it does not mean an action reached the engine.
func PostGesture(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := lookup(h, w, r)
		if s == nil {
			return
		}
		var g flow.Gesture
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		reply := make(chan error, 1)
		if !s.Post(session.Input{Gesture: g, Reply: reply}) {
			writeError(w, http.StatusGone, session.ErrEnded.Error())
			return
		}
		select {
		case err := <-reply:
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeJSON(w, http.StatusAccepted, struct {
				Status string `json:"status"`
			}{Status: "accepted"})
		case <-time.After(replyTimeout):
			writeError(w, http.StatusGatewayTimeout, "session busy")
		}
	}
}

func DeleteSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := lookup(h, w, r)
		if s == nil {
			return
		}
		// The session's end hook unregisters it from the hub.
		s.Post(session.Shutdown{})
		<-s.Done()
		w.WriteHeader(http.StatusNoContent)
	}
}

func RecentJournal(j JournalReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 500 {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}
		entries, err := j.Recent(r.Context(), chi.URLParam(r, "game"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "journal unavailable")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
