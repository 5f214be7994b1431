package hub

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
)

var ErrHubClosed = errors.New("hub closed")

// Connector starts a session connected to the engine.
type Connector func(ctx context.Context, opts session.Options) (*session.Session, error)

type HubMsg interface{ isHubMsg() }

type AddSession struct {
	Session *session.Session
}

type GetSession struct {
	ID    string
	Reply chan *session.Session
}

type RemoveSession struct {
	ID string
}

type ListSessions struct {
	Reply chan []Summary
}

type ShutdownHub struct{}

func (AddSession) isHubMsg()    {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (ListSessions) isHubMsg()  {}
func (ShutdownHub) isHubMsg()   {}

type Summary struct {
	ID     string        `json:"id"`
	Game   string        `json:"game"`
	Player game.PlayerID `json:"player"`
}

type Options struct {
	Connect Connector
	Journal session.Journal
	Logger  *zap.Logger
}

// Hub is the registry of live sessions, keyed by a generated id.
type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	opts     Options
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		opts:     opts,
		log:      logger.OrNop(opts.Logger),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Open connects a new session and registers it. Dialing happens on the
// caller's goroutine, never inside the loop.
func (h *Hub) Open(gameName string, player game.PlayerID) (*session.Session, error) {
	if h.ctx.Err() != nil {
		return nil, ErrHubClosed
	}
	id := uuid.NewString()
	s, err := h.opts.Connect(h.ctx, session.Options{
		ID:      id,
		Game:    gameName,
		Player:  player,
		Logger:  h.log.Named("session"),
		Journal: h.opts.Journal,
		OnEnd:   func(id string, _ error) { h.post(RemoveSession{ID: id}) },
	})
	if err != nil {
		return nil, err
	}
	if !h.post(AddSession{Session: s}) {
		s.Post(session.Shutdown{})
		return nil, ErrHubClosed
	}
	h.log.Info("session opened", zap.String("id", id), zap.String("game", gameName), zap.String("player", string(player)))
	return s, nil
}

// Get returns the live session with id, or nil.
func (h *Hub) Get(id string) *session.Session {
	reply := make(chan *session.Session, 1)
	if !h.post(GetSession{ID: id, Reply: reply}) {
		return nil
	}
	return <-reply
}

func (h *Hub) List() []Summary {
	reply := make(chan []Summary, 1)
	if !h.post(ListSessions{Reply: reply}) {
		return nil
	}
	return <-reply
}

func (h *Hub) post(m HubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func ended(s *session.Session) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case AddSession:
				if ended(msg.Session) {
					break
				}
				h.sessions[msg.Session.ID()] = msg.Session

			case GetSession:
				s := h.sessions[msg.ID]
				if s != nil && ended(s) {
					delete(h.sessions, msg.ID)
					s = nil
				}
				msg.Reply <- s // May be nil

			case RemoveSession:
				if _, ok := h.sessions[msg.ID]; ok {
					delete(h.sessions, msg.ID)
					h.log.Info("session removed", zap.String("id", msg.ID))
				}

			case ListSessions:
				out := make([]Summary, 0, len(h.sessions))
				for id, s := range h.sessions {
					out = append(out, Summary{ID: id, Game: s.Game(), Player: s.Player()})
				}
				sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
				msg.Reply <- out

			case ShutdownHub:
				h.cancel()
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		s.Post(session.Shutdown{})
	}
	clear(h.sessions)
}
