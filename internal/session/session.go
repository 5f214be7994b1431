package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/journal"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
	"github.com/lukemcneil/shields-up-engineering-client/internal/protocol"
	"github.com/lukemcneil/shields-up-engineering-client/internal/view"
)

var ErrEnded = errors.New("session ended")

const DefaultNoticeTTL = 3 * time.Second

type Msg interface{ isSessionMsg() }

// Inbound is one decoded engine message.
type Inbound struct{ In protocol.Inbound }

func (Inbound) isSessionMsg() {}

// Input is a user gesture. Reply, if set, receives the local outcome.
type Input struct {
	Gesture flow.Gesture
	Reply   chan error
}

func (Input) isSessionMsg() {}

// Disconnected reports the end of the transport.
type Disconnected struct{ Err error }

func (Disconnected) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan view.View
	// Latest keeps the subscriber when its outbox is full by replacing the
	// oldest queued view. Without it a full outbox drops the subscriber.
	Latest bool
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type GetView struct {
	Reply chan view.View
}

func (GetView) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type expireNotice struct{ seq int }

func (expireNotice) isSessionMsg() {}

// Transport is the engine connection as seen by the session.
type Transport interface {
	Send(action.UserAction) error
	Close() error
}

// Journal receives a copy of every sent action and every ack.
type Journal interface {
	Record(journal.Entry)
}

type Options struct {
	ID        string
	Game      string
	Player    game.PlayerID
	Logger    *zap.Logger
	Journal   Journal
	NoticeTTL time.Duration
	// OnEnd runs once on the session goroutine after it stops.
	OnEnd func(id string, err error)
}

// Session owns the state cache, the flow engine and the transport for one
// connection. All of it is touched only by the loop goroutine.
type Session struct {
	opts  Options
	inbox chan Msg
	log   *zap.Logger

	out       Transport
	state     *game.State
	engine    *flow.Engine
	connected bool

	notice    string
	noticeSeq int
	dirty     bool

	clients map[string]subscriber

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(parent context.Context, opts Options, out Transport) *Session {
	ctx, cancel := context.WithCancel(parent)
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}

	s := &Session{
		opts:      opts,
		inbox:     make(chan Msg, 64),
		log:       logger.OrNop(opts.Logger).With(zap.String("session", opts.ID), zap.String("game", opts.Game), zap.String("player", string(opts.Player))),
		out:       out,
		connected: true,
		clients:   make(map[string]subscriber),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.engine = flow.NewEngine(opts.Player, sender{s}, func() { s.dirty = true })

	go s.loop()
	return s
}

func (s *Session) ID() string            { return s.opts.ID }
func (s *Session) Game() string          { return s.opts.Game }
func (s *Session) Player() game.PlayerID { return s.opts.Player }

// Inbox exposes the session's mailbox.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed after the loop has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Post delivers m unless the session has already stopped.
func (s *Session) Post(m Msg) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.inbox <- m:
		return true
	case <-s.done:
		return false
	}
}

// Deliver is the channel's message callback.
func (s *Session) Deliver(in protocol.Inbound) { s.Post(Inbound{In: in}) }

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown(s.ctx.Err())
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Inbound:
				s.handleInbound(msg.In)

			case Input:
				err := s.engine.Apply(s.state, msg.Gesture)
				if err != nil {
					s.log.Debug("gesture rejected", zap.String("gesture", string(msg.Gesture.Kind)), zap.Error(err))
					s.notify(err.Error())
				}
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Disconnected:
				s.connected = false
				s.engine.Reset()
				if msg.Err != nil {
					s.log.Warn("connection lost", zap.Error(msg.Err))
				} else {
					s.log.Info("connection closed")
				}
				s.broadcast()
				s.shutdown(msg.Err)
				return

			case Join:
				sub := subscriber{out: msg.Outbox, latest: msg.Latest}
				s.clients[msg.ClientID] = sub
				s.send(msg.ClientID, sub, s.view())

			case Leave:
				if sub, ok := s.clients[msg.ClientID]; ok {
					close(sub.out)
					delete(s.clients, msg.ClientID)
				}

			case GetView:
				msg.Reply <- s.view()

			case expireNotice:
				if msg.seq == s.noticeSeq && s.notice != "" {
					s.notice = ""
					s.dirty = true
				}

			case Shutdown:
				s.shutdown(nil)
				return
			}

			if s.dirty {
				s.broadcast()
			}
		}
	}
}

func (s *Session) handleInbound(in protocol.Inbound) {
	if in.Ack != nil {
		msg := in.Ack.Err
		if s.opts.Journal != nil {
			s.opts.Journal.Record(journal.Acked(s.opts.ID, s.opts.Game, s.opts.Player, msg))
		}
		if !in.Ack.Ok {
			s.log.Info("action rejected", zap.String("reason", msg))
			s.notify(msg)
		}
		return
	}

	s.state = in.State
	s.dirty = true
	sent, err := s.engine.Observe(s.state)
	if sent {
		s.log.Debug("no effects left, stopping resolution")
	}
	if err != nil {
		s.notify(err.Error())
	}
}

// notify shows msg until the TTL passes or a newer notice replaces it.
func (s *Session) notify(msg string) {
	s.notice = msg
	s.noticeSeq++
	s.dirty = true

	seq := s.noticeSeq
	time.AfterFunc(s.opts.NoticeTTL, func() {
		select {
		case s.inbox <- expireNotice{seq: seq}:
		case <-s.done:
		}
	})
}

func (s *Session) view() view.View {
	return view.Derive(view.Input{
		Game:      s.opts.Game,
		Me:        s.opts.Player,
		Connected: s.connected,
		State:     s.state,
		Chain:     s.engine.Chain(),
		Selection: s.engine.Selection(),
		Notice:    s.notice,
	})
}

func (s *Session) broadcast() {
	s.dirty = false
	v := s.view()
	for id, sub := range s.clients {
		s.send(id, sub, v)
	}
}

type subscriber struct {
	out    chan view.View
	latest bool
}

// send drops a subscriber whose outbox is full, unless it only wants the
// latest view. The loop is the only writer, so after taking one stale view
// the retry cannot find the outbox full.
func (s *Session) send(id string, sub subscriber, v view.View) {
	select {
	case sub.out <- v:
		return
	default:
	}
	if sub.latest {
		select {
		case <-sub.out:
		default:
		}
		select {
		case sub.out <- v:
			return
		default:
		}
	}
	s.log.Debug("dropping slow subscriber", zap.String("client", id))
	close(sub.out)
	delete(s.clients, id)
}

func (s *Session) shutdown(cause error) {
	for id, sub := range s.clients {
		close(sub.out)
		delete(s.clients, id)
	}
	if err := s.out.Close(); err != nil {
		s.log.Debug("transport close", zap.Error(err))
	}
	s.cancel()
	if s.opts.OnEnd != nil {
		s.opts.OnEnd(s.opts.ID, cause)
	}
}

// sender records outbound actions before handing them to the transport.
type sender struct{ s *Session }

func (w sender) Send(ua action.UserAction) error {
	s := w.s
	if !s.connected {
		return ErrEnded
	}
	if err := s.out.Send(ua); err != nil {
		s.log.Warn("send failed", zap.String("action", action.Name(ua)), zap.Error(err))
		return err
	}
	s.log.Info("sent action", zap.String("action", action.Name(ua)))
	if s.opts.Journal != nil {
		s.opts.Journal.Record(journal.Sent(s.opts.ID, s.opts.Game, s.opts.Player, ua))
	}
	return nil
}
