package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
	"github.com/lukemcneil/shields-up-engineering-client/internal/protocol"
)

var ErrClosed = errors.New("connection closed")
var ErrSendQueueFull = errors.New("send queue full")

const (
	writeTimeout = 3 * time.Second
	dialTimeout  = 10 * time.Second
	readLimit    = 1 << 20
	outboxSize   = 16
)

type Options struct {
	Host   string
	Port   int
	Game   string
	Player game.PlayerID
	Logger *zap.Logger
}

// URL is the engine endpoint for a game.
func URL(host string, port int, gameName string) string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/game/" + gameName,
	}
	return u.String()
}

// Channel is one websocket connection to the engine, bound to a player
// identity. Writes go through a single goroutine in send order.
type Channel struct {
	conn   *websocket.Conn
	player game.PlayerID
	log    *zap.Logger

	out  chan []byte
	done chan struct{}
	once sync.Once
	err  error
}

func Dial(ctx context.Context, opts Options) (*Channel, error) {
	if opts.Game == "" {
		return nil, fmt.Errorf("dial: empty game name")
	}
	target := URL(opts.Host, opts.Port, opts.Game)

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	conn.SetReadLimit(readLimit)

	c := &Channel{
		conn:   conn,
		player: opts.Player,
		log:    logger.OrNop(opts.Logger).With(zap.String("game", opts.Game), zap.String("player", string(opts.Player))),
		out:    make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
	go c.writer()
	c.log.Info("connected", zap.String("url", target))
	return c, nil
}

func (c *Channel) Player() game.PlayerID { return c.player }

// Send queues ua for the writer. It never blocks.
func (c *Channel) Send(ua action.UserAction) error {
	payload, err := protocol.Encode(c.player, ua)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.out <- payload:
		c.log.Debug("queued action", zap.String("action", action.Name(ua)))
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSendQueueFull
	}
}

func (c *Channel) writer() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.out:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				c.log.Warn("write failed", zap.Error(err))
				c.shutdown(err)
				return
			}
		}
	}
}

// Run reads until the connection ends, handing each decoded message to
// handle. Malformed messages are logged and skipped. The returned error is
// nil after a normal close.
func (c *Channel) Run(ctx context.Context, handle func(protocol.Inbound)) error {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			c.shutdown(err)
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if c.closedLocally() {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrClosed, err)
		}

		in, err := protocol.Decode(data)
		if err != nil {
			c.log.Warn("dropping message", zap.Error(err))
			continue
		}
		handle(in)
	}
}

func (c *Channel) closedLocally() bool {
	select {
	case <-c.done:
		return errors.Is(c.err, ErrClosed)
	default:
		return false
	}
}

func (c *Channel) shutdown(cause error) {
	c.once.Do(func() {
		c.err = cause
		close(c.done)
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}

// Done is closed once the connection has ended.
func (c *Channel) Done() <-chan struct{} { return c.done }

func (c *Channel) Close() error {
	c.shutdown(ErrClosed)
	return nil
}
