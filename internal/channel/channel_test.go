package channel

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/protocol"
)

// fakeEngine accepts one connection, pushes whatever arrives on push and
// forwards every client message to got.
type fakeEngine struct {
	srv   *httptest.Server
	path  chan string
	push  chan []byte
	got   chan []byte
	close chan websocket.StatusCode
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	fe := &fakeEngine{
		path:  make(chan string, 1),
		push:  make(chan []byte, 4),
		got:   make(chan []byte, 4),
		close: make(chan websocket.StatusCode, 1),
	}
	fe.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fe.path <- r.URL.Path
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() {
			for {
				_, data, err := conn.Read(ctx)
				if err != nil {
					cancel()
					return
				}
				fe.got <- data
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-fe.push:
				_ = conn.Write(ctx, websocket.MessageText, data)
			case code := <-fe.close:
				if code == 0 {
					return // drop without a close frame
				}
				_ = conn.Close(code, "done")
				return
			}
		}
	}))
	t.Cleanup(fe.srv.Close)
	return fe
}

func (fe *fakeEngine) options(t *testing.T, gameName string) Options {
	t.Helper()
	u, err := url.Parse(fe.srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return Options{Host: host, Port: port, Game: gameName, Player: game.Player2, Logger: zap.NewNop()}
}

func recvBytes(t *testing.T, ch <-chan []byte, within time.Duration) []byte {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return nil
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8000/game/friday", URL("localhost", 8000, "friday"))
	assert.Equal(t, "ws://[::1]:8000/game/g", URL("::1", 8000, "g"))
}

func TestChannel_RoundTrip(t *testing.T) {
	fe := newFakeEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Dial(ctx, fe.options(t, "friday"))
	require.NoError(t, err)
	defer ch.Close()

	select {
	case p := <-fe.path:
		assert.Equal(t, "/game/friday", p)
	case <-time.After(time.Second):
		t.Fatalf("engine never saw the upgrade")
	}

	inbound := make(chan protocol.Inbound, 4)
	runErr := make(chan error, 1)
	go func() { runErr <- ch.Run(ctx, func(in protocol.Inbound) { inbound <- in }) }()

	snap, err := json.Marshal(game.NewEmptyState())
	require.NoError(t, err)
	fe.push <- []byte(`garbage`)
	fe.push <- snap
	fe.push <- []byte(`{"Err":"not your turn"}`)

	select {
	case in := <-inbound:
		require.NotNil(t, in.State, "garbage must be skipped, snapshot delivered")
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for snapshot")
	}
	select {
	case in := <-inbound:
		require.NotNil(t, in.Ack)
		assert.Equal(t, "not your turn", in.Ack.Err)
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for ack")
	}

	require.NoError(t, ch.Send(action.StopResolvingEffects{}))
	got := recvBytes(t, fe.got, time.Second)
	assert.JSONEq(t, `{"player":"Player2","user_action":"StopResolvingEffects"}`, string(got))

	fe.close <- websocket.StatusNormalClosure
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after close")
	}
	require.ErrorIs(t, ch.Send(action.StopResolvingEffects{}), ErrClosed)
}

func TestChannel_AbruptDrop(t *testing.T) {
	fe := newFakeEngine(t)
	ctx := context.Background()

	ch, err := Dial(ctx, fe.options(t, "g"))
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() { runErr <- ch.Run(ctx, func(protocol.Inbound) {}) }()

	fe.close <- 0
	select {
	case err := <-runErr:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after drop")
	}
	select {
	case <-ch.Done():
	default:
		t.Fatalf("Done should be closed")
	}
}

func TestChannel_LocalCloseEndsRun(t *testing.T) {
	fe := newFakeEngine(t)
	ctx := context.Background()

	ch, err := Dial(ctx, fe.options(t, "g"))
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() { runErr <- ch.Run(ctx, func(protocol.Inbound) {}) }()

	require.NoError(t, ch.Close())
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatalf("Run did not return after Close")
	}
}

func TestChannel_SendQueueFull(t *testing.T) {
	c := &Channel{
		player: game.Player1,
		log:    zap.NewNop(),
		out:    make(chan []byte, 1),
		done:   make(chan struct{}),
	}

	require.NoError(t, c.Send(action.Pass{}))
	require.ErrorIs(t, c.Send(action.Pass{}), ErrSendQueueFull)

	close(c.done)
	require.ErrorIs(t, c.Send(action.Pass{}), ErrClosed)
}

func TestDial_Errors(t *testing.T) {
	_, err := Dial(context.Background(), Options{Host: "localhost", Port: 1})
	require.Error(t, err)

	_, err = Dial(context.Background(), Options{Host: "127.0.0.1", Port: 1, Game: "g"})
	require.Error(t, err)
}
