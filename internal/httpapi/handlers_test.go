package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/hub"
	"github.com/lukemcneil/shields-up-engineering-client/internal/journal"
	"github.com/lukemcneil/shields-up-engineering-client/internal/protocol"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
	"github.com/lukemcneil/shields-up-engineering-client/internal/view"
)

type recTransport struct {
	mu   sync.Mutex
	sent []action.UserAction
}

func (t *recTransport) Send(ua action.UserAction) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, ua)
	return nil
}

func (t *recTransport) Close() error { return nil }

func (t *recTransport) Sent() []action.UserAction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]action.UserAction(nil), t.sent...)
}

type fakeJournal struct {
	entries []journal.Entry
	err     error
	game    string
	limit   int
}

func (f *fakeJournal) Recent(_ context.Context, gameName string, limit int) ([]journal.Entry, error) {
	f.game, f.limit = gameName, limit
	return f.entries, f.err
}

type fixture struct {
	srv *httptest.Server
	hub *hub.Hub
	out *recTransport
}

func newFixture(t *testing.T, j JournalReader) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	out := &recTransport{}
	h := hub.NewHub(ctx, hub.Options{
		Connect: func(ctx context.Context, opts session.Options) (*session.Session, error) {
			if opts.Game == "unreachable" {
				return nil, errors.New("connection refused")
			}
			return session.New(ctx, opts, out), nil
		},
	})
	srv := httptest.NewServer(SetupRoutes(h, j, nil))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, hub: h, out: out}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func (f *fixture) open(t *testing.T, gameName, player string) hub.Summary {
	t.Helper()
	body, _ := json.Marshal(createSessionRequest{Game: gameName, Player: player})
	res := f.do(t, http.MethodPost, "/sessions", string(body))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var sum hub.Summary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&sum))
	return sum
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	res := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, nil)

	sum := f.open(t, "  friday ", "")
	assert.NotEmpty(t, sum.ID)
	assert.Equal(t, "friday", sum.Game)
	assert.Equal(t, game.Player1, sum.Player)

	res := f.do(t, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list []hub.Summary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	assert.Equal(t, []hub.Summary{sum}, list)
}

func TestCreateSession_BadInput(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"blank game", `{"game":"   "}`, http.StatusBadRequest},
		{"unknown player", `{"game":"g","player":"Player3"}`, http.StatusBadRequest},
		{"engine unreachable", `{"game":"unreachable"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.do(t, http.MethodPost, "/sessions", tt.body)
			assert.Equal(t, tt.want, res.StatusCode)
		})
	}
}

func TestGetView(t *testing.T) {
	f := newFixture(t, nil)
	sum := f.open(t, "friday", "Player2")

	res := f.do(t, http.MethodGet, "/sessions/"+sum.ID+"/view", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v view.View
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	assert.True(t, v.Waiting)
	assert.Equal(t, game.Player2, v.Me)

	res = f.do(t, http.MethodGet, "/sessions/nope/view", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPostGesture(t *testing.T) {
	f := newFixture(t, nil)
	sum := f.open(t, "friday", "Player1")

	// No snapshot yet.
	res := f.do(t, http.MethodPost, "/sessions/"+sum.ID+"/gestures", `{"kind":"pass"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	s := f.hub.Get(sum.ID)
	require.NotNil(t, s)
	st := game.NewEmptyState()
	s.Deliver(protocol.Inbound{State: &st})

	res = f.do(t, http.MethodPost, "/sessions/"+sum.ID+"/gestures", `{"kind":"pass"}`)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Len(t, f.out.Sent(), 1)
	assert.Equal(t, "Pass", action.Name(f.out.Sent()[0]))

	res = f.do(t, http.MethodPost, "/sessions/"+sum.ID+"/gestures", `not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t, nil)
	sum := f.open(t, "friday", "Player1")

	res := f.do(t, http.MethodDelete, "/sessions/"+sum.ID, "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	assert.Nil(t, f.hub.Get(sum.ID))
	res = f.do(t, http.MethodDelete, "/sessions/"+sum.ID, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRecentJournal(t *testing.T) {
	j := &fakeJournal{entries: []journal.Entry{{Game: "friday", Kind: journal.KindAccepted}}}
	f := newFixture(t, j)

	res := f.do(t, http.MethodGet, "/games/friday/journal?limit=5", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got []journal.Entry
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Len(t, got, 1)
	assert.Equal(t, "friday", j.game)
	assert.Equal(t, 5, j.limit)

	res = f.do(t, http.MethodGet, "/games/friday/journal?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	j.err = errors.New("db down")
	res = f.do(t, http.MethodGet, "/games/friday/journal", "")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestRecentJournal_NotMountedWithoutStore(t *testing.T) {
	f := newFixture(t, nil)
	res := f.do(t, http.MethodGet, "/games/friday/journal", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func readView(t *testing.T, ctx context.Context, c *websocket.Conn) view.View {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var v view.View
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestStream(t *testing.T) {
	f := newFixture(t, nil)
	sum := f.open(t, "friday", "Player1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/sessions/" + sum.ID + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	first := readView(t, ctx, c)
	assert.True(t, first.Waiting)

	s := f.hub.Get(sum.ID)
	require.NotNil(t, s)
	st := game.NewEmptyState()
	s.Deliver(protocol.Inbound{State: &st})
	next := readView(t, ctx, c)
	assert.False(t, next.Waiting)

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`garbage`)))
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("bad json")))

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"kind":"pass"}`)))
	require.Eventually(t, func() bool { return len(f.out.Sent()) == 1 }, time.Second, 10*time.Millisecond)

	// Ending the session closes the stream.
	s.Post(session.Shutdown{})
	for {
		if _, _, err := c.Read(ctx); err != nil {
			assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
			break
		}
	}
}

func TestStream_ReconnectsDoNotLeak(t *testing.T) {
	f := newFixture(t, nil)
	sum := f.open(t, "friday", "Player1")
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/sessions/" + sum.ID + "/ws"

	connectOnce := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c, _, err := websocket.Dial(ctx, url, nil)
		require.NoError(t, err)
		_ = readView(t, ctx, c)
		require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))
	}

	connectOnce()
	time.Sleep(50 * time.Millisecond)
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		connectOnce()
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 20*time.Millisecond, "stream goroutines outlive their clients")

	// The session itself is untouched by client churn.
	res := f.do(t, http.MethodGet, "/sessions/"+sum.ID+"/view", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
