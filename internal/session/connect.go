package session

import (
	"context"

	"github.com/lukemcneil/shields-up-engineering-client/internal/channel"
)

// Connect dials the engine and starts a session fed by the connection's
// reader. The session ends when the connection does.
func Connect(ctx context.Context, opts Options, dial channel.Options) (*Session, error) {
	if dial.Game == "" {
		dial.Game = opts.Game
	}
	if dial.Player == "" {
		dial.Player = opts.Player
	}
	if dial.Logger == nil {
		dial.Logger = opts.Logger
	}

	ch, err := channel.Dial(ctx, dial)
	if err != nil {
		return nil, err
	}

	s := New(ctx, opts, ch)
	go func() {
		err := ch.Run(s.ctx, s.Deliver)
		s.Post(Disconnected{Err: err})
	}()
	return s, nil
}
