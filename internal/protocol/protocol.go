package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

var ErrMalformed = errors.New("malformed server message")

// Envelope is every client -> engine message.
type Envelope struct {
	Player     game.PlayerID     `json:"player"`
	UserAction action.UserAction `json:"user_action"`
}

func Encode(p game.PlayerID, ua action.UserAction) ([]byte, error) {
	if ua == nil {
		return nil, fmt.Errorf("%w: nil action", action.ErrUnknownAction)
	}
	return json.Marshal(Envelope{Player: p, UserAction: ua})
}

// Ack is the engine's reply to a single action.
type Ack struct {
	Ok  bool
	Err string
}

// Inbound is exactly one of Ack or State.
type Inbound struct {
	Ack   *Ack
	State *game.State
}

// Decode splits engine -> client traffic. Objects carrying an "Ok" or "Err"
// key are acks; anything else must be a full snapshot.
func Decode(data []byte) (Inbound, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if raw, ok := keys["Err"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			msg = string(raw)
		}
		return Inbound{Ack: &Ack{Err: msg}}, nil
	}
	if _, ok := keys["Ok"]; ok {
		return Inbound{Ack: &Ack{Ok: true}}, nil
	}

	var s game.State
	if err := json.Unmarshal(data, &s); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := game.ParsePlayer(string(s.PlayersTurn)); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Inbound{State: &s}, nil
}
