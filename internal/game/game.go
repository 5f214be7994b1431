package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownPlayer = errors.New("unknown player")
var ErrUnknownSystem = errors.New("unknown system")
var ErrBadTurnState = errors.New("malformed turn state")

// HandSizeCap is the number of cards a player may keep after passing.
const HandSizeCap = 5

const (
	MaxActions    = 3
	MaxHullDamage = 5
)

type PlayerID string

const (
	Player1 PlayerID = "Player1"
	Player2 PlayerID = "Player2"
)

func ParsePlayer(s string) (PlayerID, error) {
	switch PlayerID(s) {
	case Player1, Player2:
		return PlayerID(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, s)
	}
}

func (p PlayerID) Other() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

type HotWireCost struct {
	CardsToDiscard int `json:"cards_to_discard"`
}

type Card struct {
	Name           string      `json:"name"`
	HotWireCost    HotWireCost `json:"hot_wire_cost"`
	HotWireEffects []Effect    `json:"hot_wire_effects,omitempty"`
}

type SystemState struct {
	System    System `json:"system"`
	Energy    int    `json:"energy"`
	Overloads int    `json:"overloads"`
	HotWires  []Card `json:"hot_wires"`
}

func (s SystemState) Overloaded() bool { return s.Overloads > 0 }

type PlayerState struct {
	Hand            []Card      `json:"hand"`
	FusionReactor   SystemState `json:"fusion_reactor"`
	LifeSupport     SystemState `json:"life_support"`
	ShieldGenerator SystemState `json:"shield_generator"`
	Weapons         SystemState `json:"weapons_system"`
	HullDamage      int         `json:"hull_damage"`
	Shields         int         `json:"shields"`
	ShortCircuits   int         `json:"short_circuits"`
}

// System returns the state of one of the player's four systems.
func (p *PlayerState) System(sys System) (*SystemState, error) {
	switch sys {
	case FusionReactor:
		return &p.FusionReactor, nil
	case LifeSupport:
		return &p.LifeSupport, nil
	case ShieldGenerator:
		return &p.ShieldGenerator, nil
	case Weapons:
		return &p.Weapons, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, sys)
	}
}

// Systems returns the four systems in picker order.
func (p *PlayerState) Systems() []SystemState {
	return []SystemState{p.FusionReactor, p.LifeSupport, p.ShieldGenerator, p.Weapons}
}

// State is a full snapshot pushed by the engine. It is never patched; a new
// snapshot replaces the old one.
type State struct {
	Player1     PlayerState `json:"player1"`
	Player2     PlayerState `json:"player2"`
	PlayersTurn PlayerID    `json:"players_turn"`
	ActionsLeft int         `json:"actions_left"`
	Deck        []Card      `json:"deck"`
	DiscardPile []Card      `json:"discard_pile"`
	TurnState   TurnState   `json:"turn_state"`
}

func (s *State) Player(id PlayerID) *PlayerState {
	if id == Player1 {
		return &s.Player1
	}
	return &s.Player2
}

func (s *State) IsTurn(id PlayerID) bool {
	return s.PlayersTurn == id
}

// CanChooseAction reports whether id may start a ChooseAction or Pass.
func (s *State) CanChooseAction(id PlayerID) bool {
	return s.IsTurn(id) && !s.TurnState.Resolving
}

// Effects returns the pending effects and whether the turn is resolving.
func (s *State) Effects() ([]Effect, bool) {
	if !s.TurnState.Resolving {
		return nil, false
	}
	return s.TurnState.Effects, true
}

// TurnState is ChoosingAction (Resolving == false) or ResolvingEffects.
type TurnState struct {
	Resolving bool
	Effects   []Effect
}

const choosingAction = "ChoosingAction"

type resolvingEffects struct {
	Effects []Effect `json:"effects"`
}

func (t TurnState) MarshalJSON() ([]byte, error) {
	if !t.Resolving {
		return json.Marshal(choosingAction)
	}
	effects := t.Effects
	if effects == nil {
		effects = []Effect{}
	}
	return json.Marshal(map[string]resolvingEffects{"ResolvingEffects": {Effects: effects}})
}

func (t *TurnState) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != choosingAction {
			return fmt.Errorf("%w: %q", ErrBadTurnState, tag)
		}
		*t = TurnState{}
		return nil
	}

	var obj struct {
		ResolvingEffects *resolvingEffects `json:"ResolvingEffects"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrBadTurnState, err)
	}
	if obj.ResolvingEffects == nil {
		return fmt.Errorf("%w: %s", ErrBadTurnState, string(data))
	}
	*t = TurnState{Resolving: true, Effects: obj.ResolvingEffects.Effects}
	return nil
}

func (t TurnState) String() string {
	if !t.Resolving {
		return "Choosing Action"
	}
	return fmt.Sprintf("Resolving Effects (%d)", len(t.Effects))
}
