package flow

import (
	"fmt"
	"maps"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

type Stage int

const (
	StageNone Stage = iota
	StageCardMenu
	StagePickSystem
	StagePickFrom
	StagePickTo
	StageSelectCards
	StageDistribute
)

var stageNames = map[Stage]string{
	StageNone:        "none",
	StageCardMenu:    "card_menu",
	StagePickSystem:  "pick_system",
	StagePickFrom:    "pick_from",
	StagePickTo:      "pick_to",
	StageSelectCards: "select_cards",
	StageDistribute:  "distribute",
}

func (s Stage) String() string { return stageNames[s] }

// Intent is the message a chain is building.
type Intent int

const (
	IntentNone Intent = iota
	IntentCardMenu
	IntentHotWire
	IntentPlayHotWire
	IntentPass
	IntentActivateReactor
	IntentDiscardOverload
	IntentOpponentGainOverload
	IntentMoveEnergy
	IntentMoveEnergyTo
	IntentOpponentMoveEnergy
	IntentOpponentDiscard
)

var intentNames = map[Intent]string{
	IntentNone:                 "none",
	IntentCardMenu:             "card_menu",
	IntentHotWire:              "hot_wire",
	IntentPlayHotWire:          "play_hot_wire",
	IntentPass:                 "pass",
	IntentActivateReactor:      "activate_reactor",
	IntentDiscardOverload:      "discard_overload",
	IntentOpponentGainOverload: "opponent_gain_overload",
	IntentMoveEnergy:           "move_energy",
	IntentMoveEnergyTo:         "move_energy_to",
	IntentOpponentMoveEnergy:   "opponent_move_energy",
	IntentOpponentDiscard:      "opponent_discard",
}

func (i Intent) String() string { return intentNames[i] }

// Chain is a fixed sequence of prompts that ends in one outbound message.
// The fields past Title accumulate the answers given so far.
type Chain struct {
	Intent Intent
	Stage  Stage
	Title  string

	// CardIndex is -1 until chosen for PlayHotWire.
	CardIndex int
	System    game.System
	From      game.System
	To        game.System

	Distribution map[game.System]int
	Locked       map[game.System]bool
	Allowance    int
}

func (c *Chain) clone() *Chain {
	cp := *c
	cp.Distribution = maps.Clone(c.Distribution)
	cp.Locked = maps.Clone(c.Locked)
	return &cp
}

// DistributionTotal sums the energy entered so far.
func (c *Chain) DistributionTotal() int {
	total := 0
	for _, n := range c.Distribution {
		total += n
	}
	return total
}

// Options lists the systems offered at a system-picking stage.
func (c *Chain) Options() []game.System {
	switch c.Stage {
	case StagePickSystem, StagePickFrom, StagePickTo:
		return game.Systems()
	default:
		return nil
	}
}

func cardMenu(cardIndex int) *Chain {
	return &Chain{Intent: IntentCardMenu, Stage: StageCardMenu, Title: "Play or hot-wire?", CardIndex: cardIndex}
}

func hotWireChain(intent Intent, cardIndex int) *Chain {
	return &Chain{Intent: intent, Stage: StagePickSystem, Title: "Hot-Wire to which system?", CardIndex: cardIndex}
}

func distributionChain(me *game.PlayerState) *Chain {
	c := &Chain{
		Intent:       IntentActivateReactor,
		Stage:        StageDistribute,
		Title:        "Distribute Energy",
		CardIndex:    -1,
		Distribution: map[game.System]int{},
		Locked:       map[game.System]bool{},
		Allowance:    game.Allowance(me.FusionReactor),
	}
	for _, sys := range me.Systems() {
		if sys.Overloaded() {
			c.Distribution[sys.System] = 0
			c.Locked[sys.System] = true
			continue
		}
		c.Distribution[sys.System] = sys.Energy
	}
	return c
}

// effectChain returns the prompt chain for a complex effect.
func effectChain(e game.Effect) (*Chain, error) {
	c := &Chain{CardIndex: -1}
	switch e.Kind {
	case game.EffectDiscardOverload:
		c.Intent, c.Stage, c.Title = IntentDiscardOverload, StagePickSystem, "Discard overload from which system?"
	case game.EffectOpponentGainOverload:
		c.Intent, c.Stage, c.Title = IntentOpponentGainOverload, StagePickSystem, "Give opponent overload on which system?"
	case game.EffectMoveEnergy:
		c.Intent, c.Stage, c.Title = IntentMoveEnergy, StagePickFrom, "Move Energy"
	case game.EffectOpponentMoveEnergy:
		c.Intent, c.Stage, c.Title = IntentOpponentMoveEnergy, StagePickFrom, "Move Opponent Energy"
	case game.EffectMoveEnergyTo:
		c.Intent, c.Stage, c.To = IntentMoveEnergyTo, StagePickFrom, e.To
		c.Title = fmt.Sprintf("Move energy to %s from:", e.To.DisplayName())
	case game.EffectPlayHotWire:
		c.Intent, c.Stage, c.Title = IntentPlayHotWire, StageSelectCards, "Play Hot-Wire"
	case game.EffectOpponentDiscard:
		c.Intent, c.Stage, c.Title = IntentOpponentDiscard, StageSelectCards, "Discard a card"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, e.Kind)
	}
	return c, nil
}

// StageLabel is the heading shown for the chain's current stage.
func (c *Chain) StageLabel() string {
	switch c.Stage {
	case StagePickFrom:
		if c.Intent == IntentMoveEnergyTo {
			return c.Title
		}
		return "From system:"
	case StagePickTo:
		return "To system:"
	default:
		return c.Title
	}
}
