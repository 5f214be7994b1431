package flow

import (
	"errors"
	"fmt"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

var ErrNoState = errors.New("no game state yet")
var ErrWrongStage = errors.New("gesture does not fit the current prompt")
var ErrNothingToConfirm = errors.New("nothing to confirm")
var ErrInsufficientHand = errors.New("not enough cards in hand to pay the hot-wire cost")
var ErrEmptyHand = errors.New("no cards in hand")
var ErrSystemOverloaded = errors.New("system is overloaded")
var ErrNotOverloaded = errors.New("system has no overload to remove")
var ErrNegativeEnergy = errors.New("energy cannot be negative")
var ErrEffectIndex = errors.New("effect index out of range")
var ErrUnknownEffect = errors.New("unknown effect")
var ErrUnsupportedGesture = errors.New("unsupported gesture")

type GestureKind string

const (
	GestureClickCard           GestureKind = "click_card"
	GesturePlayInstant         GestureKind = "play_instant"
	GestureHotWire             GestureKind = "hot_wire"
	GesturePickSystem          GestureKind = "pick_system"
	GestureConfirm             GestureKind = "confirm"
	GestureCancel              GestureKind = "cancel"
	GestureActivate            GestureKind = "activate"
	GestureSetEnergy           GestureKind = "set_energy"
	GestureRemoveOverload      GestureKind = "remove_overload"
	GesturePass                GestureKind = "pass"
	GestureReduceShortCircuits GestureKind = "reduce_short_circuits"
	GestureClickEffect         GestureKind = "click_effect"
	GestureStopResolving       GestureKind = "stop_resolving"
)

// Gesture is one primitive user input.
type Gesture struct {
	Kind   GestureKind `json:"kind"`
	Index  int         `json:"index,omitempty"`
	System game.System `json:"system,omitempty"`
	Amount int         `json:"amount,omitempty"`
}

// Sender delivers a finished action. It must not block.
type Sender interface {
	Send(action.UserAction) error
}

// Engine turns gestures into at most one outbound action at a time. It holds
// a single active chain; starting another discards it silently.
type Engine struct {
	me    game.PlayerID
	out   Sender
	sel   Selector
	chain *Chain
	state *game.State

	onChange func()
	cbErr    error
}

func NewEngine(me game.PlayerID, out Sender, onChange func()) *Engine {
	e := &Engine{me: me, out: out, onChange: onChange}
	e.sel.OnChange = e.changed
	return e
}

func (e *Engine) Player() game.PlayerID { return e.me }

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// Chain returns a copy of the active chain, or nil.
func (e *Engine) Chain() *Chain {
	if e.chain == nil {
		return nil
	}
	return e.chain.clone()
}

// Selection returns a copy of the active card selection, or nil.
func (e *Engine) Selection() *Selection {
	return e.sel.Active()
}

// Reset abandons any active flow without sending anything.
func (e *Engine) Reset() {
	if e.chain == nil && e.sel.active == nil {
		return
	}
	e.drop()
	e.changed()
}

func (e *Engine) drop() {
	e.sel.discard()
	e.chain = nil
}

func (e *Engine) begin(c *Chain) {
	e.sel.discard()
	e.chain = c
	e.changed()
}

// Observe takes a fresh snapshot. When the local player is active and the
// effect list is empty it sends StopResolvingEffects; an observer does nothing.
func (e *Engine) Observe(s *game.State) (bool, error) {
	e.state = s

	if e.chain != nil && e.chain.Stage == StageCardMenu && !s.CanChooseAction(e.me) {
		e.Reset()
	}

	effects, resolving := s.Effects()
	if !resolving || len(effects) > 0 || !s.IsTurn(e.me) {
		return false, nil
	}
	return true, e.out.Send(action.StopResolvingEffects{})
}

// Apply routes one gesture against snapshot s.
func (e *Engine) Apply(s *game.State, g Gesture) error {
	if s == nil {
		return ErrNoState
	}
	e.state = s

	switch g.Kind {
	case GestureClickCard:
		if e.sel.active != nil {
			if err := checkCard(s.Player(e.me), g.Index); err != nil {
				return err
			}
			e.sel.Toggle(g.Index)
			return nil
		}
		if err := e.canChoose(s); err != nil {
			return err
		}
		if err := checkCard(s.Player(e.me), g.Index); err != nil {
			return err
		}
		e.begin(cardMenu(g.Index))
		return nil

	case GesturePlayInstant:
		if e.stage() != StageCardMenu {
			return fmt.Errorf("%w: play instant", ErrWrongStage)
		}
		return e.emit(s, action.ChooseAction{Action: action.PlayInstantCard{CardIndex: e.chain.CardIndex}})

	case GestureHotWire:
		if e.stage() != StageCardMenu {
			return fmt.Errorf("%w: hot-wire", ErrWrongStage)
		}
		e.begin(hotWireChain(IntentHotWire, e.chain.CardIndex))
		return nil

	case GesturePickSystem:
		if !g.System.Valid() {
			return fmt.Errorf("%w: %q", game.ErrUnknownSystem, g.System)
		}
		return e.pickSystem(s, g.System)

	case GestureConfirm:
		switch e.stage() {
		case StageSelectCards:
			e.cbErr = nil
			if err := e.sel.Confirm(); err != nil {
				return err
			}
			return e.cbErr
		case StageDistribute:
			return e.emit(s, action.ChooseAction{Action: action.ActivateSystem{
				System:             game.FusionReactor,
				EnergyDistribution: e.chain.Distribution,
			}})
		default:
			return ErrNothingToConfirm
		}

	case GestureCancel:
		e.Reset()
		return nil

	case GestureActivate:
		if err := e.canChoose(s); err != nil {
			return err
		}
		me := s.Player(e.me)
		sys, err := me.System(g.System)
		if err != nil {
			return err
		}
		if sys.Overloaded() {
			return fmt.Errorf("%w: %s", ErrSystemOverloaded, g.System.DisplayName())
		}
		if g.System != game.FusionReactor {
			return e.emit(s, action.ChooseAction{Action: action.ActivateSystem{System: g.System}})
		}
		e.begin(distributionChain(me))
		return nil

	case GestureSetEnergy:
		if e.stage() != StageDistribute {
			return fmt.Errorf("%w: set energy", ErrWrongStage)
		}
		if !g.System.Valid() {
			return fmt.Errorf("%w: %q", game.ErrUnknownSystem, g.System)
		}
		if e.chain.Locked[g.System] {
			return fmt.Errorf("%w: %s", ErrSystemOverloaded, g.System.DisplayName())
		}
		if g.Amount < 0 {
			return ErrNegativeEnergy
		}
		e.chain.Distribution[g.System] = g.Amount
		e.changed()
		return nil

	case GestureRemoveOverload:
		if err := e.canChoose(s); err != nil {
			return err
		}
		sys, err := s.Player(e.me).System(g.System)
		if err != nil {
			return err
		}
		if !sys.Overloaded() {
			return fmt.Errorf("%w: %s", ErrNotOverloaded, g.System.DisplayName())
		}
		return e.emit(s, action.ChooseAction{Action: action.DiscardOverload{System: g.System}})

	case GesturePass:
		if err := e.canChoose(s); err != nil {
			return err
		}
		n := action.PassDiscardsRequired(len(s.Player(e.me).Hand))
		if n == 0 {
			return e.emit(s, action.Pass{CardIndicesToDiscard: []int{}})
		}
		e.begin(&Chain{Intent: IntentPass, Stage: StageSelectCards, Title: "Discard down to hand size", CardIndex: -1})
		e.sel.Start(n, NoExclude, e.onSelected)
		return nil

	case GestureReduceShortCircuits:
		if err := e.canChoose(s); err != nil {
			return err
		}
		return e.emit(s, action.ChooseAction{Action: action.ReduceShortCircuits{}})

	case GestureClickEffect:
		return e.clickEffect(s, g.Index)

	case GestureStopResolving:
		if _, resolving := s.Effects(); !resolving {
			return action.ErrWrongTurnState
		}
		if !StopEnabled(s, e.me) {
			if !s.IsTurn(e.me) {
				return action.ErrNotYourTurn
			}
			return action.ErrMandatoryPending
		}
		return e.emit(s, action.StopResolvingEffects{})

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedGesture, g.Kind)
	}
}

func (e *Engine) stage() Stage {
	if e.chain == nil {
		return StageNone
	}
	return e.chain.Stage
}

func (e *Engine) canChoose(s *game.State) error {
	if !s.IsTurn(e.me) {
		return action.ErrNotYourTurn
	}
	if s.TurnState.Resolving {
		return action.ErrWrongTurnState
	}
	return nil
}

// emit validates and sends a finished action. A validation failure leaves
// the flow open so the input can be corrected.
func (e *Engine) emit(s *game.State, ua action.UserAction) error {
	if err := action.Validate(ua, e.me, s); err != nil {
		return err
	}
	e.Reset()
	return e.out.Send(ua)
}

func (e *Engine) clickEffect(s *game.State, i int) error {
	effects, resolving := s.Effects()
	if !resolving {
		return action.ErrWrongTurnState
	}
	if i < 0 || i >= len(effects) {
		return fmt.Errorf("%w: %d", ErrEffectIndex, i)
	}
	eff := effects[i]
	if eff.Class() == game.ClassUnknown {
		return fmt.Errorf("%w: %s", ErrUnknownEffect, eff.Kind)
	}
	if err := action.CheckActor(eff.Kind, e.me, s); err != nil {
		return err
	}

	if !eff.Kind.NeedsInput() {
		return e.emit(s, action.ResolveEffect{Resolution: action.ResolveSimple{Effect: eff.Kind}})
	}

	c, err := effectChain(eff)
	if err != nil {
		return err
	}
	if c.Stage != StageSelectCards {
		e.begin(c)
		return nil
	}

	if len(s.Player(e.me).Hand) == 0 {
		return ErrEmptyHand
	}
	e.begin(c)
	labels := Labels{Prompt: "Select a card to discard", Confirm: "Confirm Discard"}
	if c.Intent == IntentPlayHotWire {
		labels = Labels{Prompt: "Select a card to hot-wire", Confirm: "Confirm Hot-Wire"}
	}
	e.sel.StartLabeled(labels, 1, NoExclude, e.onSelected)
	return nil
}

func (e *Engine) pickSystem(s *game.State, sys game.System) error {
	c := e.chain
	switch e.stage() {
	case StagePickSystem:
		switch c.Intent {
		case IntentHotWire, IntentPlayHotWire:
			c.System = sys
			return e.hotWireDiscards(s)
		case IntentDiscardOverload:
			return e.emit(s, action.ResolveEffect{Resolution: action.ResolveDiscardOverload{System: sys}})
		case IntentOpponentGainOverload:
			return e.emit(s, action.ResolveEffect{Resolution: action.ResolveOpponentGainOverload{System: sys}})
		}

	case StagePickFrom:
		c.From = sys
		if c.Intent == IntentMoveEnergyTo {
			return e.emit(s, action.ResolveEffect{Resolution: action.ResolveMoveEnergyTo{FromSystem: sys, ToSystem: c.To}})
		}
		c.Stage = StagePickTo
		e.changed()
		return nil

	case StagePickTo:
		c.To = sys
		switch c.Intent {
		case IntentMoveEnergy:
			return e.emit(s, action.ResolveEffect{Resolution: action.ResolveMoveEnergy{FromSystem: c.From, ToSystem: sys}})
		case IntentOpponentMoveEnergy:
			return e.emit(s, action.ResolveEffect{Resolution: action.ResolveOpponentMoveEnergy{FromSystem: c.From, ToSystem: sys}})
		}
	}
	return fmt.Errorf("%w: pick system", ErrWrongStage)
}

// hotWireDiscards runs after the target system is chosen. A zero cost sends
// immediately; a cost the hand cannot pay aborts the chain.
func (e *Engine) hotWireDiscards(s *game.State) error {
	c := e.chain
	hand := s.Player(e.me).Hand
	if err := checkCard(s.Player(e.me), c.CardIndex); err != nil {
		e.Reset()
		return err
	}

	cost := hand[c.CardIndex].HotWireCost.CardsToDiscard
	if cost == 0 {
		return e.emit(s, e.hotWireAction(nil))
	}
	if len(hand)-1 < cost {
		e.Reset()
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientHand, cost, len(hand)-1)
	}

	c.Stage = StageSelectCards
	e.sel.Start(cost, c.CardIndex, e.onSelected)
	return nil
}

func (e *Engine) hotWireAction(discards []int) action.UserAction {
	c := e.chain
	if discards == nil {
		discards = []int{}
	}
	if c.Intent == IntentPlayHotWire {
		return action.ResolveEffect{Resolution: action.ResolvePlayHotWire{
			CardIndex: c.CardIndex, System: c.System, IndicesToDiscard: discards,
		}}
	}
	return action.ChooseAction{Action: action.HotWireCard{
		CardIndex: c.CardIndex, System: c.System, IndicesToDiscard: discards,
	}}
}

// onSelected is the callback of every card selection the engine starts.
func (e *Engine) onSelected(indices []int) {
	e.cbErr = e.selected(indices)
}

func (e *Engine) selected(indices []int) error {
	c := e.chain
	if c == nil || e.state == nil {
		return ErrNoSelection
	}
	s := e.state

	var ua action.UserAction
	switch c.Intent {
	case IntentPass:
		ua = action.Pass{CardIndicesToDiscard: indices}
	case IntentHotWire:
		ua = e.hotWireAction(indices)
	case IntentPlayHotWire:
		if c.CardIndex < 0 {
			c.CardIndex = indices[0]
			c.Stage = StagePickSystem
			c.Title = "Hot-Wire to which system?"
			e.changed()
			return nil
		}
		ua = e.hotWireAction(indices)
	case IntentOpponentDiscard:
		ua = action.ResolveEffect{Resolution: action.ResolveOpponentDiscard{CardIndex: indices[0]}}
	default:
		e.Reset()
		return fmt.Errorf("%w: selection for %s", ErrWrongStage, c.Intent)
	}

	// The selection is already gone; a rejected message ends the chain too.
	if err := e.emit(s, ua); err != nil {
		e.Reset()
		return err
	}
	return nil
}

func checkCard(me *game.PlayerState, i int) error {
	if i < 0 || i >= len(me.Hand) {
		return fmt.Errorf("%w: %d", action.ErrCardIndex, i)
	}
	return nil
}

// StopEnabled reports whether the stop-resolving affordance is live for me.
func StopEnabled(s *game.State, me game.PlayerID) bool {
	effects, resolving := s.Effects()
	return resolving && s.IsTurn(me) && !game.HasMandatory(effects)
}

// EffectEnabled reports whether me may click the effect chip.
func EffectEnabled(s *game.State, me game.PlayerID, e game.Effect) bool {
	if e.Class() == game.ClassUnknown {
		return false
	}
	return action.CheckActor(e.Kind, me, s) == nil
}
