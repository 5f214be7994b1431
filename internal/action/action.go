// Package action is the closed set of messages the client may send to the
// engine, with their wire encoding.
package action

import (
	"encoding/json"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

// UserAction is the user_action field of an outbound message.
type UserAction interface{ isUserAction() }

type ChooseAction struct {
	Action Action
}

type Pass struct {
	CardIndicesToDiscard []int
}

type ResolveEffect struct {
	Resolution Resolution
}

type StopResolvingEffects struct{}

func (ChooseAction) isUserAction()         {}
func (Pass) isUserAction()                 {}
func (ResolveEffect) isUserAction()        {}
func (StopResolvingEffects) isUserAction() {}

// Action is the payload of ChooseAction.
type Action interface{ isAction() }

type PlayInstantCard struct {
	CardIndex int `json:"card_index"`
}

type HotWireCard struct {
	CardIndex        int         `json:"card_index"`
	System           game.System `json:"system"`
	IndicesToDiscard []int       `json:"indices_to_discard"`
}

// ActivateSystem carries a distribution only for the fusion reactor.
type ActivateSystem struct {
	System             game.System
	EnergyDistribution map[game.System]int
}

type DiscardOverload struct {
	System game.System `json:"system"`
}

type ReduceShortCircuits struct{}

func (PlayInstantCard) isAction()     {}
func (HotWireCard) isAction()         {}
func (ActivateSystem) isAction()      {}
func (DiscardOverload) isAction()     {}
func (ReduceShortCircuits) isAction() {}

// Resolution is the payload of ResolveEffect.
type Resolution interface {
	isResolution()
	Kind() game.EffectKind
}

// ResolveSimple resolves an effect that needs no input; it encodes as the bare tag.
type ResolveSimple struct {
	Effect game.EffectKind
}

type ResolveDiscardOverload struct {
	System game.System `json:"system"`
}

type ResolveOpponentGainOverload struct {
	System game.System `json:"system"`
}

type ResolveMoveEnergy struct {
	FromSystem game.System `json:"from_system"`
	ToSystem   game.System `json:"to_system"`
}

type ResolveMoveEnergyTo struct {
	FromSystem game.System `json:"from_system"`
	ToSystem   game.System `json:"to_system"`
}

type ResolveOpponentMoveEnergy struct {
	FromSystem game.System `json:"from_system"`
	ToSystem   game.System `json:"to_system"`
}

type ResolvePlayHotWire struct {
	CardIndex        int         `json:"card_index"`
	System           game.System `json:"system"`
	IndicesToDiscard []int       `json:"indices_to_discard"`
}

type ResolveOpponentDiscard struct {
	CardIndex int `json:"card_index"`
}

func (ResolveSimple) isResolution()               {}
func (ResolveDiscardOverload) isResolution()      {}
func (ResolveOpponentGainOverload) isResolution() {}
func (ResolveMoveEnergy) isResolution()           {}
func (ResolveMoveEnergyTo) isResolution()         {}
func (ResolveOpponentMoveEnergy) isResolution()   {}
func (ResolvePlayHotWire) isResolution()          {}
func (ResolveOpponentDiscard) isResolution()      {}

func (r ResolveSimple) Kind() game.EffectKind             { return r.Effect }
func (ResolveDiscardOverload) Kind() game.EffectKind      { return game.EffectDiscardOverload }
func (ResolveOpponentGainOverload) Kind() game.EffectKind { return game.EffectOpponentGainOverload }
func (ResolveMoveEnergy) Kind() game.EffectKind           { return game.EffectMoveEnergy }
func (ResolveMoveEnergyTo) Kind() game.EffectKind         { return game.EffectMoveEnergyTo }
func (ResolveOpponentMoveEnergy) Kind() game.EffectKind   { return game.EffectOpponentMoveEnergy }
func (ResolvePlayHotWire) Kind() game.EffectKind          { return game.EffectPlayHotWire }
func (ResolveOpponentDiscard) Kind() game.EffectKind      { return game.EffectOpponentDiscard }

// Encoding. Every variant is externally tagged: {"Tag": payload}, or the bare
// tag when it has no payload.

func tagged(tag string, v any) ([]byte, error) {
	return json.Marshal(map[string]any{tag: v})
}

func nonNil(indices []int) []int {
	if indices == nil {
		return []int{}
	}
	return indices
}

func (a ChooseAction) MarshalJSON() ([]byte, error) {
	return tagged("ChooseAction", struct {
		Action Action `json:"action"`
	}{a.Action})
}

func (p Pass) MarshalJSON() ([]byte, error) {
	return tagged("Pass", struct {
		CardIndicesToDiscard []int `json:"card_indices_to_discard"`
	}{nonNil(p.CardIndicesToDiscard)})
}

func (r ResolveEffect) MarshalJSON() ([]byte, error) {
	return tagged("ResolveEffect", struct {
		ResolveEffect Resolution `json:"resolve_effect"`
	}{r.Resolution})
}

func (StopResolvingEffects) MarshalJSON() ([]byte, error) {
	return json.Marshal("StopResolvingEffects")
}

func (a PlayInstantCard) MarshalJSON() ([]byte, error) {
	type plain PlayInstantCard
	return tagged("PlayInstantCard", plain(a))
}

func (a HotWireCard) MarshalJSON() ([]byte, error) {
	type plain HotWireCard
	a.IndicesToDiscard = nonNil(a.IndicesToDiscard)
	return tagged("HotWireCard", plain(a))
}

func (a ActivateSystem) MarshalJSON() ([]byte, error) {
	return tagged("ActivateSystem", struct {
		System             game.System         `json:"system"`
		EnergyToUse        *int                `json:"energy_to_use"`
		EnergyDistribution map[game.System]int `json:"energy_distribution"`
	}{System: a.System, EnergyDistribution: a.EnergyDistribution})
}

func (a DiscardOverload) MarshalJSON() ([]byte, error) {
	type plain DiscardOverload
	return tagged("DiscardOverload", plain(a))
}

func (ReduceShortCircuits) MarshalJSON() ([]byte, error) {
	return json.Marshal("ReduceShortCircuits")
}

func (r ResolveSimple) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r.Effect))
}

func (r ResolveDiscardOverload) MarshalJSON() ([]byte, error) {
	type plain ResolveDiscardOverload
	return tagged(string(r.Kind()), plain(r))
}

func (r ResolveOpponentGainOverload) MarshalJSON() ([]byte, error) {
	type plain ResolveOpponentGainOverload
	return tagged(string(r.Kind()), plain(r))
}

func (r ResolveMoveEnergy) MarshalJSON() ([]byte, error) {
	type plain ResolveMoveEnergy
	return tagged(string(r.Kind()), plain(r))
}

func (r ResolveMoveEnergyTo) MarshalJSON() ([]byte, error) {
	type plain ResolveMoveEnergyTo
	return tagged(string(r.Kind()), plain(r))
}

func (r ResolveOpponentMoveEnergy) MarshalJSON() ([]byte, error) {
	type plain ResolveOpponentMoveEnergy
	return tagged(string(r.Kind()), plain(r))
}

func (r ResolvePlayHotWire) MarshalJSON() ([]byte, error) {
	type plain ResolvePlayHotWire
	r.IndicesToDiscard = nonNil(r.IndicesToDiscard)
	return tagged(string(r.Kind()), plain(r))
}

func (r ResolveOpponentDiscard) MarshalJSON() ([]byte, error) {
	type plain ResolveOpponentDiscard
	return tagged(string(r.Kind()), plain(r))
}

// Name is a short label for logs and the journal.
func Name(ua UserAction) string {
	switch a := ua.(type) {
	case ChooseAction:
		switch a.Action.(type) {
		case PlayInstantCard:
			return "PlayInstantCard"
		case HotWireCard:
			return "HotWireCard"
		case ActivateSystem:
			return "ActivateSystem"
		case DiscardOverload:
			return "DiscardOverload"
		case ReduceShortCircuits:
			return "ReduceShortCircuits"
		}
		return "ChooseAction"
	case Pass:
		return "Pass"
	case ResolveEffect:
		if a.Resolution == nil {
			return "ResolveEffect"
		}
		return "ResolveEffect:" + string(a.Resolution.Kind())
	case StopResolvingEffects:
		return "StopResolvingEffects"
	default:
		return "unknown"
	}
}
