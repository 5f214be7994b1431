package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

type EffectKind string

const (
	EffectAttack                   EffectKind = "Attack"
	EffectShield                   EffectKind = "Shield"
	EffectGainShortCircuit         EffectKind = "GainShortCircuit"
	EffectLoseShortCircuit         EffectKind = "LoseShortCircuit"
	EffectDraw                     EffectKind = "Draw"
	EffectGainAction               EffectKind = "GainAction"
	EffectOpponentGainShortCircuit EffectKind = "OpponentGainShortCircuit"
	EffectOpponentLoseShield       EffectKind = "OpponentLoseShield"
	EffectBypassShield             EffectKind = "BypassShield"

	EffectDiscardOverload      EffectKind = "DiscardOverload"
	EffectOpponentGainOverload EffectKind = "OpponentGainOverload"
	EffectMoveEnergy           EffectKind = "MoveEnergy"
	EffectMoveEnergyTo         EffectKind = "MoveEnergyTo"
	EffectOpponentMoveEnergy   EffectKind = "OpponentMoveEnergy"
	EffectPlayHotWire          EffectKind = "PlayHotWire"
	EffectOpponentDiscard      EffectKind = "OpponentDiscard"

	// Hot-wire only; never appears as a pending effect.
	EffectStoreMoreEnergy EffectKind = "StoreMoreEnergy"
)

type EffectClass int

const (
	ClassUnknown EffectClass = iota
	ClassSimple
	ClassMandatory
	ClassComplex
)

func (c EffectClass) String() string {
	switch c {
	case ClassSimple:
		return "simple"
	case ClassMandatory:
		return "mandatory"
	case ClassComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// Class partitions pending effects. OpponentDiscard is mandatory even though
// it also needs input; see NeedsInput.
func (k EffectKind) Class() EffectClass {
	switch k {
	case EffectGainShortCircuit, EffectOpponentDiscard:
		return ClassMandatory
	case EffectAttack, EffectShield, EffectLoseShortCircuit, EffectDraw, EffectGainAction,
		EffectOpponentGainShortCircuit, EffectOpponentLoseShield, EffectBypassShield:
		return ClassSimple
	case EffectDiscardOverload, EffectOpponentGainOverload, EffectMoveEnergy, EffectMoveEnergyTo,
		EffectOpponentMoveEnergy, EffectPlayHotWire:
		return ClassComplex
	default:
		return ClassUnknown
	}
}

// NeedsInput reports whether resolving the effect requires a prompt chain.
func (k EffectKind) NeedsInput() bool {
	return k.Class() == ClassComplex || k == EffectOpponentDiscard
}

// ResolvedByOpponent reports whether the non-active player resolves the effect.
func (k EffectKind) ResolvedByOpponent() bool {
	return k == EffectOpponentDiscard
}

// DisplayName splits the camel-case tag into words: "MoveEnergyTo" -> "Move Energy To".
func (k EffectKind) DisplayName() string {
	var b strings.Builder
	for i, r := range string(k) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Effect is a pending effect or a hot-wire effect tag. To is set only for
// MoveEnergyTo, which carries its destination system.
type Effect struct {
	Kind EffectKind
	To   System
}

func Bare(k EffectKind) Effect { return Effect{Kind: k} }

func MoveEnergyTo(to System) Effect { return Effect{Kind: EffectMoveEnergyTo, To: to} }

func (e Effect) Class() EffectClass { return e.Kind.Class() }

func (e Effect) Mandatory() bool { return e.Kind.Class() == ClassMandatory }

func (e Effect) String() string {
	if e.Kind == EffectMoveEnergyTo && e.To != "" {
		return fmt.Sprintf("%s %s", e.Kind.DisplayName(), e.To.DisplayName())
	}
	return e.Kind.DisplayName()
}

func (e Effect) MarshalJSON() ([]byte, error) {
	if e.Kind == EffectMoveEnergyTo {
		return json.Marshal(map[EffectKind]System{e.Kind: e.To})
	}
	return json.Marshal(string(e.Kind))
}

func (e *Effect) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		*e = Effect{Kind: EffectKind(tag)}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("effect: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("effect: want a single tag, got %d keys", len(obj))
	}
	for k, raw := range obj {
		*e = Effect{Kind: EffectKind(k)}
		if e.Kind == EffectMoveEnergyTo {
			if err := json.Unmarshal(raw, &e.To); err != nil {
				return fmt.Errorf("effect %s: %w", k, err)
			}
		}
	}
	return nil
}

// HasMandatory reports whether any effect blocks StopResolvingEffects.
func HasMandatory(effects []Effect) bool {
	for _, e := range effects {
		if e.Mandatory() {
			return true
		}
	}
	return false
}
