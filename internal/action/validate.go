package action

import (
	"errors"
	"fmt"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

var ErrDiscardCount = errors.New("wrong number of cards to discard")
var ErrDiscardIndex = errors.New("discard index out of range")
var ErrDiscardDuplicate = errors.New("card chosen twice")
var ErrDiscardsOwnCard = errors.New("card cannot pay its own hot-wire cost")
var ErrDistributionRequired = errors.New("fusion reactor needs a full energy distribution")
var ErrDistributionNotAllowed = errors.New("only the fusion reactor takes an energy distribution")
var ErrDistributionSum = errors.New("energy distribution does not match allowance")
var ErrNotYourTurn = errors.New("not your turn")
var ErrWrongTurnState = errors.New("action not legal in current turn state")
var ErrWrongActor = errors.New("effect belongs to the other player")
var ErrMandatoryPending = errors.New("mandatory effects must be resolved first")
var ErrEffectNotPending = errors.New("effect is not pending")
var ErrCardIndex = errors.New("card index out of range")
var ErrUnknownAction = errors.New("unknown action")

// ValidateDiscards checks a discard list against the exact count required.
// exclude is the card that may not be discarded, or -1.
func ValidateDiscards(indices []int, want, handSize, exclude int) error {
	if len(indices) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDiscardCount, len(indices), want)
	}
	seen := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= handSize {
			return fmt.Errorf("%w: %d", ErrDiscardIndex, i)
		}
		if i == exclude {
			return fmt.Errorf("%w: %d", ErrDiscardsOwnCard, i)
		}
		if _, dup := seen[i]; dup {
			return fmt.Errorf("%w: %d", ErrDiscardDuplicate, i)
		}
		seen[i] = struct{}{}
	}
	return nil
}

// ValidateDistribution checks the energy distribution of an ActivateSystem.
func ValidateDistribution(sys game.System, dist map[game.System]int, reactor game.SystemState) error {
	if sys != game.FusionReactor {
		if dist != nil {
			return fmt.Errorf("%w: %s", ErrDistributionNotAllowed, sys)
		}
		return nil
	}
	if dist == nil {
		return ErrDistributionRequired
	}

	sum := 0
	for _, s := range game.Systems() {
		n, ok := dist[s]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrDistributionRequired, s)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s is negative", ErrDistributionSum, s)
		}
		sum += n
	}
	if len(dist) != len(game.SystemOrder) {
		return fmt.Errorf("%w: unexpected systems", ErrDistributionRequired)
	}

	if want := game.Allowance(reactor); sum != want {
		return fmt.Errorf("%w: total %d, allowance %d", ErrDistributionSum, sum, want)
	}
	return nil
}

// PassDiscardsRequired is how many cards a pass must name.
func PassDiscardsRequired(handSize int) int {
	if over := handSize - game.HandSizeCap; over > 0 {
		return over
	}
	return 0
}

// Validate runs every check the client is responsible for before a message
// leaves. It does not replace the engine's own legality checks.
func Validate(ua UserAction, me game.PlayerID, s *game.State) error {
	hand := s.Player(me).Hand

	switch a := ua.(type) {
	case ChooseAction:
		if !s.IsTurn(me) {
			return ErrNotYourTurn
		}
		if s.TurnState.Resolving {
			return ErrWrongTurnState
		}
		return validateChoice(a.Action, s.Player(me))

	case Pass:
		if !s.IsTurn(me) {
			return ErrNotYourTurn
		}
		if s.TurnState.Resolving {
			return ErrWrongTurnState
		}
		return ValidateDiscards(a.CardIndicesToDiscard, PassDiscardsRequired(len(hand)), len(hand), -1)

	case ResolveEffect:
		effects, resolving := s.Effects()
		if !resolving {
			return ErrWrongTurnState
		}
		if a.Resolution == nil {
			return ErrUnknownAction
		}
		kind := a.Resolution.Kind()
		if !game.ContainsEffect(effects, kind) {
			return fmt.Errorf("%w: %s", ErrEffectNotPending, kind)
		}
		if err := CheckActor(kind, me, s); err != nil {
			return err
		}
		return validateResolution(a.Resolution, hand)

	case StopResolvingEffects:
		effects, resolving := s.Effects()
		if !resolving {
			return ErrWrongTurnState
		}
		if !s.IsTurn(me) {
			return ErrNotYourTurn
		}
		if game.HasMandatory(effects) {
			return ErrMandatoryPending
		}
		return nil

	default:
		return ErrUnknownAction
	}
}

// CheckActor enforces who may resolve an effect: OpponentDiscard belongs to the
// non-active player, everything else to the active player.
func CheckActor(kind game.EffectKind, me game.PlayerID, s *game.State) error {
	if kind.ResolvedByOpponent() == s.IsTurn(me) {
		return fmt.Errorf("%w: %s", ErrWrongActor, kind)
	}
	return nil
}

func validateChoice(a Action, me *game.PlayerState) error {
	switch a := a.(type) {
	case PlayInstantCard:
		return checkCardIndex(a.CardIndex, len(me.Hand))
	case HotWireCard:
		return validateHotWire(a.CardIndex, a.IndicesToDiscard, me.Hand)
	case ActivateSystem:
		return ValidateDistribution(a.System, a.EnergyDistribution, me.FusionReactor)
	case DiscardOverload:
		if !a.System.Valid() {
			return fmt.Errorf("%w: %s", game.ErrUnknownSystem, a.System)
		}
		return nil
	case ReduceShortCircuits:
		return nil
	default:
		return ErrUnknownAction
	}
}

func validateResolution(r Resolution, hand []game.Card) error {
	switch r := r.(type) {
	case ResolvePlayHotWire:
		return validateHotWire(r.CardIndex, r.IndicesToDiscard, hand)
	case ResolveOpponentDiscard:
		return checkCardIndex(r.CardIndex, len(hand))
	case ResolveSimple:
		if r.Effect.NeedsInput() {
			return fmt.Errorf("%w: %s needs parameters", ErrUnknownAction, r.Effect)
		}
		return nil
	default:
		return nil
	}
}

func validateHotWire(cardIndex int, discards []int, hand []game.Card) error {
	if err := checkCardIndex(cardIndex, len(hand)); err != nil {
		return err
	}
	cost := hand[cardIndex].HotWireCost.CardsToDiscard
	return ValidateDiscards(discards, cost, len(hand), cardIndex)
}

func checkCardIndex(i, handSize int) error {
	if i < 0 || i >= handSize {
		return fmt.Errorf("%w: %d", ErrCardIndex, i)
	}
	return nil
}
