package game

// NewEmptyState builds a snapshot with every system initialised and no cards.
// The engine never sends this; it is used as a base for fixtures.
func NewEmptyState() State {
	return State{
		Player1:     newPlayerState(),
		Player2:     newPlayerState(),
		PlayersTurn: Player1,
		ActionsLeft: MaxActions,
		Deck:        []Card{},
		DiscardPile: []Card{},
	}
}

func newPlayerState() PlayerState {
	return PlayerState{
		Hand:            []Card{},
		FusionReactor:   SystemState{System: FusionReactor, HotWires: []Card{}},
		LifeSupport:     SystemState{System: LifeSupport, HotWires: []Card{}},
		ShieldGenerator: SystemState{System: ShieldGenerator, HotWires: []Card{}},
		Weapons:         SystemState{System: Weapons, HotWires: []Card{}},
	}
}

// ContainsEffect reports whether kind is pending in effects.
func ContainsEffect(effects []Effect, kind EffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Resolving returns a copy of s in ResolvingEffects with the given effects.
func (s State) Resolving(effects ...Effect) State {
	if effects == nil {
		effects = []Effect{}
	}
	s.TurnState = TurnState{Resolving: true, Effects: effects}
	return s
}
