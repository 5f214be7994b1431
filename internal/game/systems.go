package game

import "fmt"

type System string

const (
	FusionReactor   System = "FusionReactor"
	LifeSupport     System = "LifeSupport"
	ShieldGenerator System = "ShieldGenerator"
	Weapons         System = "Weapons"
)

type systemInfo struct {
	System      System
	DisplayName string
	// energy a system can hold before hot-wires; matches the engine's starting effects
	BaseAllowance int
}

// SystemOrder is the order systems are shown and offered in every picker.
var SystemOrder = []systemInfo{
	{System: FusionReactor, DisplayName: "Fusion Reactor", BaseAllowance: 5},
	{System: LifeSupport, DisplayName: "Life Support", BaseAllowance: 3},
	{System: ShieldGenerator, DisplayName: "Shield Generator", BaseAllowance: 3},
	{System: Weapons, DisplayName: "Weapons System", BaseAllowance: 3},
}

// Systems lists the four systems in picker order.
func Systems() []System {
	out := make([]System, 0, len(SystemOrder))
	for _, info := range SystemOrder {
		out = append(out, info.System)
	}
	return out
}

func lookupSystem(s System) (systemInfo, bool) {
	for _, info := range SystemOrder {
		if info.System == s {
			return info, true
		}
	}
	return systemInfo{}, false
}

func ParseSystem(s string) (System, error) {
	if _, ok := lookupSystem(System(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSystem, s)
	}
	return System(s), nil
}

func (s System) Valid() bool {
	_, ok := lookupSystem(s)
	return ok
}

func (s System) DisplayName() string {
	if info, ok := lookupSystem(s); ok {
		return info.DisplayName
	}
	return string(s)
}

func (s System) BaseAllowance() int {
	info, _ := lookupSystem(s)
	return info.BaseAllowance
}

// Allowance is the energy capacity of a system: its base plus one per
// StoreMoreEnergy tag on its hot-wired cards.
func Allowance(sys SystemState) int {
	n := sys.System.BaseAllowance()
	for _, card := range sys.HotWires {
		for _, e := range card.HotWireEffects {
			if e.Kind == EffectStoreMoreEnergy {
				n++
			}
		}
	}
	return n
}

// TotalEnergy sums the energy currently held across a player's systems.
func TotalEnergy(p *PlayerState) int {
	total := 0
	for _, sys := range p.Systems() {
		total += sys.Energy
	}
	return total
}
