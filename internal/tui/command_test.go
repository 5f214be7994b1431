package tui

import (
	"errors"
	"testing"

	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want flow.Gesture
	}{
		{"card 1", flow.Gesture{Kind: flow.GestureClickCard, Index: 0}},
		{"C 3", flow.Gesture{Kind: flow.GestureClickCard, Index: 2}},
		{"instant", flow.Gesture{Kind: flow.GesturePlayInstant}},
		{"hw", flow.Gesture{Kind: flow.GestureHotWire}},
		{"pick weapons", flow.Gesture{Kind: flow.GesturePickSystem, System: game.Weapons}},
		{"p LifeSupport", flow.Gesture{Kind: flow.GesturePickSystem, System: game.LifeSupport}},
		{"ok", flow.Gesture{Kind: flow.GestureConfirm}},
		{"x", flow.Gesture{Kind: flow.GestureCancel}},
		{"a reactor", flow.Gesture{Kind: flow.GestureActivate, System: game.FusionReactor}},
		{"energy sg 0", flow.Gesture{Kind: flow.GestureSetEnergy, System: game.ShieldGenerator, Amount: 0}},
		{"set shields 2", flow.Gesture{Kind: flow.GestureSetEnergy, System: game.ShieldGenerator, Amount: 2}},
		{"u life", flow.Gesture{Kind: flow.GestureRemoveOverload, System: game.LifeSupport}},
		{"  pass  ", flow.Gesture{Kind: flow.GesturePass}},
		{"reduce", flow.Gesture{Kind: flow.GestureReduceShortCircuits}},
		{"e 2", flow.Gesture{Kind: flow.GestureClickEffect, Index: 1}},
		{"stop", flow.Gesture{Kind: flow.GestureStopResolving}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"", ErrUnknownCommand},
		{"dance", ErrUnknownCommand},
		{"card", ErrUsage},
		{"card 0", ErrUsage},
		{"card two", ErrUsage},
		{"pass now", ErrUsage},
		{"energy weapons", ErrUsage},
		{"energy weapons -1", ErrUsage},
		{"activate engines", game.ErrUnknownSystem},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(tt.line)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) err = %v, want %v", tt.line, err, tt.want)
			}
		})
	}
}
