package view

import (
	"fmt"

	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

// Input is everything a view is derived from. Derive never mutates it.
type Input struct {
	Game      string
	Me        game.PlayerID
	Connected bool
	State     *game.State
	Chain     *flow.Chain
	Selection *flow.Selection
	Notice    string
}

type View struct {
	Game      string        `json:"game"`
	Me        game.PlayerID `json:"me"`
	Connected bool          `json:"connected"`
	// Waiting is set until the first snapshot arrives.
	Waiting bool `json:"waiting"`

	Info     InfoBar `json:"info"`
	Self     Board   `json:"self"`
	Opponent Board   `json:"opponent"`

	Hand         []HandCard `json:"hand"`
	OpponentHand []CardView `json:"opponent_hand"`

	Effects             []EffectChip `json:"effects"`
	Stop                Button       `json:"stop"`
	Pass                Button       `json:"pass"`
	ReduceShortCircuits Button       `json:"reduce_short_circuits"`

	Prompt *Prompt `json:"prompt,omitempty"`
	Notice string  `json:"notice,omitempty"`
}

type InfoBar struct {
	Turn      string `json:"turn"`
	Actions   string `json:"actions"`
	TurnState string `json:"turn_state"`
	Piles     string `json:"piles"`
	MyTurn    bool   `json:"my_turn"`
}

type Board struct {
	Player        game.PlayerID `json:"player"`
	Hull          string        `json:"hull"`
	Shields       string        `json:"shields"`
	ShortCircuits string        `json:"short_circuits"`
	Systems       []SystemView  `json:"systems"`
}

type SystemView struct {
	System            game.System `json:"system"`
	Name              string      `json:"name"`
	Energy            int         `json:"energy"`
	Allowance         int         `json:"allowance"`
	Overloads         int         `json:"overloads"`
	HotWires          []CardView  `json:"hot_wires"`
	Dimmed            bool        `json:"dimmed"`
	CanActivate       bool        `json:"can_activate"`
	CanRemoveOverload bool        `json:"can_remove_overload"`
}

type CardView struct {
	Name    string   `json:"name"`
	Art     string   `json:"art,omitempty"`
	Cost    int      `json:"cost"`
	Effects []string `json:"effects,omitempty"`
}

type HandCard struct {
	Index int `json:"index"`
	CardView
	Selected  bool `json:"selected"`
	Excluded  bool `json:"excluded"`
	Clickable bool `json:"clickable"`
}

type EffectChip struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Mandatory bool   `json:"mandatory"`
	Enabled   bool   `json:"enabled"`
	Hint      string `json:"hint,omitempty"`
}

type Button struct {
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Hint    string `json:"hint,omitempty"`
}

// Prompt is the active flow: a menu, a system picker, the energy dialog or a
// card selection.
type Prompt struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Label   string   `json:"label,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Options []Option `json:"options,omitempty"`

	Distribution []EnergyRow `json:"distribution,omitempty"`
	Total        string      `json:"total,omitempty"`

	Confirm    Button `json:"confirm"`
	CardChosen int    `json:"card_chosen,omitempty"`
	CardCount  int    `json:"card_count,omitempty"`
}

type Option struct {
	System game.System `json:"system"`
	Name   string      `json:"name"`
}

type EnergyRow struct {
	System game.System `json:"system"`
	Name   string      `json:"name"`
	Energy int         `json:"energy"`
	Locked bool        `json:"locked"`
}

// Derive builds the view for one render.
func Derive(in Input) View {
	v := View{
		Game:      in.Game,
		Me:        in.Me,
		Connected: in.Connected,
		Notice:    in.Notice,
		Prompt:    prompt(in.Chain, in.Selection),
	}
	s := in.State
	if s == nil {
		v.Waiting = true
		return v
	}

	me := s.Player(in.Me)
	canAct := s.CanChooseAction(in.Me)

	v.Info = infoBar(s, in.Me)
	v.Self = board(in.Me, me, canAct)
	v.Opponent = board(in.Me.Other(), s.Player(in.Me.Other()), false)
	v.Hand = hand(me.Hand, in.Selection, canAct)
	v.OpponentHand = cards(s.Player(in.Me.Other()).Hand)

	v.Effects, v.Stop = effects(s, in.Me)
	v.Pass = Button{Label: "Pass", Visible: true, Enabled: canAct}
	v.ReduceShortCircuits = Button{Label: "Reduce Short Circuits", Visible: true, Enabled: canAct}
	return v
}

func infoBar(s *game.State, me game.PlayerID) InfoBar {
	turn := "Player 2's Turn"
	if s.PlayersTurn == game.Player1 {
		turn = "Player 1's Turn"
	}
	return InfoBar{
		Turn:      turn,
		Actions:   fmt.Sprintf("Actions: %d/%d", s.ActionsLeft, game.MaxActions),
		TurnState: s.TurnState.String(),
		Piles:     fmt.Sprintf("Deck: %d | Discard: %d", len(s.Deck), len(s.DiscardPile)),
		MyTurn:    s.IsTurn(me),
	}
}

func board(id game.PlayerID, p *game.PlayerState, canAct bool) Board {
	b := Board{
		Player:        id,
		Hull:          fmt.Sprintf("Hull: %d/%d", p.HullDamage, game.MaxHullDamage),
		Shields:       fmt.Sprintf("Shields: %d", p.Shields),
		ShortCircuits: fmt.Sprintf("Short Circuits: %d", p.ShortCircuits),
	}
	for _, sys := range p.Systems() {
		overloaded := sys.Overloaded()
		b.Systems = append(b.Systems, SystemView{
			System:            sys.System,
			Name:              sys.System.DisplayName(),
			Energy:            sys.Energy,
			Allowance:         game.Allowance(sys),
			Overloads:         sys.Overloads,
			HotWires:          cards(sys.HotWires),
			Dimmed:            overloaded,
			CanActivate:       canAct && !overloaded,
			CanRemoveOverload: canAct && overloaded,
		})
	}
	return b
}

func card(c game.Card) CardView {
	cv := CardView{Name: c.Name, Art: Art(c.Name), Cost: c.HotWireCost.CardsToDiscard}
	for _, e := range c.HotWireEffects {
		cv.Effects = append(cv.Effects, e.Kind.DisplayName())
	}
	return cv
}

func cards(cs []game.Card) []CardView {
	out := make([]CardView, 0, len(cs))
	for _, c := range cs {
		out = append(out, card(c))
	}
	return out
}

func hand(cs []game.Card, sel *flow.Selection, canAct bool) []HandCard {
	out := make([]HandCard, 0, len(cs))
	for i, c := range cs {
		hc := HandCard{Index: i, CardView: card(c), Clickable: canAct}
		if sel != nil {
			hc.Excluded = i == sel.Exclude
			hc.Selected = !hc.Excluded && sel.IsChosen(i)
			hc.Clickable = !hc.Excluded
		}
		out = append(out, hc)
	}
	return out
}

func effects(s *game.State, me game.PlayerID) ([]EffectChip, Button) {
	stop := Button{Label: "Stop Resolving"}
	pending, resolving := s.Effects()
	if !resolving || len(pending) == 0 {
		return nil, stop
	}

	chips := make([]EffectChip, 0, len(pending))
	for i, e := range pending {
		chip := EffectChip{
			Index:     i,
			Label:     e.Kind.DisplayName(),
			Mandatory: e.Mandatory(),
			Enabled:   flow.EffectEnabled(s, me, e),
		}
		if e.Kind.ResolvedByOpponent() {
			chip.Hint = "Opponent must discard"
			if chip.Enabled {
				chip.Hint = "Pick a card from your hand to discard"
			}
		}
		chips = append(chips, chip)
	}

	stop.Visible = s.IsTurn(me)
	stop.Enabled = flow.StopEnabled(s, me)
	if stop.Visible && !stop.Enabled {
		stop.Hint = "Must resolve mandatory effects first"
	}
	return chips, stop
}

func prompt(c *flow.Chain, sel *flow.Selection) *Prompt {
	if sel != nil {
		title := ""
		if c != nil {
			title = c.Title
		}
		return &Prompt{
			Kind:       flow.StageSelectCards.String(),
			Title:      title,
			Label:      sel.Prompt(),
			CardChosen: len(sel.Chosen),
			CardCount:  sel.Count,
			Confirm:    Button{Label: sel.ConfirmLabel, Visible: sel.Complete(), Enabled: sel.Complete()},
		}
	}
	if c == nil {
		return nil
	}

	p := &Prompt{Kind: c.Stage.String(), Title: c.Title, Label: c.StageLabel()}
	switch c.Stage {
	case flow.StageCardMenu:
		p.Choices = []string{"Play Instant", "Hot-Wire", "Cancel"}
	case flow.StagePickSystem, flow.StagePickFrom, flow.StagePickTo:
		for _, sys := range c.Options() {
			p.Options = append(p.Options, Option{System: sys, Name: sys.DisplayName()})
		}
	case flow.StageDistribute:
		for _, sys := range game.Systems() {
			p.Distribution = append(p.Distribution, EnergyRow{
				System: sys,
				Name:   sys.DisplayName(),
				Energy: c.Distribution[sys],
				Locked: c.Locked[sys],
			})
		}
		total := c.DistributionTotal()
		p.Total = fmt.Sprintf("Total: %d / %d", total, c.Allowance)
		p.Confirm = Button{Label: "Confirm", Visible: true, Enabled: total == c.Allowance}
	}
	return p
}
