package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/view"
)

var (
	accent = lipgloss.Color("205")
	muted  = lipgloss.Color("241")
	warn   = lipgloss.Color("203")
	good   = lipgloss.Color("42")
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	panel    lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	selected lipgloss.Style
	notice   lipgloss.Style
	enabled  lipgloss.Style
	prompt   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		header:   lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("236")),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		label:    lipgloss.NewStyle().Bold(true),
		dim:      lipgloss.NewStyle().Foreground(muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		notice:   lipgloss.NewStyle().Bold(true).Foreground(warn),
		enabled:  lipgloss.NewStyle().Foreground(good),
		prompt:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(0, 1),
	}
}

func (st styles) render(v view.View, width int) string {
	if v.Waiting {
		return st.panel.Render(fmt.Sprintf("Waiting for game %q as %s...", v.Game, v.Me))
	}

	info := strings.Join([]string{v.Info.Turn, v.Info.Actions, v.Info.TurnState, v.Info.Piles}, " | ")
	if !v.Connected {
		info += " | disconnected"
	}
	parts := []string{
		st.header.Render(info),
		lipgloss.JoinHorizontal(lipgloss.Top,
			st.board("Opponent", v.Opponent, len(v.OpponentHand)),
			st.board("You", v.Self, -1),
		),
		st.hand(v.Hand),
	}
	if len(v.Effects) > 0 || v.Stop.Visible {
		parts = append(parts, st.effects(v))
	}
	parts = append(parts, st.buttons(v.Pass, v.ReduceShortCircuits))
	if v.Prompt != nil {
		parts = append(parts, st.promptBox(v.Prompt))
	}
	if v.Notice != "" {
		parts = append(parts, st.notice.Render("! "+v.Notice))
	}
	out := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

// board renders one side. handSize < 0 hides the hand count.
func (st styles) board(title string, b view.Board, handSize int) string {
	var sb strings.Builder
	sb.WriteString(st.title.Render(fmt.Sprintf("%s (%s)", title, b.Player)))
	sb.WriteString("\n")
	sb.WriteString(strings.Join([]string{b.Hull, b.Shields, b.ShortCircuits}, "  "))
	if handSize >= 0 {
		fmt.Fprintf(&sb, "  Hand: %d", handSize)
	}
	for _, sys := range b.Systems {
		sb.WriteString("\n")
		sb.WriteString(st.system(sys))
	}
	return st.panel.Render(sb.String())
}

func (st styles) system(sys view.SystemView) string {
	line := fmt.Sprintf("%-17s %d/%d", sys.Name, sys.Energy, sys.Allowance)
	if sys.Overloads > 0 {
		line += fmt.Sprintf(" overload x%d", sys.Overloads)
	}
	if len(sys.HotWires) > 0 {
		names := make([]string, 0, len(sys.HotWires))
		for _, c := range sys.HotWires {
			names = append(names, c.Name)
		}
		line += " [" + strings.Join(names, ", ") + "]"
	}
	var marks []string
	if sys.CanActivate {
		marks = append(marks, "activate")
	}
	if sys.CanRemoveOverload {
		marks = append(marks, "unoverload")
	}
	if len(marks) > 0 {
		line += " " + st.enabled.Render("<"+strings.Join(marks, "|")+">")
	}
	if sys.Dimmed {
		return st.dim.Render(line)
	}
	return line
}

func (st styles) hand(cards []view.HandCard) string {
	if len(cards) == 0 {
		return st.dim.Render("Hand is empty")
	}
	lines := []string{st.label.Render("Hand")}
	for _, c := range cards {
		line := fmt.Sprintf("%2d. %s (cost %d)", c.Index+1, c.Name, c.Cost)
		if len(c.Effects) > 0 {
			line += " " + strings.Join(c.Effects, ", ")
		}
		switch {
		case c.Selected:
			line = st.selected.Render("* " + line)
		case c.Excluded || !c.Clickable:
			line = st.dim.Render("  " + line)
		default:
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (st styles) effects(v view.View) string {
	lines := []string{st.label.Render("Effects")}
	for _, e := range v.Effects {
		line := fmt.Sprintf("%2d. %s", e.Index+1, e.Label)
		if e.Mandatory {
			line += " (mandatory)"
		}
		if e.Hint != "" {
			line += " - " + e.Hint
		}
		if !e.Enabled {
			line = st.dim.Render(line)
		}
		lines = append(lines, line)
	}
	if v.Stop.Visible {
		lines = append(lines, st.button("stop", v.Stop))
	}
	return strings.Join(lines, "\n")
}

func (st styles) button(cmd string, b view.Button) string {
	text := fmt.Sprintf("[%s] %s", cmd, b.Label)
	if !b.Enabled {
		if b.Hint != "" {
			text += " - " + b.Hint
		}
		return st.dim.Render(text)
	}
	return st.enabled.Render(text)
}

func (st styles) buttons(pass, reduce view.Button) string {
	var out []string
	if pass.Visible {
		out = append(out, st.button("pass", pass))
	}
	if reduce.Visible {
		out = append(out, st.button("reduce", reduce))
	}
	return strings.Join(out, "  ")
}

func (st styles) promptBox(p *view.Prompt) string {
	lines := []string{st.title.Render(p.Title)}
	if p.Label != "" {
		lines = append(lines, p.Label)
	}
	switch p.Kind {
	case flow.StageCardMenu.String():
		lines = append(lines, "instant | hotwire | cancel")
	case flow.StageSelectCards.String():
		lines = append(lines, fmt.Sprintf("Chosen %d of %d (card N to toggle)", p.CardChosen, p.CardCount))
	}
	for _, o := range p.Options {
		lines = append(lines, fmt.Sprintf("  pick %s  (%s)", o.System, o.Name))
	}
	for _, r := range p.Distribution {
		row := fmt.Sprintf("  %-17s %d", r.Name, r.Energy)
		if r.Locked {
			row = st.dim.Render(row + " locked")
		}
		lines = append(lines, row)
	}
	if p.Total != "" {
		lines = append(lines, p.Total)
	}
	if p.Confirm.Visible {
		lines = append(lines, st.button("ok", p.Confirm))
	}
	lines = append(lines, st.dim.Render("cancel to abandon"))
	return st.prompt.Render(strings.Join(lines, "\n"))
}
