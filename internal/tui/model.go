package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
	"github.com/lukemcneil/shields-up-engineering-client/internal/view"
)

// Connector opens a live session for one game and seat.
type Connector func(ctx context.Context, gameName string, player game.PlayerID) (*session.Session, error)

type screen int

const (
	screenConnect screen = iota
	screenConnecting
	screenGame
)


type connectedMsg struct {
	s     *session.Session
	views chan view.View
}

type connectFailedMsg struct{ err error }

type viewMsg struct{ v view.View }

// endedMsg means the session stopped and closed our outbox.
type endedMsg struct{ s *session.Session }

type Options struct {
	Game   string
	Player game.PlayerID
	// AutoConnect dials on start when Game is set.
	AutoConnect bool
	Logger      *zap.Logger
}

type Model struct {
	ctx     context.Context
	connect Connector
	log     *zap.Logger
	st      styles

	screen screen
	input  textinput.Model
	game   string
	player game.PlayerID
	auto   bool

	sess   *session.Session
	views  chan view.View
	view   view.View
	status string
	help   bool
	width  int
}

func New(ctx context.Context, connect Connector, opts Options) Model {
	in := textinput.New()
	in.CharLimit = 64
	in.Focus()

	m := Model{
		ctx:     ctx,
		connect: connect,
		log:     logger.OrNop(opts.Logger),
		st:      defaultStyles(),
		input:   in,
		game:    opts.Game,
		player:  opts.Player,
		auto:    opts.AutoConnect && opts.Game != "",
	}
	if m.player == "" {
		m.player = game.Player1
	}
	m.toConnectScreen()
	return m
}

func (m *Model) toConnectScreen() {
	m.screen = screenConnect
	m.input.Placeholder = "game name"
	m.input.SetValue(m.game)
	m.input.CursorEnd()
}

func (m Model) Init() tea.Cmd {
	if m.auto {
		return tea.Batch(textinput.Blink, func() tea.Msg { return startMsg{} })
	}
	return textinput.Blink
}

type startMsg struct{}

func (m Model) dial() tea.Cmd {
	ctx, gameName, player, connect := m.ctx, m.game, m.player, m.connect
	return func() tea.Msg {
		s, err := connect(ctx, gameName, player)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		// Only the newest view matters to the screen; a slow render must
		// not cost us the session.
		views := make(chan view.View, 1)
		if !s.Post(session.Join{ClientID: "tui", Outbox: views, Latest: true}) {
			return connectFailedMsg{err: session.ErrEnded}
		}
		return connectedMsg{s: s, views: views}
	}
}

func waitView(s *session.Session, views <-chan view.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-views
		if !ok {
			return endedMsg{s: s}
		}
		return viewMsg{v: v}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m.quit()
		case tea.KeyTab:
			if m.screen == screenConnect {
				m.player = m.player.Other()
				return m, nil
			}
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if m.screen == screenConnect {
				return m.submitGame(line)
			}
			if m.screen == screenGame {
				return m.submitCommand(line)
			}
			return m, nil
		}

	case startMsg:
		return m.submitGame(m.game)

	case connectedMsg:
		if m.screen != screenConnecting {
			msg.s.Post(session.Shutdown{})
			return m, nil
		}
		m.sess, m.views = msg.s, msg.views
		m.screen = screenGame
		m.status = ""
		m.input.Placeholder = "command (help)"
		m.log.Info("joined game", zap.String("game", m.game), zap.String("player", string(m.player)))
		return m, waitView(m.sess, m.views)

	case connectFailedMsg:
		m.log.Warn("connect failed", zap.String("game", m.game), zap.Error(msg.err))
		m.status = fmt.Sprintf("Could not connect: %v", msg.err)
		m.toConnectScreen()
		return m, nil

	case viewMsg:
		m.view = msg.v
		return m, waitView(m.sess, m.views)

	case endedMsg:
		if msg.s != m.sess {
			return m, nil
		}
		m.sess, m.views = nil, nil
		m.view = view.View{}
		m.status = "Disconnected from game"
		m.toConnectScreen()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitGame(name string) (tea.Model, tea.Cmd) {
	if name == "" {
		m.status = "Enter a game name"
		return m, nil
	}
	m.game = name
	m.status = ""
	m.screen = screenConnecting
	return m, m.dial()
}

func (m Model) submitCommand(line string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch strings.ToLower(line) {
	case "":
		return m, nil
	case "quit", "q":
		return m.quit()
	case "help", "?":
		m.help = !m.help
		return m, nil
	case "leave":
		// The outbox closes and endedMsg returns us to the connect screen.
		m.sess.Post(session.Shutdown{})
		return m, nil
	}

	g, err := Parse(line)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	// Local rejections come back as a notice on the next view.
	m.sess.Post(session.Input{Gesture: g})
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.sess != nil {
		m.sess.Post(session.Shutdown{})
	}
	return m, tea.Quit
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenConnect:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.st.title.Render("Shields Up Engineering"),
			"",
			"Game:   "+m.input.View(),
			fmt.Sprintf("Player: %s %s", m.player, m.st.dim.Render("(tab to switch)")),
			"",
			m.st.dim.Render("enter to join, ctrl+c to quit"),
		)
	case screenConnecting:
		body = fmt.Sprintf("Connecting to %q as %s...", m.game, m.player)
	case screenGame:
		parts := []string{m.st.render(m.view, m.width)}
		if m.help {
			parts = append(parts, m.st.panel.Render(helpText))
		}
		parts = append(parts, m.input.View())
		body = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	if m.status != "" {
		body += "\n" + m.st.notice.Render(m.status)
	}
	return body + "\n"
}

// Run drives the terminal until the user quits.
func Run(ctx context.Context, connect Connector, opts Options) error {
	p := tea.NewProgram(New(ctx, connect, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
