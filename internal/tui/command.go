package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lukemcneil/shields-up-engineering-client/internal/flow"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

var ErrUnknownCommand = errors.New("unknown command")
var ErrUsage = errors.New("usage")

var systemAliases = map[string]game.System{
	"reactor": game.FusionReactor,
	"fusion":  game.FusionReactor,
	"fr":      game.FusionReactor,
	"life":    game.LifeSupport,
	"ls":      game.LifeSupport,
	"shield":  game.ShieldGenerator,
	"shields": game.ShieldGenerator,
	"sg":      game.ShieldGenerator,
	"weapons": game.Weapons,
	"weapon":  game.Weapons,
	"w":       game.Weapons,
}

// parseSystem accepts a short alias or the wire name in any case.
func parseSystem(s string) (game.System, error) {
	s = strings.ToLower(s)
	if sys, ok := systemAliases[s]; ok {
		return sys, nil
	}
	for _, sys := range game.Systems() {
		if strings.EqualFold(string(sys), s) {
			return sys, nil
		}
	}
	return "", fmt.Errorf("%w: %q", game.ErrUnknownSystem, s)
}

// parsePosition reads a 1-based position as shown on screen.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a position", ErrUsage, s)
	}
	return n - 1, nil
}

type commandFunc func(args []string) (flow.Gesture, error)

func noArgs(kind flow.GestureKind) commandFunc {
	return func(args []string) (flow.Gesture, error) {
		if len(args) != 0 {
			return flow.Gesture{}, fmt.Errorf("%w: %s takes no arguments", ErrUsage, kind)
		}
		return flow.Gesture{Kind: kind}, nil
	}
}

func positional(kind flow.GestureKind) commandFunc {
	return func(args []string) (flow.Gesture, error) {
		if len(args) != 1 {
			return flow.Gesture{}, fmt.Errorf("%w: %s N", ErrUsage, kind)
		}
		i, err := parsePosition(args[0])
		if err != nil {
			return flow.Gesture{}, err
		}
		return flow.Gesture{Kind: kind, Index: i}, nil
	}
}

func onSystem(kind flow.GestureKind) commandFunc {
	return func(args []string) (flow.Gesture, error) {
		if len(args) != 1 {
			return flow.Gesture{}, fmt.Errorf("%w: %s SYSTEM", ErrUsage, kind)
		}
		sys, err := parseSystem(args[0])
		if err != nil {
			return flow.Gesture{}, err
		}
		return flow.Gesture{Kind: kind, System: sys}, nil
	}
}

var setEnergy commandFunc = func(args []string) (flow.Gesture, error) {
	if len(args) != 2 {
		return flow.Gesture{}, fmt.Errorf("%w: energy SYSTEM N", ErrUsage)
	}
	sys, err := parseSystem(args[0])
	if err != nil {
		return flow.Gesture{}, err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return flow.Gesture{}, fmt.Errorf("%w: energy must be a number from 0", ErrUsage)
	}
	return flow.Gesture{Kind: flow.GestureSetEnergy, System: sys, Amount: n}, nil
}

var commands = map[string]commandFunc{
	"card":       positional(flow.GestureClickCard),
	"c":          positional(flow.GestureClickCard),
	"instant":    noArgs(flow.GesturePlayInstant),
	"i":          noArgs(flow.GesturePlayInstant),
	"hotwire":    noArgs(flow.GestureHotWire),
	"hw":         noArgs(flow.GestureHotWire),
	"pick":       onSystem(flow.GesturePickSystem),
	"p":          onSystem(flow.GesturePickSystem),
	"ok":         noArgs(flow.GestureConfirm),
	"confirm":    noArgs(flow.GestureConfirm),
	"cancel":     noArgs(flow.GestureCancel),
	"x":          noArgs(flow.GestureCancel),
	"activate":   onSystem(flow.GestureActivate),
	"a":          onSystem(flow.GestureActivate),
	"energy":     setEnergy,
	"set":        setEnergy,
	"unoverload": onSystem(flow.GestureRemoveOverload),
	"u":          onSystem(flow.GestureRemoveOverload),
	"pass":       noArgs(flow.GesturePass),
	"reduce":     noArgs(flow.GestureReduceShortCircuits),
	"effect":     positional(flow.GestureClickEffect),
	"e":          positional(flow.GestureClickEffect),
	"stop":       noArgs(flow.GestureStopResolving),
}

// Parse turns one typed line into a gesture. Positions are 1-based.
func Parse(line string) (flow.Gesture, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return flow.Gesture{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	build, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return flow.Gesture{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	return build(fields[1:])
}

const helpText = `card N (c)        click hand card N
instant (i)       play the chosen card as an instant
hotwire (hw)      hot-wire the chosen card
pick SYS (p)      choose a system in a picker
ok / cancel (x)   confirm or abandon the current flow
activate SYS (a)  activate a system
energy SYS N      set energy in the reactor dialog
unoverload SYS (u)  remove an overload
pass, reduce, stop
effect N (e)      resolve pending effect N
leave, quit, help
systems: reactor, life, shield, weapons`
