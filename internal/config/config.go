package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	EngineHost string
	EnginePort int
	GameName   string
	Player     game.PlayerID

	LogLevel string
	LogFile  string

	// JournalDSN is a postgres DSN; empty disables the journal.
	JournalDSN string
	BridgeAddr string
}

// Load reads .env (if present), then the environment, then flags in args.
func Load(name string, args []string) (*Config, error) {
	_ = godotenv.Load()

	port := 8000
	if v := os.Getenv("ENGINE_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: ENGINE_PORT=%q", ErrInvalid, v)
		}
		port = n
	}

	cfg := &Config{
		EngineHost: getenv("ENGINE_HOST", "localhost"),
		EnginePort: port,
		GameName:   os.Getenv("GAME_NAME"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFile:    getenv("LOG_FILE", "client.log"),
		JournalDSN: os.Getenv("JOURNAL_DSN"),
		BridgeAddr: getenv("BRIDGE_ADDR", ":8080"),
	}
	player := getenv("PLAYER", string(game.Player1))

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.EngineHost, "host", cfg.EngineHost, "game engine host")
	fs.IntVar(&cfg.EnginePort, "port", cfg.EnginePort, "game engine port")
	fs.StringVar(&cfg.GameName, "game", cfg.GameName, "game name to join")
	fs.StringVar(&player, "player", player, "identity to play as (Player1 or Player2)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log destination; empty logs to stderr")
	fs.StringVar(&cfg.JournalDSN, "journal", cfg.JournalDSN, "postgres DSN for the action journal")
	fs.StringVar(&cfg.BridgeAddr, "addr", cfg.BridgeAddr, "bridge listen address")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	p, err := game.ParsePlayer(player)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.Player = p

	if cfg.EnginePort <= 0 || cfg.EnginePort > 65535 {
		return nil, fmt.Errorf("%w: port %d", ErrInvalid, cfg.EnginePort)
	}
	if cfg.EngineHost == "" {
		return nil, fmt.Errorf("%w: empty engine host", ErrInvalid)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
