// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable the binaries read from the environment.
// Durations accept Go duration syntax ("33ms", "30s").
type Config struct {
	// ROMPath locates the game image to boot.
	ROMPath string `env:"AUTOPLAY_ROM"`

	// Addr is the HTTP listen address of the boundary API.
	Addr string `env:"AUTOPLAY_ADDR" envDefault:":8080"`

	// HistoryDB persists commentary across restarts. Empty keeps history
	// in memory only.
	HistoryDB string `env:"AUTOPLAY_HISTORY_DB"`

	// FrameQuantum is how many frames each loop iteration advances.
	FrameQuantum int `env:"AUTOPLAY_FRAME_QUANTUM" envDefault:"2"`

	// TickInterval paces loop iterations.
	TickInterval time.Duration `env:"AUTOPLAY_TICK_INTERVAL" envDefault:"33ms"`

	// StateEvery extracts and broadcasts state every N loop iterations.
	StateEvery int `env:"AUTOPLAY_STATE_EVERY" envDefault:"15"`

	// FrameEvery captures and broadcasts a screenshot every N iterations.
	FrameEvery int `env:"AUTOPLAY_FRAME_EVERY" envDefault:"30"`

	// DecisionTimeout bounds each agent decision request.
	DecisionTimeout time.Duration `env:"AUTOPLAY_DECISION_TIMEOUT" envDefault:"30s"`

	// PlayerAgent and BattleAgent are the initial assignment ids.
	PlayerAgent string `env:"AUTOPLAY_PLAYER_AGENT" envDefault:"scripted"`
	BattleAgent string `env:"AUTOPLAY_BATTLE_AGENT"`

	// DispatchMode is "single" or "dual".
	DispatchMode string `env:"AUTOPLAY_DISPATCH" envDefault:"single"`

	// AnthropicAPIKey enables the Claude-backed agent when set.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// XAIAPIKey enables the Grok-backed agent when set.
	XAIAPIKey string `env:"XAI_API_KEY"`

	// XAIBaseURL overrides the Grok endpoint.
	XAIBaseURL string `env:"XAI_BASE_URL" envDefault:"https://api.x.ai/v1"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `env:"AUTOPLAY_LOG_LEVEL" envDefault:"info"`

	// LogFormat is text or json.
	LogFormat string `env:"AUTOPLAY_LOG_FORMAT" envDefault:"text"`
}

// FromEnv loads a Config from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
