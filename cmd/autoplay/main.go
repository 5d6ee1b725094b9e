// autoplay runs an emulated game session under agent control, either as an
// HTTP/WebSocket service or as a headless console run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaibhavi8/autoplay/config"
)

var rootCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Drive an emulated game session under agent control",
	Long: `autoplay boots a game ROM in an emulation backend and lets registered
agents play it: agents receive extracted game state, return action plans
with commentary, and the control loop executes them frame by frame.

Configuration comes from the environment (AUTOPLAY_* variables plus agent
API keys); flags on the subcommands override the assignment.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newDriveCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(romFlag string) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if romFlag != "" {
		cfg.ROMPath = romFlag
	}
	if cfg.ROMPath == "" {
		return config.Config{}, fmt.Errorf("no ROM path: set AUTOPLAY_ROM or pass --rom")
	}
	return cfg, nil
}
