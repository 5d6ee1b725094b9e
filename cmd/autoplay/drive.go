package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/hub"
)

func newDriveCmd() *cobra.Command {
	var (
		romPath     string
		playerAgent string
		battleAgent string
		mode        string
		steps       int
		delay       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Run a headless session and print commentary to stdout",
		Long: `drive boots the session without the HTTP layer, lets the assigned
agents play, and prints each commentary entry as it is published. The run
ends after --steps commentary entries or on interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(romPath)
			if err != nil {
				return err
			}
			if playerAgent != "" {
				cfg.PlayerAgent = playerAgent
			}
			if battleAgent != "" {
				cfg.BattleAgent = battleAgent
			}
			if mode != "" {
				cfg.DispatchMode = mode
			}
			if delay > 0 {
				cfg.TickInterval = delay
			}

			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			session, cleanup, err := buildSession(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sub := session.Subscribe()
			defer sub.Close()

			if err := session.Start(); err != nil {
				return err
			}
			defer func() {
				if session.Status() == core.StatusRunning {
					_ = session.Stop()
				}
			}()

			seen := 0
			for steps <= 0 || seen < steps {
				select {
				case ev := <-sub.Events():
					if ev.Type != hub.EventCommentaryAdded || ev.Commentary == nil {
						continue
					}
					seen++
					fmt.Printf("#%d [%s] %s\n", ev.Commentary.Seq, ev.Commentary.Source, ev.Commentary.Text)
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to the game ROM (overrides AUTOPLAY_ROM)")
	cmd.Flags().StringVar(&playerAgent, "player", "", "agent id for the player seat")
	cmd.Flags().StringVar(&battleAgent, "battle", "", "agent id for the battle seat")
	cmd.Flags().StringVar(&mode, "mode", "", "dispatch mode: single or dual")
	cmd.Flags().IntVar(&steps, "steps", 20, "commentary entries to print before exiting (0 runs until interrupt)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "loop tick interval, slowing the run down (overrides AUTOPLAY_TICK_INTERVAL)")
	return cmd
}
