package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/nesforge/gones/internal/emulator"
)

func newRunCommand(configPath *string) *cobra.Command {
	var nogui bool
	var headlessFrames int

	cmd := &cobra.Command{
		Use:   "run <rom-file>",
		Short: "Run a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := emulator.NewConfig()
			path := *configPath
			if path == "" {
				path = emulator.DefaultConfigPath()
			}
			if err := cfg.LoadFromFile(path); err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			romBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading ROM: %w", err)
			}

			emu, err := emulator.New(romBytes, cfg.Audio.SampleRate)
			if err != nil {
				return fmt.Errorf("loading ROM: %w", err)
			}

			if nogui {
				return runHeadless(emu, headlessFrames)
			}
			return runGUI(emu, cfg)
		},
	}

	cmd.Flags().BoolVar(&nogui, "nogui", false, "run headless, without a display")
	cmd.Flags().IntVar(&headlessFrames, "frames", 60, "number of frames to run in headless mode")

	return cmd
}

func runHeadless(emu *emulator.Emulator, frames int) error {
	for i := 0; i < frames; i++ {
		emu.RunUntilFrame()
		emu.DrainAudio()
	}
	return nil
}

func runGUI(emu *emulator.Emulator, cfg *emulator.Config) error {
	g, err := newGame(emu, cfg)
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}

	w, h := cfg.WindowResolution()
	ebiten.SetWindowTitle("gones")
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(cfg.Video.VSync)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	return ebiten.RunGame(g)
}
