package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/vibeco/internal/deps"
	"github.com/rahulvramesh/vibeco/internal/recording"
	"github.com/rahulvramesh/vibeco/internal/tui"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check audio, credentials and desktop integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var devices deps.DeviceLister
			audio := recording.PortAudioDevice{}
			if err := audio.Initialize(); err != nil {
				devices = func() ([]string, error) { return nil, fmt.Errorf("portaudio: %w", err) }
			} else {
				defer audio.Terminate()
				devices = recording.InputDevices
			}

			failed := 0
			for _, c := range deps.Run(cfg, devices) {
				mark := tui.StyleSuccess.Render("ok  ")
				if !c.OK {
					mark = tui.StyleError.Render("FAIL")
					failed++
				}
				fmt.Printf("%s %-22s %s\n", mark, c.Name, tui.StyleMuted.Render(c.Detail))
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
