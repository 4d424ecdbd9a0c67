package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/vibeco/internal/config"
	"github.com/rahulvramesh/vibeco/internal/daemon"
	"github.com/rahulvramesh/vibeco/internal/tui"
)

func configureCmd() *cobra.Command {
	var onboarding bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for vibeco.
This will guide you through setting up:
- The Groq API key and transcription model
- Recording format, directory and length limit
- Notifications, clipboard and history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(onboarding)
		},
	}

	cmd.Flags().BoolVar(&onboarding, "onboarding", false, "Run the guided onboarding wizard")
	return cmd
}

func runConfigure(onboarding bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg, onboarding)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}
	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved successfully!"))
	fmt.Println()
	showNextSteps()
	return nil
}

func showNextSteps() {
	fmt.Println("Next Steps:")
	if daemon.Exists() {
		fmt.Println("1. The running daemon picks up model, key and auto-transcribe changes automatically")
		fmt.Println("   (restart it for recording settings)")
	} else {
		fmt.Println("1. Start the daemon: vibeco serve")
	}
	fmt.Println("2. Record: vibeco toggle")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}
