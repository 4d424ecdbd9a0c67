package tui

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rahulvramesh/vibeco/internal/config"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

type ConfigSection string

const (
	SectionTranscription ConfigSection = "transcription"
	SectionRecording     ConfigSection = "recording"
	SectionOutput        ConfigSection = "output"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the TUI configuration wizard. A config without a credential
// goes through every section in order; otherwise a section menu is shown.
func Run(existingConfig *config.Config, onboarding bool) (*ConfigureResult, error) {
	if existingConfig == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := *existingConfig
	if !onboarding && hasUserChanges(&cfg) {
		return runEditExisting(&cfg)
	}
	return runFreshInstall(&cfg)
}

// hasUserChanges detects if config has user modifications
func hasUserChanges(cfg *config.Config) bool {
	if cfg.Transcription.APIKey != "" {
		return true
	}
	return *cfg != *config.DefaultConfig()
}

func runFreshInstall(cfg *config.Config) (*ConfigureResult, error) {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println(StyleMuted.Render("Let's get you recording. Press esc at any time to cancel."))
	fmt.Println()

	steps := []func(*config.Config) error{editTranscription, editRecording, editOutput}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			return abortResult(err)
		}
	}

	confirmed, err := showSummary(cfg)
	if err != nil {
		return abortResult(err)
	}
	if !confirmed {
		return &ConfigureResult{Cancelled: true}, nil
	}
	return &ConfigureResult{Config: cfg}, nil
}

// abortResult turns a form error into a result: esc or ctrl+c cancels the
// wizard, anything else is a real failure.
func abortResult(err error) (*ConfigureResult, error) {
	if errors.Is(err, huh.ErrUserAborted) {
		return &ConfigureResult{Cancelled: true}, nil
	}
	return nil, err
}

func runEditExisting(cfg *config.Config) (*ConfigureResult, error) {
	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return abortResult(err)
		}

		switch section {
		case SectionSaveExit:
			confirmed, err := showSummary(cfg)
			if err != nil {
				return abortResult(err)
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionTranscription, SectionRecording, SectionOutput:
			if err := editSection(section, cfg); err != nil && !errors.Is(err, huh.ErrUserAborted) {
				log.Printf("Configure: %s section failed: %v", section, err)
				return nil, err
			}
		}
	}
}

// editSection runs the form for one menu entry. Aborting a section returns
// to the menu.
func editSection(section ConfigSection, cfg *config.Config) error {
	switch section {
	case SectionTranscription:
		return editTranscription(cfg)
	case SectionRecording:
		return editRecording(cfg)
	case SectionOutput:
		return editOutput(cfg)
	}
	return fmt.Errorf("unknown section: %s", section)
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(formatTranscriptionLabel(cfg), SectionTranscription),
		huh.NewOption(formatRecordingLabel(cfg), SectionRecording),
		huh.NewOption(formatOutputLabel(cfg), SectionOutput),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)
	t.Focused.ErrorMessage = StyleError

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
