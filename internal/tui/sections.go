package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/rahulvramesh/vibeco/internal/config"
	"github.com/rahulvramesh/vibeco/internal/provider"
)

func editTranscription(cfg *config.Config) error {
	p := provider.GetProvider(cfg.Transcription.Provider)
	if p == nil {
		p = provider.Default()
		cfg.Transcription.Provider = p.Name()
	}

	apiKey := cfg.Transcription.APIKey
	keyDesc := fmt.Sprintf("Starts with gsk_. Leave empty to use $%s", provider.EnvVarForProvider(p.Name()))
	if apiKey != "" {
		keyDesc = fmt.Sprintf("Currently: %s. %s", maskKey(apiKey), keyDesc)
	}

	model := cfg.Transcription.Model
	if model == "" {
		model = p.DefaultModel()
	}
	auto := cfg.Transcription.AutoTranscribe

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Groq API Key").
				Description(keyDesc).
				EchoMode(huh.EchoModePassword).
				Validate(keyValidator(p)).
				Value(&apiKey),
			huh.NewSelect[string]().
				Title("Transcription Model").
				Options(modelOptions(p)...).
				Value(&model),
			huh.NewConfirm().
				Title("Transcribe automatically after each recording?").
				Affirmative("Yes").
				Negative("No").
				Value(&auto),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.APIKey = strings.TrimSpace(apiKey)
	cfg.Transcription.Model = model
	cfg.Transcription.AutoTranscribe = auto
	return nil
}

func editRecording(cfg *config.Config) error {
	directory := cfg.Recording.Directory
	format := cfg.Recording.Format
	timeout := ""
	if cfg.Recording.Timeout > 0 {
		timeout = cfg.Recording.Timeout.String()
	}
	device := cfg.Recording.Device

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recordings Directory").
				Description("Where WAV files are written").
				Placeholder(cfg.RecordingsDir()).
				Value(&directory),
			huh.NewSelect[string]().
				Title("Sample Format").
				Options(
					huh.NewOption("32-bit float (best quality)", "f32"),
					huh.NewOption("16-bit PCM (half the size)", "s16"),
				).
				Value(&format),
			huh.NewInput().
				Title("Input Device").
				Description("Name as listed by `vibeco doctor`").
				Placeholder("system default").
				Value(&device),
			huh.NewInput().
				Title("Maximum Recording Length").
				Description("e.g. 5m or 90s. Empty for unlimited").
				Placeholder("unlimited").
				Validate(validateDuration).
				Value(&timeout),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.Directory = strings.TrimSpace(directory)
	cfg.Recording.Format = format
	cfg.Recording.Device = strings.TrimSpace(device)
	cfg.Recording.Timeout, _ = parseDuration(timeout)
	return nil
}

func editOutput(cfg *config.Config) error {
	notifType := cfg.Notifications.Type
	if !cfg.Notifications.Enabled {
		notifType = "none"
	}
	clipboard := cfg.Output.CopyToClipboard
	historyOn := cfg.History.Enabled

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notifications").
				Description("How recording and transcription events are shown").
				Options(
					huh.NewOption("Desktop notifications", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
			huh.NewConfirm().
				Title("Copy transcripts to the clipboard?").
				Value(&clipboard),
			huh.NewConfirm().
				Title("Keep a local transcription history?").
				Value(&historyOn),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = notifType != "none"
	cfg.Notifications.Type = notifType
	cfg.Output.CopyToClipboard = clipboard
	cfg.History.Enabled = historyOn
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	clearScreen()
	fmt.Println(StyleBox.Render(renderSummary(cfg)))
	fmt.Println()

	confirmed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Back").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func modelOptions(p provider.Provider) []huh.Option[string] {
	var options []huh.Option[string]
	for _, m := range p.Models() {
		label := m.Name
		if m.Description != "" {
			label = fmt.Sprintf("%s - %s", m.Name, m.Description)
		}
		options = append(options, huh.NewOption(label, m.ID))
	}
	return options
}

func keyValidator(p provider.Provider) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return p.CheckAPIKey(s)
	}
}

func validateDuration(s string) error {
	_, err := parseDuration(s)
	return err
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %s", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}
