package tui

import (
	"fmt"
	"strings"

	"github.com/rahulvramesh/vibeco/internal/config"
)

func formatTranscriptionLabel(cfg *config.Config) string {
	auto := "manual"
	if cfg.Transcription.AutoTranscribe {
		auto = "auto"
	}
	key := "no key"
	if cfg.ResolveAPIKey() != "" {
		key = "key set"
	}
	return fmt.Sprintf("Transcription (%s, %s, %s)", cfg.Transcription.Model, auto, key)
}

func formatRecordingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recording (%d Hz, %s)", cfg.Recording.SampleRate, cfg.Recording.Format)
}

func formatOutputLabel(cfg *config.Config) string {
	var parts []string
	if cfg.Notifications.Enabled && cfg.Notifications.Type != "none" {
		parts = append(parts, cfg.Notifications.Type+" notifications")
	}
	if cfg.Output.CopyToClipboard {
		parts = append(parts, "clipboard")
	}
	if cfg.History.Enabled {
		parts = append(parts, "history")
	}
	if len(parts) == 0 {
		return "Output (silent)"
	}
	return fmt.Sprintf("Output (%s)", strings.Join(parts, ", "))
}

// maskKey keeps the prefix and the last four characters.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func renderSummary(cfg *config.Config) string {
	key := "from $GROQ_API_KEY"
	if cfg.Transcription.APIKey != "" {
		key = maskKey(cfg.Transcription.APIKey)
	} else if cfg.ResolveAPIKey() == "" {
		key = StyleWarning.Render("not set")
	}
	maxLen := "unlimited"
	if cfg.Recording.Timeout > 0 {
		maxLen = cfg.Recording.Timeout.String()
	}

	rows := [][2]string{
		{"Model", cfg.Transcription.Model},
		{"API key", key},
		{"Auto transcribe", fmt.Sprintf("%v", cfg.Transcription.AutoTranscribe)},
		{"Recordings", cfg.RecordingsDir()},
		{"Format", fmt.Sprintf("%d Hz, %d ch, %s", cfg.Recording.SampleRate, cfg.Recording.Channels, cfg.Recording.Format)},
		{"Max length", maxLen},
		{"Output", strings.TrimSuffix(strings.TrimPrefix(formatOutputLabel(cfg), "Output ("), ")")},
	}

	var b strings.Builder
	b.WriteString(StyleHeader.Render("Summary"))
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", StyleLabel.Render(fmt.Sprintf("%-16s", row[0])), row[1])
	}
	return strings.TrimRight(b.String(), "\n")
}
