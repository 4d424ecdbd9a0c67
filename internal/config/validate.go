package config

import (
	"fmt"

	"github.com/rahulvramesh/vibeco/internal/provider"
)

func (c *Config) Validate() error {
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 || c.Recording.Channels > 8 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.Format != "f32" && c.Recording.Format != "s16" {
		return fmt.Errorf("invalid recording.format: %q (must be f32 or s16)", c.Recording.Format)
	}
	if c.Recording.FramesPerBuffer <= 0 {
		return fmt.Errorf("invalid recording.frames_per_buffer: %d", c.Recording.FramesPerBuffer)
	}
	if c.Recording.RingBlocks <= 0 {
		return fmt.Errorf("invalid recording.ring_blocks: %d", c.Recording.RingBlocks)
	}
	if c.Recording.Timeout < 0 {
		return fmt.Errorf("invalid recording.timeout: %v", c.Recording.Timeout)
	}

	p := provider.GetProvider(c.Transcription.Provider)
	if p == nil {
		return fmt.Errorf("invalid transcription.provider: %q (available: %v)", c.Transcription.Provider, provider.ListProviders())
	}
	if err := provider.CheckModel(p, c.Transcription.Model); err != nil {
		return fmt.Errorf("invalid transcription.model: %w", err)
	}
	if c.Transcription.APIKey != "" {
		if err := p.CheckAPIKey(c.Transcription.APIKey); err != nil {
			return fmt.Errorf("invalid transcription.api_key: %w", err)
		}
	}
	if c.Transcription.Timeout <= 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", c.Transcription.Timeout)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	if c.History.Keep < 0 {
		return fmt.Errorf("invalid history.keep: %d", c.History.Keep)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("invalid logging limits: size=%d backups=%d age=%d",
			c.Logging.MaxSizeMB, c.Logging.MaxBackups, c.Logging.MaxAgeDays)
	}

	return nil
}
