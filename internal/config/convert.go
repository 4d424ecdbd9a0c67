package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rahulvramesh/vibeco/internal/controller"
	"github.com/rahulvramesh/vibeco/internal/provider"
	"github.com/rahulvramesh/vibeco/internal/recording"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
)

func (c *Config) ToRecordingConfig() recording.Config {
	config := recording.DefaultConfig()
	config.SampleRate = c.Recording.SampleRate
	config.Channels = c.Recording.Channels
	config.Format = c.Recording.Format
	config.FramesPerBuffer = c.Recording.FramesPerBuffer
	config.RingBlocks = c.Recording.RingBlocks
	config.Device = c.Recording.Device
	return config
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider: c.Transcription.Provider,
		Endpoint: c.Transcription.Endpoint,
		Timeout:  c.Transcription.Timeout,
	}
}

func (c *Config) ToControllerConfig() controller.Config {
	return controller.Config{
		Directory:      c.RecordingsDir(),
		Format:         c.ToRecordingConfig().WavFormat(),
		Model:          c.Transcription.Model,
		APIKey:         c.ResolveAPIKey(),
		AutoTranscribe: c.Transcription.AutoTranscribe,
		MaxDuration:    c.Recording.Timeout,
	}
}

// ResolveAPIKey returns the configured key, falling back to the provider's
// environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.Transcription.APIKey != "" {
		return c.Transcription.APIKey
	}
	if env := provider.EnvVarForProvider(c.Transcription.Provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}

// RecordingsDir resolves recording.directory, expanding a leading "~/".
func (c *Config) RecordingsDir() string {
	dir := c.Recording.Directory
	home, _ := os.UserHomeDir()
	if dir == "" {
		return filepath.Join(home, "Documents", "Vibeco", "Recordings")
	}
	return expandHome(dir, home)
}

// HistoryPath resolves history.path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		home, _ := os.UserHomeDir()
		return expandHome(c.History.Path, home)
	}
	return filepath.Join(cacheDir(), "history.db")
}

// LogPath resolves logging.file; "" is returned for stderr-only logging.
func (c *Config) LogPath() string {
	switch c.Logging.File {
	case "-":
		return ""
	case "":
		return filepath.Join(cacheDir(), "vibeco.log")
	default:
		home, _ := os.UserHomeDir()
		return expandHome(c.Logging.File, home)
	}
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "vibeco")
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
