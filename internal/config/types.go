package config

import "time"

type Config struct {
	Recording     RecordingConfig     `toml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Notifications NotificationsConfig `toml:"notifications"`
	Output        OutputConfig        `toml:"output"`
	History       HistoryConfig       `toml:"history"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Logging       LoggingConfig       `toml:"logging"`
}

type RecordingConfig struct {
	SampleRate      int           `toml:"sample_rate"`
	Channels        int           `toml:"channels"`
	Format          string        `toml:"format"` // "f32" or "s16"
	FramesPerBuffer int           `toml:"frames_per_buffer"`
	RingBlocks      int           `toml:"ring_blocks"`
	Device          string        `toml:"device"`
	Directory       string        `toml:"directory"` // empty = ~/Documents/Vibeco/Recordings
	Timeout         time.Duration `toml:"timeout"`   // maximum recording length, 0 = unlimited
}

type TranscriptionConfig struct {
	Provider       string        `toml:"provider"`
	APIKey         string        `toml:"api_key"`
	Model          string        `toml:"model"`
	AutoTranscribe bool          `toml:"auto_transcribe"`
	Endpoint       string        `toml:"endpoint"` // empty = provider default
	Timeout        time.Duration `toml:"timeout"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type OutputConfig struct {
	CopyToClipboard bool `toml:"copy_to_clipboard"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty = <cache dir>/vibeco/history.db
	Keep    int    `toml:"keep"` // rows kept after pruning, 0 = keep all
}

type MetricsConfig struct {
	Bind string `toml:"bind"` // e.g. "127.0.0.1:9464", empty = disabled
}

type LoggingConfig struct {
	File       string `toml:"file"` // empty = <cache dir>/vibeco/vibeco.log, "-" = stderr only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}
