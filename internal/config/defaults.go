package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate:      44100,
			Channels:        1,
			Format:          "f32",
			FramesPerBuffer: 256,
			RingBlocks:      128,
			Device:          "",
			Directory:       "",
			Timeout:         10 * time.Minute,
		},
		Transcription: TranscriptionConfig{
			Provider:       "groq",
			Model:          "whisper-large-v3-turbo",
			AutoTranscribe: true,
			Timeout:        2 * time.Minute,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Output: OutputConfig{
			CopyToClipboard: false,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    500,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

const defaultConfigTemplate = `# Vibeco Configuration
# This file is automatically generated with defaults.
# Edit values as needed - model, auto_transcribe and api_key changes are
# applied without restarting the daemon.

# Audio Recording Configuration
[recording]
  sample_rate = 44100          # Sample rate in Hz
  channels = 1                 # 1 = mono, 2 = stereo
  format = "f32"               # "f32" (32-bit float) or "s16" (16-bit PCM)
  frames_per_buffer = 256      # Frames per device callback
  ring_blocks = 128            # Callback buffers queued before audio is dropped
  device = ""                  # Input device name (empty = system default, see "vibeco doctor")
  directory = ""               # Where recordings go (empty = ~/Documents/Vibeco/Recordings)
  timeout = "10m"              # Maximum recording length ("0s" = unlimited)

# Speech Transcription Configuration
[transcription]
  provider = "groq"
  api_key = ""                 # Groq API key (or set GROQ_API_KEY)
  model = "whisper-large-v3-turbo"
  auto_transcribe = true       # Upload every finished recording
  endpoint = ""                # Override the transcription URL (empty = provider default)
  timeout = "2m"               # Upload + processing timeout

# Desktop Notification Configuration
[notifications]
  enabled = true
  type = "desktop"             # "desktop", "log", "none"

[output]
  copy_to_clipboard = false    # Copy each transcript to the clipboard

[history]
  enabled = true               # Keep recordings and transcripts in a local database
  path = ""                    # Empty = <cache dir>/vibeco/history.db
  keep = 500                   # Rows kept after pruning (0 = keep all)

[metrics]
  bind = ""                    # Serve Prometheus metrics, e.g. "127.0.0.1:9464"

[logging]
  file = ""                    # Empty = <cache dir>/vibeco/vibeco.log, "-" = stderr only
  max_size_mb = 10
  max_backups = 3
  max_age_days = 28
  compress = false
`
