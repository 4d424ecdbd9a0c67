package controller

import (
	"time"

	"github.com/rahulvramesh/vibeco/internal/transcriber"
)

type EventType string

const (
	RecordingStarted       EventType = "recording_started"
	RecordingStopped       EventType = "recording_stopped"
	RecordingFailed        EventType = "recording_failed"
	TranscriptionStarted   EventType = "transcription_started"
	UploadProgress         EventType = "upload_progress"
	TranscriptionCompleted EventType = "transcription_completed"
	TranscriptionFailed    EventType = "transcription_failed"
)

// Event is published to subscribers. Only the fields relevant to Type are set.
type Event struct {
	Type      EventType
	Time      time.Time
	SessionID string
	Path      string

	// RecordingStopped
	Duration time.Duration

	// UploadProgress
	Sent  int64
	Total int64

	// TranscriptionCompleted
	Result transcriber.Result

	// RecordingFailed, TranscriptionFailed
	Err error
}

// lossy events may be dropped when a subscriber falls behind.
func (e Event) lossy() bool {
	return e.Type == UploadProgress
}
