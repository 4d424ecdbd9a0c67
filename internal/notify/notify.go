package notify

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/gen2brain/beeep"

	"github.com/rahulvramesh/vibeco/internal/controller"
)

const appName = "Vibeco"

type Notifier interface {
	Notify(title, message string)
	Error(message string)
}

type Desktop struct{}

func (Desktop) Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (Desktop) Error(message string) {
	if err := beeep.Alert(appName, message, ""); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) Notify(title, message string) {
	log.Printf("Notify: %s: %s", title, message)
}

func (Log) Error(message string) {
	log.Printf("Notify: %s error: %s", appName, message)
}

// Nop is a Notifier that does absolutely nothing.
type Nop struct{}

func (Nop) Notify(title, message string) {}
func (Nop) Error(message string)         {}

// New returns the notifier for a notifications.type value.
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

// Message turns a controller event into notification text. Events that
// should not be shown return ok=false.
func Message(ev controller.Event) (title, message string, ok bool) {
	name := filepath.Base(ev.Path)
	switch ev.Type {
	case controller.RecordingStarted:
		return appName, "Recording started", true
	case controller.RecordingStopped:
		return appName, fmt.Sprintf("Recording saved: %s (%.1fs)", name, ev.Duration.Seconds()), true
	case controller.TranscriptionStarted:
		return appName, "Transcribing " + name, true
	case controller.TranscriptionCompleted:
		return appName + ": Transcription ready", preview(ev.Result.Text, 120), true
	default:
		return "", "", false
	}
}

// Forward delivers events to n until the channel closes or ctx ends.
// Failures are sent as errors.
func Forward(ctx context.Context, events <-chan controller.Event, n Notifier) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case controller.RecordingFailed:
				n.Error(fmt.Sprintf("Recording failed: %v", ev.Err))
			case controller.TranscriptionFailed:
				n.Error(fmt.Sprintf("Transcription failed: %v", ev.Err))
			default:
				if title, msg, ok := Message(ev); ok {
					n.Notify(title, msg)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func preview(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "…"
}
