package notify

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rahulvramesh/vibeco/internal/controller"
	"github.com/rahulvramesh/vibeco/internal/errs"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
)

type recorded struct {
	mu     sync.Mutex
	notes  []string
	errors []string
}

func (r *recorded) Notify(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, title+": "+message)
}

func (r *recorded) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		want Notifier
	}{
		{"desktop", Desktop{}},
		{"log", Log{}},
		{"none", Nop{}},
		{"", Nop{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := New(tt.kind); got != tt.want {
				t.Errorf("New(%q) = %T, want %T", tt.kind, got, tt.want)
			}
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Log{}.Notify("Vibeco", "Recording started")
	if !strings.Contains(buf.String(), "Vibeco: Recording started") {
		t.Errorf("log output = %q", buf.String())
	}

	buf.Reset()
	Log{}.Error("no microphone")
	if !strings.Contains(buf.String(), "no microphone") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestNopNotifier(t *testing.T) {
	n := Nop{}
	n.Notify("title", "message")
	n.Error("error")
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name   string
		ev     controller.Event
		want   string
		wantOK bool
	}{
		{"started", controller.Event{Type: controller.RecordingStarted}, "Recording started", true},
		{
			"stopped",
			controller.Event{Type: controller.RecordingStopped, Path: "/tmp/a/2024-05-01_10-00-00.wav", Duration: 1500 * time.Millisecond},
			"Recording saved: 2024-05-01_10-00-00.wav (1.5s)",
			true,
		},
		{
			"completed",
			controller.Event{Type: controller.TranscriptionCompleted, Result: transcriber.Result{Text: "hello world"}},
			"hello world",
			true,
		},
		{"progress is silent", controller.Event{Type: controller.UploadProgress, Sent: 1, Total: 2}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msg, ok := Message(tt.ev)
			if ok != tt.wantOK || msg != tt.want {
				t.Errorf("Message() = %q, %v; want %q, %v", msg, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("é", 130)
	got := preview(long, 120)
	if len([]rune(got)) != 121 || !strings.HasSuffix(got, "…") {
		t.Errorf("preview() = %q", got)
	}
	if preview("short", 120) != "short" {
		t.Error("short text should be unchanged")
	}
}

func TestForward(t *testing.T) {
	events := make(chan controller.Event, 4)
	events <- controller.Event{Type: controller.RecordingStarted}
	events <- controller.Event{Type: controller.UploadProgress}
	events <- controller.Event{Type: controller.TranscriptionFailed, Err: errs.E(errs.Network, "upload", errors.New("timeout"))}
	close(events)

	r := &recorded{}
	Forward(context.Background(), events, r)

	if len(r.notes) != 1 || r.notes[0] != "Vibeco: Recording started" {
		t.Errorf("notes = %v", r.notes)
	}
	if len(r.errors) != 1 || !strings.Contains(r.errors[0], "NetworkError") {
		t.Errorf("errors = %v", r.errors)
	}
}

func TestForwardStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Forward(ctx, make(chan controller.Event), Nop{})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Forward did not return after cancel")
	}
}
