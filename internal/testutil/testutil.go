// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rahulvramesh/vibeco/internal/config"
	"github.com/rahulvramesh/vibeco/internal/recording"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

// ValidAPIKey passes the Groq key shape check.
const ValidAPIKey = "gsk_0123456789abcdefghij"

// TestConfig returns a valid config that writes only below t's temp dirs
// and has every desktop integration switched off.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Recording.Directory = filepath.Join(t.TempDir(), "recordings")
	cfg.Transcription.APIKey = ValidAPIKey
	cfg.Notifications.Enabled = false
	cfg.Notifications.Type = "none"
	cfg.Output.CopyToClipboard = false
	cfg.History.Enabled = false
	cfg.Logging.File = "-"
	return cfg
}

// WriteWav writes a finalized recording holding dataBytes of silence.
func WriteWav(t *testing.T, format wavfile.Format, dataBytes int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	w, err := wavfile.Open(path, format)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	if _, err := w.Append(make([]byte, dataBytes)); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("finalize fixture: %v", err)
	}
	return path
}

// WaitForCondition polls condition until it holds or timeout passes.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// FakeRecorder writes Bytes of silence into the sink on Start.
type FakeRecorder struct {
	Bytes int

	mu      sync.Mutex
	errCh   chan error
	started int
	stopped int
}

func NewFakeRecorder(bytes int) *FakeRecorder {
	return &FakeRecorder{Bytes: bytes}
}

func (f *FakeRecorder) Initialize() error   { return nil }
func (f *FakeRecorder) Terminate() error    { return nil }
func (f *FakeRecorder) TotalDropped() int64 { return 0 }

func (f *FakeRecorder) Start(sink recording.FrameSink) (<-chan error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	f.errCh = make(chan error, 1)
	if f.Bytes > 0 {
		if _, err := sink.Append(make([]byte, f.Bytes)); err != nil {
			return nil, err
		}
	}
	return f.errCh, nil
}

func (f *FakeRecorder) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errCh != nil {
		f.stopped++
		close(f.errCh)
		f.errCh = nil
	}
	return nil
}

// Fail reports a capture error on the running session.
func (f *FakeRecorder) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errCh != nil {
		f.errCh <- err
	}
}

func (f *FakeRecorder) Counts() (started, stopped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stopped
}

// FakeSubmitter answers every submission with Text, or Err when set.
type FakeSubmitter struct {
	Text string
	Err  error

	mu       sync.Mutex
	requests []transcriber.Request
}

func NewFakeSubmitter(text string) *FakeSubmitter {
	return &FakeSubmitter{Text: text}
}

func (f *FakeSubmitter) Submit(ctx context.Context, req transcriber.Request, progress transcriber.ProgressFunc) (transcriber.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if progress != nil {
		progress(100, 100)
	}
	if f.Err != nil {
		return transcriber.Result{}, f.Err
	}
	return transcriber.Result{
		Text:     f.Text,
		Duration: req.FallbackDuration.Seconds(),
		Model:    req.Model,
		Path:     req.FilePath,
	}, nil
}

func (f *FakeSubmitter) Requests() []transcriber.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transcriber.Request(nil), f.requests...)
}
