package injection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rahulvramesh/vibeco/internal/controller"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
)

func newTestInjector(timeout time.Duration, write func(string) error) *injector {
	return &injector{config: Config{ClipboardTimeout: timeout}, write: write}
}

func TestInjector_Inject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		writeFn func(string) error
		wantErr string
		want    string
	}{
		{name: "copies trimmed text", text: "  hello world\n", want: "hello world"},
		{name: "empty text", text: "   ", wantErr: "empty text"},
		{name: "backend failure", text: "hi", writeFn: func(string) error { return errors.New("xclip died") }, wantErr: "xclip died"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			write := tt.writeFn
			if write == nil {
				write = func(s string) error { got = s; return nil }
			}
			inj := newTestInjector(time.Second, write)

			err := inj.Inject(context.Background(), tt.text)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Inject() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Inject() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("clipboard = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjector_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	inj := newTestInjector(20*time.Millisecond, func(string) error {
		<-release
		return nil
	})

	err := inj.Inject(context.Background(), "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Inject() error = %v, want deadline exceeded", err)
	}
}

type captureInjector struct {
	mu    sync.Mutex
	texts []string
}

func (c *captureInjector) Inject(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func TestDeliver(t *testing.T) {
	events := make(chan controller.Event, 4)
	events <- controller.Event{Type: controller.RecordingStopped}
	events <- controller.Event{Type: controller.TranscriptionCompleted, Result: transcriber.Result{Text: "first"}}
	events <- controller.Event{Type: controller.TranscriptionCompleted, Result: transcriber.Result{}}
	events <- controller.Event{Type: controller.TranscriptionCompleted, Result: transcriber.Result{Text: "second"}}
	close(events)

	c := &captureInjector{}
	Deliver(context.Background(), events, c)

	if len(c.texts) != 2 || c.texts[0] != "first" || c.texts[1] != "second" {
		t.Errorf("injected = %v", c.texts)
	}
}
