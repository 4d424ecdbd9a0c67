// Package injection hands finished transcripts to the user's desktop.
package injection

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rahulvramesh/vibeco/internal/controller"
)

// Injector delivers transcript text somewhere the user can paste it from.
type Injector interface {
	Inject(ctx context.Context, text string) error
}

type Config struct {
	ClipboardTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ClipboardTimeout: 3 * time.Second,
	}
}

type injector struct {
	config Config
	write  func(string) error
}

func NewInjector(config Config) Injector {
	return &injector{config: config, write: writeClipboard}
}

func NewDefaultInjector() Injector {
	return NewInjector(DefaultConfig())
}

func (i *injector) Inject(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("cannot inject empty text")
	}

	if i.config.ClipboardTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.config.ClipboardTimeout)
		defer cancel()
	}

	// The clipboard backends shell out and cannot be cancelled, so the
	// write runs on its own goroutine.
	done := make(chan error, 1)
	go func() { done <- i.write(text) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to copy text to clipboard: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("clipboard write: %w", ctx.Err())
	}
}

// Deliver injects the text of every completed transcription until events
// closes or ctx ends.
func Deliver(ctx context.Context, events <-chan controller.Event, inj Injector) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != controller.TranscriptionCompleted || ev.Result.Text == "" {
				continue
			}
			if err := inj.Inject(ctx, ev.Result.Text); err != nil {
				log.Printf("Injection: %v", err)
				continue
			}
			log.Printf("Injection: copied %d chars to clipboard", len(ev.Result.Text))
		case <-ctx.Done():
			return
		}
	}
}
