// Package controller owns the recording lifecycle: it starts and stops
// capture into a WAV file and optionally hands the finished file to the
// transcription client.
//
// All controller state lives on the goroutine running Run. Public methods
// send a closure to that goroutine and wait for its answer, so none of the
// state needs a lock.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rahulvramesh/vibeco/internal/errs"
	"github.com/rahulvramesh/vibeco/internal/provider"
	"github.com/rahulvramesh/vibeco/internal/recording"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

type State string

const (
	Idle       State = "idle"
	Recording  State = "recording"
	Finalizing State = "finalizing"
)

// ErrClosed is returned by calls made after Run has returned.
var ErrClosed = errors.New("controller is not running")

// Recorder is the capture side the controller drives.
type Recorder interface {
	Start(sink recording.FrameSink) (<-chan error, error)
	Stop() error
}

// Submitter uploads a finished recording.
type Submitter interface {
	Submit(ctx context.Context, req transcriber.Request, progress transcriber.ProgressFunc) (transcriber.Result, error)
}

type Config struct {
	Directory      string
	Format         wavfile.Format
	Model          string
	APIKey         string
	AutoTranscribe bool
	// MaxDuration stops a recording automatically; zero disables it.
	MaxDuration time.Duration
	// EventBuffer is the channel capacity given to each subscriber.
	EventBuffer int
}

// Status is a snapshot taken on the controller goroutine.
type Status struct {
	State          State
	AutoTranscribe bool
	Model          string
	Transcribing   bool
	Path           string
	Elapsed        time.Duration
	BytesWritten   int64
}

type completion struct {
	session string
	path    string
	result  transcriber.Result
	err     error
}

type Controller struct {
	recorder Recorder
	client   Submitter
	provider provider.Provider
	now      func() time.Time

	requests    chan func()
	completions chan completion
	done        chan struct{}
	running     atomic.Bool
	state       atomic.Value // State, readable without a round trip

	subsMu      sync.Mutex
	subs        []chan Event
	closed      bool
	eventBuffer int

	// Owned by the Run goroutine.
	ctx        context.Context
	config     Config
	session    *Session
	captureErr <-chan error
	maxTimer   *time.Timer
	inflight   bool
}

func New(config Config, recorder Recorder, client Submitter) *Controller {
	if config.Format == (wavfile.Format{}) {
		config.Format = wavfile.DefaultFormat()
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 64
	}
	p := provider.Default()
	if config.Model == "" {
		config.Model = p.DefaultModel()
	}

	c := &Controller{
		recorder:    recorder,
		client:      client,
		provider:    p,
		now:         time.Now,
		requests:    make(chan func()),
		completions: make(chan completion),
		done:        make(chan struct{}),
		eventBuffer: config.EventBuffer,
		config:      config,
	}
	c.state.Store(Idle)
	return c
}

// State can be read from any goroutine and may lag the loop slightly.
func (c *Controller) State() State {
	return c.state.Load().(State)
}

func (c *Controller) setState(s State) {
	c.state.Store(s)
}

// Subscribe returns a channel receiving every event published after the
// call. The channel is closed when Run returns.
func (c *Controller) Subscribe() <-chan Event {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	ch := make(chan Event, c.eventBuffer)
	if c.closed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Run processes requests until ctx is cancelled. An active recording is
// finalized before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errs.E(errs.InvalidState, "run controller", fmt.Errorf("already running"))
	}
	c.ctx = ctx
	defer c.shutdown()

	log.Printf("Controller: running (model=%s, auto_transcribe=%v, dir=%s)", c.config.Model, c.config.AutoTranscribe, c.config.Directory)

	for {
		var timeout <-chan time.Time
		if c.maxTimer != nil {
			timeout = c.maxTimer.C
		}

		select {
		case fn := <-c.requests:
			fn()

		case err, ok := <-c.captureErr:
			if !ok {
				c.captureErr = nil
				continue
			}
			c.abort(err)

		case <-timeout:
			c.maxTimer = nil
			log.Printf("Controller: maximum recording duration %v reached, stopping", c.config.MaxDuration)
			if err := c.stop(); err != nil {
				log.Printf("Controller: stop after timeout failed: %v", err)
			}

		case done := <-c.completions:
			c.finishTranscription(done)

		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Controller) shutdown() {
	if c.session != nil {
		log.Printf("Controller: shutting down, finalizing %s", c.session.Path)
		s, duration, err := c.closeSession()
		if err != nil {
			log.Printf("Controller: finalize on shutdown failed: %v", err)
		} else {
			c.emit(Event{Type: RecordingStopped, SessionID: s.ID, Path: s.Path, Duration: duration})
		}
	}
	close(c.done)

	c.subsMu.Lock()
	c.closed = true
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.subsMu.Unlock()
}

// call runs fn on the controller goroutine and returns its error.
func (c *Controller) call(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case c.requests <- func() { reply <- fn() }:
	case <-c.done:
		return ErrClosed
	}
	return <-reply
}

// RequestStart begins a new recording session.
func (c *Controller) RequestStart() error {
	return c.call(c.start)
}

// RequestStop ends the current session. It is a no-op when idle.
func (c *Controller) RequestStop() error {
	return c.call(c.stop)
}

// Toggle starts when idle and stops when recording.
func (c *Controller) Toggle() (State, error) {
	var next State
	err := c.call(func() error {
		if c.session != nil {
			next = Idle
			return c.stop()
		}
		next = Recording
		return c.start()
	})
	return next, err
}

func (c *Controller) SetAutoTranscribe(on bool) error {
	return c.call(func() error {
		c.config.AutoTranscribe = on
		log.Printf("Controller: auto transcribe set to %v", on)
		return nil
	})
}

// SetModel selects the model for subsequent transcriptions.
func (c *Controller) SetModel(model string) error {
	if err := provider.CheckModel(c.provider, model); err != nil {
		return errs.E(errs.Config, "set model", err)
	}
	return c.call(func() error {
		c.config.Model = model
		log.Printf("Controller: model set to %s", model)
		return nil
	})
}

// SetAPIKey replaces the credential used for subsequent transcriptions. It
// is checked when a transcription is submitted.
func (c *Controller) SetAPIKey(key string) error {
	return c.call(func() error {
		c.config.APIKey = key
		return nil
	})
}

// Transcribe submits an existing audio file. It returns once the upload has
// been scheduled; the outcome is published as an event.
func (c *Controller) Transcribe(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errs.E(errs.IO, "transcribe", err)
	}
	fallback := wavfile.FileDuration(path)
	return c.call(func() error {
		return c.submit("", path, fallback)
	})
}

func (c *Controller) Status() (Status, error) {
	var st Status
	err := c.call(func() error {
		st = Status{
			State:          c.State(),
			AutoTranscribe: c.config.AutoTranscribe,
			Model:          c.config.Model,
			Transcribing:   c.inflight,
		}
		if s := c.session; s != nil {
			st.Path = s.Path
			st.Elapsed = c.now().Sub(s.StartedAt)
			st.BytesWritten = s.BytesWritten()
		}
		return nil
	})
	return st, err
}

func (c *Controller) start() error {
	if c.session != nil {
		return errs.E(errs.InvalidState, "start", fmt.Errorf("already %s", c.State()))
	}

	err := c.openSession()
	if err != nil {
		log.Printf("Controller: failed to start recording: %v", err)
		c.emit(Event{Type: RecordingFailed, Err: err})
		return err
	}

	s := c.session
	log.Printf("Controller: recording to %s", s.Path)
	c.emit(Event{Type: RecordingStarted, SessionID: s.ID, Path: s.Path})
	return nil
}

func (c *Controller) openSession() error {
	if err := os.MkdirAll(c.config.Directory, 0o755); err != nil {
		return errs.E(errs.IO, "create recordings directory", err)
	}

	startedAt := c.now()
	path, err := recordingPath(c.config.Directory, startedAt)
	if err != nil {
		return errs.E(errs.IO, "choose recording path", err)
	}

	w, err := wavfile.Open(path, c.config.Format)
	if err != nil {
		return err
	}

	errCh, err := c.recorder.Start(w)
	if err != nil {
		// Leave a valid empty file behind rather than a bare header.
		if ferr := w.Finalize(); ferr != nil {
			log.Printf("Controller: finalize after failed start: %v", ferr)
		}
		return err
	}

	c.session = &Session{
		ID:        uuid.NewString(),
		Path:      path,
		Format:    c.config.Format,
		StartedAt: startedAt,
		writer:    w,
	}
	c.captureErr = errCh
	if c.config.MaxDuration > 0 {
		c.maxTimer = time.NewTimer(c.config.MaxDuration)
	}
	c.setState(Recording)
	return nil
}

// closeSession stops capture and finalizes the file. The session is cleared
// even when finalizing fails.
func (c *Controller) closeSession() (*Session, time.Duration, error) {
	s := c.session
	c.setState(Finalizing)

	if c.maxTimer != nil {
		c.maxTimer.Stop()
		c.maxTimer = nil
	}

	if err := c.recorder.Stop(); err != nil {
		log.Printf("Controller: recorder stop: %v", err)
	}
	finErr := s.writer.Finalize()
	duration := s.writer.Duration()

	c.session = nil
	c.captureErr = nil
	c.setState(Idle)
	return s, duration, finErr
}

func (c *Controller) stop() error {
	if c.session == nil {
		return nil
	}

	s, duration, err := c.closeSession()
	if err != nil {
		log.Printf("Controller: failed to finalize %s: %v", s.Path, err)
		c.emit(Event{Type: RecordingFailed, SessionID: s.ID, Path: s.Path, Err: err})
		return err
	}

	log.Printf("Controller: recording saved to %s (%v)", s.Path, duration.Round(time.Millisecond))
	c.emit(Event{Type: RecordingStopped, SessionID: s.ID, Path: s.Path, Duration: duration})

	if c.config.AutoTranscribe {
		if err := c.submit(s.ID, s.Path, duration); err != nil {
			c.emit(Event{Type: TranscriptionFailed, SessionID: s.ID, Path: s.Path, Err: err})
		}
	}
	return nil
}

// abort ends a session after a capture failure. The partial file is kept.
func (c *Controller) abort(cause error) {
	if c.session == nil {
		return
	}
	s, _, err := c.closeSession()
	if err != nil {
		log.Printf("Controller: finalize after capture failure: %v", err)
	}
	log.Printf("Controller: recording aborted, partial file kept at %s: %v", s.Path, cause)
	c.emit(Event{Type: RecordingFailed, SessionID: s.ID, Path: s.Path, Err: cause})
}

func (c *Controller) submit(sessionID, path string, fallback time.Duration) error {
	if c.inflight {
		return errs.E(errs.InvalidState, "transcribe", fmt.Errorf("a transcription is already in progress"))
	}
	c.inflight = true

	req := transcriber.Request{
		FilePath:         path,
		Model:            c.config.Model,
		APIKey:           c.config.APIKey,
		FallbackDuration: fallback,
	}
	c.emit(Event{Type: TranscriptionStarted, SessionID: sessionID, Path: path})

	ctx := c.ctx
	go func() {
		result, err := c.client.Submit(ctx, req, func(sent, total int64) {
			c.emit(Event{Type: UploadProgress, SessionID: sessionID, Path: path, Sent: sent, Total: total})
		})
		select {
		case c.completions <- completion{session: sessionID, path: path, result: result, err: err}:
		case <-c.done:
		}
	}()
	return nil
}

func (c *Controller) finishTranscription(done completion) {
	c.inflight = false
	if done.err != nil {
		log.Printf("Controller: transcription of %s failed: %v", done.path, done.err)
		c.emit(Event{Type: TranscriptionFailed, SessionID: done.session, Path: done.path, Err: done.err})
		return
	}
	c.emit(Event{Type: TranscriptionCompleted, SessionID: done.session, Path: done.path, Result: done.result})
}

// emit publishes ev. Lossy events are dropped for full subscribers; others
// wait for room until the controller shuts down.
func (c *Controller) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = c.now()
	}

	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		if ev.lossy() {
			continue
		}
		select {
		case ch <- ev:
		case <-c.ctx.Done():
		}
	}
}
