package recording

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rahulvramesh/vibeco/internal/errs"
	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

const (
	FormatFloat32 = "f32"
	FormatInt16   = "s16"
)

type Config struct {
	SampleRate      int
	Channels        int
	Format          string
	FramesPerBuffer int
	RingBlocks      int
	Device          string
	DrainInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		Channels:        1,
		Format:          FormatFloat32,
		FramesPerBuffer: 256,
		RingBlocks:      128,
		Device:          "",
		DrainInterval:   5 * time.Millisecond,
	}
}

func (c Config) bytesPerSample() int {
	if c.Format == FormatInt16 {
		return 2
	}
	return 4
}

// BlockBytes is the size of one device buffer once encoded.
func (c Config) BlockBytes() int {
	return c.FramesPerBuffer * c.Channels * c.bytesPerSample()
}

// WavFormat is the container format matching what the device produces.
func (c Config) WavFormat() wavfile.Format {
	f := wavfile.Format{
		SampleRate:    c.SampleRate,
		Channels:      c.Channels,
		BitsPerSample: c.bytesPerSample() * 8,
		Encoding:      wavfile.Float,
	}
	if c.Format == FormatInt16 {
		f.Encoding = wavfile.PCM
	}
	return f
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("invalid FramesPerBuffer: %d", c.FramesPerBuffer)
	}
	if c.RingBlocks <= 0 {
		return fmt.Errorf("invalid RingBlocks: %d", c.RingBlocks)
	}
	if c.Format != FormatFloat32 && c.Format != FormatInt16 {
		return fmt.Errorf("invalid Format: %q", c.Format)
	}
	return nil
}

// Device is an audio input backend. onBlock passed to Open runs on the
// backend's real-time thread.
type Device interface {
	Initialize() error
	Terminate() error
	Open(config Config, onBlock func([]byte)) (Stream, error)
}

type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// FrameSink receives captured bytes off the real-time thread.
type FrameSink interface {
	Append(p []byte) (int, error)
}

type Recorder struct {
	config Config
	device Device

	initialized atomic.Bool
	recording   atomic.Bool

	mu        sync.Mutex // guards stream, stopDrain and startedAt
	stream    Stream
	stopDrain chan struct{}
	startedAt time.Time

	ring       atomic.Pointer[Ring]
	sinkFailed atomic.Bool
	captured   atomic.Int64
	dropped    atomic.Int64 // current session
	dropTotal  atomic.Int64 // since the recorder was created

	wg sync.WaitGroup
}

func NewRecorder(config Config, device Device) *Recorder {
	if config.DrainInterval <= 0 {
		config.DrainInterval = DefaultConfig().DrainInterval
	}
	return &Recorder{config: config, device: device}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig(), PortAudioDevice{}) }

func (r *Recorder) Config() Config { return r.config }

// Initialize prepares the audio backend. It only needs to succeed once per
// process.
func (r *Recorder) Initialize() error {
	if r.initialized.Load() {
		return nil
	}
	if err := r.device.Initialize(); err != nil {
		return errs.E(errs.Device, "initialize audio", err)
	}
	r.initialized.Store(true)
	return nil
}

func (r *Recorder) Terminate() error {
	if !r.initialized.Load() {
		return nil
	}
	_ = r.Stop()
	r.initialized.Store(false)
	if err := r.device.Terminate(); err != nil {
		return errs.E(errs.Device, "terminate audio", err)
	}
	return nil
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Start opens and starts an input stream, delivering audio to sink from a
// drain goroutine. The returned channel carries at most one sink failure and
// is closed once the drain goroutine exits.
func (r *Recorder) Start(sink FrameSink) (<-chan error, error) {
	if !r.initialized.Load() {
		return nil, errs.E(errs.Device, "start capture", fmt.Errorf("audio subsystem not initialized"))
	}
	if err := r.config.Validate(); err != nil {
		return nil, errs.E(errs.Config, "start capture", err)
	}
	if !r.recording.CompareAndSwap(false, true) {
		return nil, errs.E(errs.InvalidState, "start capture", fmt.Errorf("already recording"))
	}

	ring := NewRing(r.config.RingBlocks, r.config.BlockBytes())
	r.ring.Store(ring)
	r.sinkFailed.Store(false)
	r.captured.Store(0)
	r.dropped.Store(0)

	stream, err := r.device.Open(r.config, r.onBlock)
	if err != nil {
		r.recording.Store(false)
		return nil, errs.E(errs.Device, "open input stream", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		r.recording.Store(false)
		return nil, errs.E(errs.Device, "start input stream", err)
	}

	errCh := make(chan error, 1)
	stopDrain := make(chan struct{})

	r.mu.Lock()
	r.stream = stream
	r.stopDrain = stopDrain
	r.startedAt = time.Now()
	r.mu.Unlock()

	r.wg.Add(1)
	go r.drainLoop(ring, sink, stopDrain, errCh)

	log.Printf("Recording: started %d Hz, %d ch, %s", r.config.SampleRate, r.config.Channels, r.config.Format)
	return errCh, nil
}

// onBlock runs on the audio thread: no locks, no allocation, no I/O.
func (r *Recorder) onBlock(p []byte) {
	if r.sinkFailed.Load() {
		r.drop()
		return
	}
	ring := r.ring.Load()
	size := ring.BlockSize()
	for len(p) > 0 {
		n := len(p)
		if n > size {
			n = size
		}
		if !ring.Push(p[:n]) {
			r.drop()
			return
		}
		p = p[n:]
	}
}

func (r *Recorder) drop() {
	r.dropped.Add(1)
	r.dropTotal.Add(1)
}

// Stop halts the stream and waits until every queued block has reached the
// sink. Calling Stop when not recording does nothing.
func (r *Recorder) Stop() error {
	if !r.recording.CompareAndSwap(true, false) {
		return nil
	}

	r.mu.Lock()
	stream := r.stream
	stopDrain := r.stopDrain
	r.stream = nil
	r.stopDrain = nil
	r.mu.Unlock()

	var stopErr error
	if stream != nil {
		if err := stream.Stop(); err != nil {
			stopErr = errs.E(errs.Device, "stop input stream", err)
		}
		if err := stream.Close(); err != nil && stopErr == nil {
			stopErr = errs.E(errs.Device, "close input stream", err)
		}
	}
	if stopDrain != nil {
		close(stopDrain)
	}
	r.wg.Wait()

	if d := r.dropped.Load(); d > 0 {
		log.Printf("Recording: dropped %d blocks in total", d)
	}
	log.Printf("Recording: stopped after %d bytes", r.captured.Load())
	return stopErr
}

func (r *Recorder) drainLoop(ring *Ring, sink FrameSink, stop <-chan struct{}, errCh chan<- error) {
	defer func() {
		close(errCh)
		r.wg.Done()
	}()

	ticker := time.NewTicker(r.config.DrainInterval)
	defer ticker.Stop()

	var lastDropped int64
	lastDropLog := time.Now()

	for {
		if !r.drainAvailable(ring, sink, errCh) {
			return
		}

		select {
		case <-stop:
			// The stream is stopped, so nothing else will be pushed.
			r.drainAvailable(ring, sink, errCh)
			return
		case <-ticker.C:
		}

		if d := r.dropped.Load(); d != lastDropped && time.Since(lastDropLog) > time.Second {
			log.Printf("Recording: dropped %d blocks due to backpressure", d-lastDropped)
			lastDropped = d
			lastDropLog = time.Now()
		}
	}
}

// drainAvailable writes every queued block to sink. It reports false after a
// sink failure.
func (r *Recorder) drainAvailable(ring *Ring, sink FrameSink, errCh chan<- error) bool {
	for {
		block, ok := ring.Front()
		if !ok {
			return true
		}
		n, err := sink.Append(block)
		r.captured.Add(int64(n))
		ring.Release()
		if err != nil {
			r.sinkFailed.Store(true)
			r.emitErr(errCh, err)
			return false
		}
	}
}

func (r *Recorder) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
	log.Printf("Recording error: %v", err)
}

// Elapsed is the wall time since Start, or zero when idle.
func (r *Recorder) Elapsed() time.Duration {
	if !r.recording.Load() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startedAt.IsZero() {
		return 0
	}
	return time.Since(r.startedAt)
}

// BytesCaptured counts bytes accepted by the sink in the current or last session.
func (r *Recorder) BytesCaptured() int64 { return r.captured.Load() }

// Dropped counts blocks discarded in the current or last session.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// TotalDropped counts blocks discarded across all sessions. It never
// decreases.
func (r *Recorder) TotalDropped() int64 { return r.dropTotal.Load() }
