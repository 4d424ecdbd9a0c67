// Package wavfile writes WAV files whose length is unknown until recording ends.
//
// The header is written with zero sizes when the file is created; Finalize
// patches the RIFF and data sizes in place once all audio has been appended.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/rahulvramesh/vibeco/internal/errs"
)

// maxDataSize keeps the RIFF size field within 32 bits.
const maxDataSize = math.MaxUint32 - riffOverhead

// Writer appends raw sample bytes to a WAV file. Append and Finalize must be
// called from a single goroutine; BytesWritten is safe from any goroutine.
type Writer struct {
	f      *os.File
	path   string
	format Format

	written atomic.Int64
	err     error
	closed  bool
}

// Open creates path and writes a header whose size fields are both zero.
func Open(path string, format Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, errs.E(errs.Config, "open wav", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errs.E(errs.IO, "create wav", err)
	}

	if _, err := f.Write(encodeHeader(format, 0, 0)); err != nil {
		f.Close()
		return nil, errs.E(errs.IO, "write wav header", err)
	}

	return &Writer{f: f, path: path, format: format}, nil
}

// Append writes p after the previously appended data. After the first
// failure every call returns that failure.
func (w *Writer) Append(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, errs.E(errs.IO, "append", os.ErrClosed)
	}
	if w.written.Load()+int64(len(p)) > maxDataSize {
		w.err = errs.E(errs.IO, "append", fmt.Errorf("data chunk would exceed %d bytes", int64(maxDataSize)))
		return 0, w.err
	}

	n, err := w.f.Write(p)
	w.written.Add(int64(n))
	if err != nil {
		w.err = errs.E(errs.IO, "append", err)
		return n, w.err
	}
	return n, nil
}

// Finalize patches both size fields and closes the file. Calling it again is
// a no-op. The sizes reflect every byte that reached the file, including
// after an Append failure, so a partial recording stays readable.
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	dataSize := uint32(w.written.Load())
	var field [4]byte

	binary.LittleEndian.PutUint32(field[:], dataSize+riffOverhead)
	if _, err := w.f.WriteAt(field[:], riffSizeOffset); err != nil {
		w.f.Close()
		return errs.E(errs.IO, "patch riff size", err)
	}

	binary.LittleEndian.PutUint32(field[:], dataSize)
	if _, err := w.f.WriteAt(field[:], dataSizeOffset); err != nil {
		w.f.Close()
		return errs.E(errs.IO, "patch data size", err)
	}

	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return errs.E(errs.IO, "sync wav", err)
	}
	if err := w.f.Close(); err != nil {
		return errs.E(errs.IO, "close wav", err)
	}
	return nil
}

func (w *Writer) BytesWritten() int64 { return w.written.Load() }

func (w *Writer) Path() string { return w.path }

func (w *Writer) Format() Format { return w.format }

// Duration is the audio length represented by the bytes written so far.
func (w *Writer) Duration() time.Duration {
	return DurationOf(w.format, w.written.Load())
}

// DurationOf converts a byte count of the given format into playback time.
func DurationOf(f Format, bytes int64) time.Duration {
	rate := f.ByteRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(bytes) / float64(rate) * float64(time.Second))
}

// FileDuration reads the audio length from the header of the WAV file at
// path. It returns zero when the file cannot be read or parsed.
func FileDuration(path string) time.Duration {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	h, err := ParseHeader(f)
	if err != nil {
		return 0
	}
	return DurationOf(h.Format, int64(h.DataSize))
}
