package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

const fileTimeLayout = "2006-01-02_15-04-05"

// Session is the recording in progress.
type Session struct {
	ID        string
	Path      string
	Format    wavfile.Format
	StartedAt time.Time

	writer *wavfile.Writer
}

// BytesWritten is the number of audio bytes persisted so far.
func (s *Session) BytesWritten() int64 {
	if s == nil || s.writer == nil {
		return 0
	}
	return s.writer.BytesWritten()
}

// recordingPath picks recording_<timestamp>.wav in dir, adding a numeric
// suffix when a file with that name exists already.
func recordingPath(dir string, t time.Time) (string, error) {
	base := "recording_" + t.Format(fileTimeLayout)
	for i := 1; i < 1000; i++ {
		name := base + ".wav"
		if i > 1 {
			name = fmt.Sprintf("%s_%d.wav", base, i)
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", base, dir)
}
