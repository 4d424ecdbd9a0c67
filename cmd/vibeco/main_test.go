package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rahulvramesh/vibeco/internal/history"
	"github.com/rahulvramesh/vibeco/internal/testutil"
	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

func TestInspectFile(t *testing.T) {
	path := testutil.WriteWav(t, wavfile.DefaultFormat(), 176400)

	var out bytes.Buffer
	if err := inspectFile(&out, path); err != nil {
		t.Fatalf("inspectFile() error = %v", err)
	}
	for _, want := range []string{"sample rate: 44100 Hz", "data size:   176400", "riff size:   176436", "duration:    1s"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "warning") {
		t.Errorf("finalized file should not warn:\n%s", out.String())
	}
}

func TestInspectFileRejectsGarbage(t *testing.T) {
	if err := inspectFile(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	tests := []struct {
		name  string
		entry history.Entry
		want  []string
	}{
		{
			"completed",
			history.Entry{Status: history.StatusCompleted, Path: "/r/a.wav", Model: "whisper-small", Language: "en", Text: "hello\nworld", CreatedAt: ts},
			[]string{"2024-05-01 10:00:00", "completed", "a.wav", "whisper-small", "hello world"},
		},
		{
			"failed",
			history.Entry{Status: history.StatusFailed, Path: "/r/b.wav", Error: "NetworkError: boom", CreatedAt: ts},
			[]string{"failed", "b.wav: NetworkError: boom"},
		},
		{
			"recorded",
			history.Entry{Status: history.StatusRecorded, Path: "/r/c.wav", Duration: 1500 * time.Millisecond, CreatedAt: ts},
			[]string{"recorded", "c.wav (1.5s)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatEntry(tt.entry)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("formatEntry() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestProgressPrinterDedupes(t *testing.T) {
	p := newProgressPrinter("a.wav")
	p.update(0, 0)
	if p.percent != -1 {
		t.Error("unknown total should not print")
	}
	p.update(50, 100)
	p.update(50, 100)
	if p.percent != 50 {
		t.Errorf("percent = %d", p.percent)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "toggle", "start", "stop", "status", "auto", "model", "quit", "version",
		"transcribe", "models", "inspect", "history", "configure", "doctor"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
}
