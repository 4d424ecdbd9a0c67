package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the WAV header of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectFile(os.Stdout, args[0])
		},
	}
}

func inspectFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	h, err := wavfile.ParseHeader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(w, "file:        %s (%d bytes)\n", path, info.Size())
	fmt.Fprintf(w, "encoding:    %s\n", h.Format.Encoding)
	fmt.Fprintf(w, "sample rate: %d Hz\n", h.Format.SampleRate)
	fmt.Fprintf(w, "channels:    %d\n", h.Format.Channels)
	fmt.Fprintf(w, "bits:        %d\n", h.Format.BitsPerSample)
	fmt.Fprintf(w, "riff size:   %d\n", h.RIFFSize)
	fmt.Fprintf(w, "data size:   %d\n", h.DataSize)
	fmt.Fprintf(w, "duration:    %v\n", wavfile.DurationOf(h.Format, int64(h.DataSize)).Round(time.Millisecond))

	if want := int64(h.DataSize) + wavfile.HeaderSize; want != info.Size() {
		fmt.Fprintf(w, "warning:     header describes %d bytes but the file has %d (unfinished recording?)\n", want, info.Size())
	}

	// Cross-check with an independent decoder.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		fmt.Fprintf(w, "decoder:     %v\n", err)
		return nil
	}
	if d, err := dec.Duration(); err == nil {
		fmt.Fprintf(w, "decoder:     %d Hz, %d ch, %d bit, %v\n", dec.SampleRate, dec.NumChans, dec.BitDepth, d.Round(time.Millisecond))
	}
	return nil
}
