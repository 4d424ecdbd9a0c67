package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/vibeco/internal/language"
	"github.com/rahulvramesh/vibeco/internal/provider"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
	"github.com/rahulvramesh/vibeco/internal/wavfile"
)

func transcribeCmd() *cobra.Command {
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Upload an audio file and print its transcript",
		Long: `Uploads a file directly to the transcription endpoint, without the daemon.
Progress is written to stderr and the transcript to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if model == "" {
				model = cfg.Transcription.Model
			}

			client, err := transcriber.NewClient(cfg.ToTranscriberConfig())
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			path := args[0]
			req := transcriber.Request{
				FilePath:         path,
				Model:            model,
				APIKey:           cfg.ResolveAPIKey(),
				FallbackDuration: wavfile.FileDuration(path),
			}

			progress := newProgressPrinter(filepath.Base(path))
			result, err := client.Submit(ctx, req, progress.update)
			progress.done()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintf(os.Stderr, "%s (%s, %v)\n", result.Summary(), result.Model, result.Elapsed.Round(time.Millisecond))
			fmt.Println(result.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

type progressPrinter struct {
	name    string
	percent int
}

func newProgressPrinter(name string) *progressPrinter {
	return &progressPrinter{name: name, percent: -1}
}

func (p *progressPrinter) update(sent, total int64) {
	if total <= 0 {
		return
	}
	percent := int(sent * 100 / total)
	if percent == p.percent {
		return
	}
	p.percent = percent
	fmt.Fprintf(os.Stderr, "\ruploading %s: %3d%% (%d/%d bytes)", p.name, percent, sent, total)
}

func (p *progressPrinter) done() {
	if p.percent >= 0 {
		fmt.Fprintln(os.Stderr)
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available transcription models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, name := range provider.ListProviders() {
				p := provider.GetProvider(name)
				fmt.Printf("\n%s:\n", name)
				for _, m := range p.Models() {
					prefix := "   "
					if name == cfg.Transcription.Provider && m.ID == cfg.Transcription.Model {
						prefix = "  *"
					}
					line := fmt.Sprintf("%s %s", prefix, m.ID)
					if m.Description != "" {
						line += " - " + m.Description
					}
					fmt.Println(line)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List language codes reported by transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range language.List() {
				fmt.Printf("%-4s %s\n", l.Code, l.Name)
			}
			return nil
		},
	}
}
