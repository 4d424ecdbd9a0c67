package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/vibeco/internal/bus"
	"github.com/rahulvramesh/vibeco/internal/config"
	"github.com/rahulvramesh/vibeco/internal/daemon"
	"github.com/rahulvramesh/vibeco/internal/logging"
)

var version = "dev"

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "vibeco",
	Short:        "Record your voice to WAV and transcribe it with Groq",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		controlCmd("toggle", "Start or stop recording", bus.CmdToggle),
		controlCmd("start", "Start recording", bus.CmdStart),
		controlCmd("stop", "Stop recording", bus.CmdStop),
		controlCmd("status", "Show recorder status", bus.CmdStatus),
		controlCmd("quit", "Stop the daemon", bus.CmdQuit),
		autoCmd(),
		modelCmd(),
		versionCmd(),
		transcribeCmd(),
		modelsCmd(),
		languagesCmd(),
		inspectCmd(),
		historyCmd(),
		configureCmd(),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg := m.GetConfig()

			closer, err := logging.Setup(logging.Options{
				Path:       cfg.LogPath(),
				MaxSizeMB:  cfg.Logging.MaxSizeMB,
				MaxBackups: cfg.Logging.MaxBackups,
				MaxAgeDays: cfg.Logging.MaxAgeDays,
				Compress:   cfg.Logging.Compress,
			})
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer closer.Close()

			d, err := daemon.New(cfg, daemon.WithConfigManager(m))
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run(cmd.Context())
		},
	}
}

// send forwards one request to the daemon and prints the reply. ERR
// replies become a non-zero exit.
func send(cmd byte, arg string) error {
	resp, err := bus.SendCommand(cmd, arg)
	if err != nil {
		return fmt.Errorf("daemon not reachable (is `vibeco serve` running?): %w", err)
	}
	fmt.Print(resp)
	if strings.HasPrefix(resp, "ERR") {
		return fmt.Errorf("%s", strings.TrimSpace(strings.TrimPrefix(resp, "ERR")))
	}
	return nil
}

func controlCmd(use, short string, c byte) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(c, "")
		},
	}
}

func autoCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "auto <on|off>",
		Short:     "Enable or disable transcription after each recording",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdAuto, args[0])
		},
	}
}

func modelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model <name>",
		Short: "Select the transcription model used by the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdModel, args[0])
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and daemon protocol versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("vibeco %s (protocol %s)\n", version, bus.ProtoVer)
			resp, err := bus.SendCommand(bus.CmdVersion, "")
			if err != nil {
				fmt.Println("daemon: not running")
				return nil
			}
			fmt.Printf("daemon: %s", resp)
			return nil
		},
	}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Config: %v", err)
	}
	return cfg, nil
}
