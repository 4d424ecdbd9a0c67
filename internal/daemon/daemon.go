package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rahulvramesh/vibeco/internal/bus"
	"github.com/rahulvramesh/vibeco/internal/config"
	"github.com/rahulvramesh/vibeco/internal/controller"
	"github.com/rahulvramesh/vibeco/internal/errs"
	"github.com/rahulvramesh/vibeco/internal/history"
	"github.com/rahulvramesh/vibeco/internal/injection"
	"github.com/rahulvramesh/vibeco/internal/notify"
	"github.com/rahulvramesh/vibeco/internal/recording"
	"github.com/rahulvramesh/vibeco/internal/telemetry"
	"github.com/rahulvramesh/vibeco/internal/transcriber"
)

// AudioRecorder is the capture backend owned by the daemon.
type AudioRecorder interface {
	controller.Recorder
	Initialize() error
	Terminate() error
	TotalDropped() int64
}

type Daemon struct {
	config    *config.Config
	manager   *config.Manager
	recorder  AudioRecorder
	client    controller.Submitter
	notifier  notify.Notifier
	injector  injection.Injector
	history   *history.Store
	telemetry *telemetry.Telemetry

	ctrl   *controller.Controller
	ready  chan struct{}
	cancel context.CancelFunc
}

type Option func(*Daemon)

func WithRecorder(r AudioRecorder) Option         { return func(d *Daemon) { d.recorder = r } }
func WithSubmitter(s controller.Submitter) Option { return func(d *Daemon) { d.client = s } }
func WithNotifier(n notify.Notifier) Option       { return func(d *Daemon) { d.notifier = n } }
func WithInjector(i injection.Injector) Option    { return func(d *Daemon) { d.injector = i } }
func WithHistory(s *history.Store) Option         { return func(d *Daemon) { d.history = s } }

// WithConfigManager enables hot reload of model, credential and
// auto-transcribe settings.
func WithConfigManager(m *config.Manager) Option { return func(d *Daemon) { d.manager = m } }

// New builds a daemon from cfg. Components not supplied as options are
// created from the configuration.
func New(cfg *config.Config, opts ...Option) (*Daemon, error) {
	d := &Daemon{config: cfg, ready: make(chan struct{})}
	for _, opt := range opts {
		opt(d)
	}

	if d.recorder == nil {
		d.recorder = recording.NewRecorder(cfg.ToRecordingConfig(), recording.PortAudioDevice{})
	}
	if d.client == nil {
		client, err := transcriber.NewClient(cfg.ToTranscriberConfig())
		if err != nil {
			return nil, err
		}
		d.client = client
	}
	if d.notifier == nil {
		if cfg.Notifications.Enabled {
			d.notifier = notify.New(cfg.Notifications.Type)
		} else {
			d.notifier = notify.Nop{}
		}
	}
	if d.injector == nil && cfg.Output.CopyToClipboard {
		d.injector = injection.NewDefaultInjector()
	}

	tel, err := telemetry.New(d.recorder.TotalDropped)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	d.telemetry = tel

	d.ctrl = controller.New(cfg.ToControllerConfig(), d.recorder, d.client)
	return d, nil
}

func (d *Daemon) Controller() *controller.Controller {
	return d.ctrl
}

// Ready is closed once the control socket accepts connections.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

func (d *Daemon) Run(ctx context.Context) error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stopSignals()
	ctx, d.cancel = context.WithCancel(ctx)
	defer d.cancel()

	// Without audio the daemon still serves file transcriptions; start
	// requests then fail with a DeviceError.
	if err := d.recorder.Initialize(); err != nil {
		log.Printf("Daemon: audio backend unavailable: %v", err)
	}
	defer func() {
		if err := d.recorder.Terminate(); err != nil {
			log.Printf("Daemon: terminate audio: %v", err)
		}
	}()

	if d.history == nil && d.config.History.Enabled {
		store, err := history.Open(ctx, d.config.HistoryPath(), d.config.History.Keep)
		if err != nil {
			log.Printf("Daemon: history disabled: %v", err)
		} else {
			d.history = store
			defer store.Close()
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// Consumers drain their channel until the controller closes it, so the
	// final events of a shutdown are still delivered.
	drainCtx := context.WithoutCancel(gctx)
	notifyEvents := d.ctrl.Subscribe()
	g.Go(func() error { notify.Forward(drainCtx, notifyEvents, d.notifier); return nil })
	telemetryEvents := d.ctrl.Subscribe()
	g.Go(func() error { d.telemetry.Consume(drainCtx, telemetryEvents); return nil })
	if d.history != nil {
		historyEvents := d.ctrl.Subscribe()
		g.Go(func() error { d.history.Record(drainCtx, historyEvents); return nil })
	}
	if d.injector != nil {
		injectEvents := d.ctrl.Subscribe()
		g.Go(func() error { injection.Deliver(drainCtx, injectEvents, d.injector); return nil })
	}

	g.Go(func() error { return d.ctrl.Run(gctx) })

	if bind := d.config.Metrics.Bind; bind != "" {
		g.Go(func() error {
			if err := d.telemetry.Serve(gctx, bind); err != nil {
				log.Printf("Daemon: metrics endpoint failed: %v", err)
			}
			return nil
		})
	}

	if d.manager != nil {
		d.manager.OnChange(d.applyConfig)
		if err := d.manager.StartWatching(gctx); err != nil {
			log.Printf("Daemon: config hot reload disabled: %v", err)
		} else {
			defer d.manager.Stop()
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		return nil
	})
	g.Go(func() error { return d.serve(gctx, ln) })

	log.Printf("Daemon: started, listening on socket")
	close(d.ready)

	err = g.Wait()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if terr := d.telemetry.Shutdown(shutdownCtx); terr != nil {
		log.Printf("Daemon: telemetry shutdown: %v", terr)
	}
	log.Printf("Daemon: stopped")
	return err
}

func (d *Daemon) serve(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("Daemon: shutdown requested")
				return nil
			}
			log.Printf("Daemon: accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Daemon: client read error: %v", err)
		fmt.Fprintf(c, "ERR IoError: read request: %v\n", err)
		return
	}

	cmd, arg, err := bus.ParseRequest(line)
	if err != nil {
		replyErr(c, errs.E(errs.InvalidState, "parse request", err))
		return
	}

	switch cmd {
	case bus.CmdToggle:
		state, err := d.ctrl.Toggle()
		if err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprintf(c, "OK %s\n", state)

	case bus.CmdStart:
		if err := d.ctrl.RequestStart(); err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprint(c, "OK recording\n")

	case bus.CmdStop:
		if err := d.ctrl.RequestStop(); err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprint(c, "OK idle\n")

	case bus.CmdStatus:
		st, err := d.ctrl.Status()
		if err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprintf(c, "STATUS %s\n", formatStatus(st))

	case bus.CmdAuto:
		on, err := parseSwitch(arg)
		if err != nil {
			replyErr(c, err)
			return
		}
		if err := d.ctrl.SetAutoTranscribe(on); err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprintf(c, "OK auto=%s\n", arg)

	case bus.CmdModel:
		if err := d.ctrl.SetModel(arg); err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprintf(c, "OK model=%s\n", arg)

	case bus.CmdTranscribe:
		if arg == "" {
			replyErr(c, errs.Errorf(errs.IO, "transcribe", "missing file path"))
			return
		}
		if err := d.ctrl.Transcribe(arg); err != nil {
			replyErr(c, err)
			return
		}
		fmt.Fprintf(c, "OK transcribing %s\n", arg)

	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)

	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()

	default:
		log.Printf("Daemon: unknown command: %c", cmd)
		replyErr(c, errs.Errorf(errs.InvalidState, "request", "unknown command %q", cmd))
	}
}

// applyConfig pushes reloadable settings into the running controller.
func (d *Daemon) applyConfig(prev, next *config.Config) {
	if next.Transcription.Model != prev.Transcription.Model {
		if err := d.ctrl.SetModel(next.Transcription.Model); err != nil {
			log.Printf("Daemon: reload model: %v", err)
		}
	}
	if next.Transcription.AutoTranscribe != prev.Transcription.AutoTranscribe {
		if err := d.ctrl.SetAutoTranscribe(next.Transcription.AutoTranscribe); err != nil {
			log.Printf("Daemon: reload auto transcribe: %v", err)
		}
	}
	if key := next.ResolveAPIKey(); key != prev.ResolveAPIKey() {
		if err := d.ctrl.SetAPIKey(key); err != nil {
			log.Printf("Daemon: reload api key: %v", err)
		}
	}
	if next.Recording != prev.Recording {
		log.Printf("Daemon: recording settings changed; restart the daemon to apply them")
	}
}

func formatStatus(st controller.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "state=%s auto=%v model=%s transcribing=%v", st.State, st.AutoTranscribe, st.Model, st.Transcribing)
	if st.Path != "" {
		fmt.Fprintf(&b, " elapsed=%s bytes=%d path=%s", st.Elapsed.Round(100*time.Millisecond), st.BytesWritten, st.Path)
	}
	return b.String()
}

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, errs.Errorf(errs.Config, "auto", "expected on or off, got %q", arg)
}

// replyErr writes "ERR <kind>: <message>". Errors without a kind are
// reported as InvalidState.
func replyErr(c net.Conn, err error) {
	if errs.KindOf(err) == errs.Unknown {
		err = errs.E(errs.InvalidState, "request", err)
	}
	fmt.Fprintf(c, "ERR %v\n", err)
}

// Exists reports whether a daemon socket is present.
func Exists() bool {
	sp, err := bus.SockPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(sp)
	return err == nil
}
