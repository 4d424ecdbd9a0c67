// Package deps checks the local environment for everything the recorder
// and the transcription client need.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rahulvramesh/vibeco/internal/config"
	"github.com/rahulvramesh/vibeco/internal/provider"
)

// Status represents the installation status of an external tool
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// CheckTool looks name up in PATH and, when versionArg is set, reads the
// first line of its version output.
func CheckTool(name, versionArg string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}
	if versionArg == "" {
		return status
	}

	output, err := exec.Command(path, versionArg).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}
	return status
}

// CheckNotifySend is the backend used for desktop notifications on Linux.
func CheckNotifySend() Status {
	return CheckTool("notify-send", "--version")
}

// CheckClipboardTool returns the first clipboard helper found in PATH.
func CheckClipboardTool() (string, Status) {
	for _, name := range []string{"wl-copy", "xclip", "xsel"} {
		if s := CheckTool(name, ""); s.Installed {
			return name, s
		}
	}
	return "", Status{}
}

// Check is one line of the doctor report.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// DeviceLister returns the names of capture devices.
type DeviceLister func() ([]string, error)

// Run performs every environment check against cfg.
func Run(cfg *config.Config, devices DeviceLister) []Check {
	var checks []Check

	if err := cfg.Validate(); err != nil {
		checks = append(checks, Check{Name: "config", Detail: err.Error()})
	} else {
		path, _ := config.GetConfigPath()
		checks = append(checks, Check{Name: "config", OK: true, Detail: path})
	}

	checks = append(checks, checkAPIKey(cfg))
	checks = append(checks, checkAudio(cfg, devices))
	checks = append(checks, checkWritable("recordings directory", cfg.RecordingsDir()))

	if cfg.Notifications.Enabled && cfg.Notifications.Type == "desktop" {
		s := CheckNotifySend()
		c := Check{Name: "notifications", OK: s.Installed, Detail: s.Path}
		if !s.Installed {
			c.Detail = "notify-send not found (install libnotify)"
		}
		checks = append(checks, c)
	}

	if cfg.Output.CopyToClipboard {
		name, s := CheckClipboardTool()
		c := Check{Name: "clipboard", OK: s.Installed, Detail: name}
		if !s.Installed {
			c.Detail = "no clipboard utility found (install wl-clipboard, xclip or xsel)"
		}
		checks = append(checks, c)
	}

	return checks
}

func checkAPIKey(cfg *config.Config) Check {
	c := Check{Name: "api key"}
	p := provider.GetProvider(cfg.Transcription.Provider)
	if p == nil {
		c.Detail = fmt.Sprintf("unknown provider %q", cfg.Transcription.Provider)
		return c
	}
	key := cfg.ResolveAPIKey()
	if key == "" {
		c.Detail = fmt.Sprintf("not set (transcription.api_key or $%s)", provider.EnvVarForProvider(p.Name()))
		return c
	}
	if err := p.CheckAPIKey(key); err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = p.Name()
	return c
}

func checkAudio(cfg *config.Config, devices DeviceLister) Check {
	c := Check{Name: "audio input"}
	if devices == nil {
		c.Detail = "not checked"
		return c
	}
	names, err := devices()
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	if len(names) == 0 {
		c.Detail = "no capture devices found"
		return c
	}
	if want := cfg.Recording.Device; want != "" {
		for _, n := range names {
			if n == want {
				c.OK = true
				c.Detail = want
				return c
			}
		}
		c.Detail = fmt.Sprintf("device %q not found (available: %s)", want, strings.Join(names, ", "))
		return c
	}
	c.OK = true
	c.Detail = fmt.Sprintf("%d device(s), using system default", len(names))
	return c
}

func checkWritable(name, dir string) Check {
	c := Check{Name: name, Detail: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.Detail = err.Error()
		return c
	}
	f, err := os.CreateTemp(dir, ".vibeco-doctor-*")
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	f.Close()
	os.Remove(filepath.Clean(f.Name()))
	c.OK = true
	return c
}
