package deps

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahulvramesh/vibeco/internal/config"
)

func TestCheckTool(t *testing.T) {
	status := CheckTool("sh", "")
	if !status.Installed || status.Path == "" {
		t.Errorf("sh should be found: %+v", status)
	}

	status = CheckTool("definitely-not-a-real-binary-vibeco", "--version")
	if status.Installed || status.Path != "" {
		t.Errorf("missing tool reported as installed: %+v", status)
	}
}

func TestCheckNotifySend(t *testing.T) {
	status := CheckNotifySend()
	if _, err := exec.LookPath("notify-send"); err != nil {
		if status.Installed {
			t.Error("expected Installed=false when notify-send not in PATH")
		}
		return
	}
	if status.Path == "" {
		t.Error("installed but path empty")
	}
}

func findCheck(t *testing.T, checks []Check, name string) Check {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %q check in %+v", name, checks)
	return Check{}
}

func TestRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GROQ_API_KEY", "")

	cfg := config.DefaultConfig()
	cfg.Recording.Directory = filepath.Join(t.TempDir(), "recordings")
	cfg.Notifications.Enabled = false

	devices := func() ([]string, error) { return []string{"Built-in Microphone", "USB Mic"}, nil }

	t.Run("missing key", func(t *testing.T) {
		checks := Run(cfg, devices)
		if c := findCheck(t, checks, "api key"); c.OK || !strings.Contains(c.Detail, "GROQ_API_KEY") {
			t.Errorf("api key check = %+v", c)
		}
		if c := findCheck(t, checks, "config"); !c.OK {
			t.Errorf("config check = %+v", c)
		}
		if c := findCheck(t, checks, "recordings directory"); !c.OK {
			t.Errorf("directory check = %+v", c)
		}
		if c := findCheck(t, checks, "audio input"); !c.OK || !strings.Contains(c.Detail, "2 device") {
			t.Errorf("audio check = %+v", c)
		}
	})

	t.Run("key from env", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "gsk_0123456789abcdefghij")
		if c := findCheck(t, Run(cfg, devices), "api key"); !c.OK {
			t.Errorf("api key check = %+v", c)
		}
	})

	t.Run("named device", func(t *testing.T) {
		named := *cfg
		named.Recording.Device = "USB Mic"
		if c := findCheck(t, Run(&named, devices), "audio input"); !c.OK {
			t.Errorf("audio check = %+v", c)
		}
		named.Recording.Device = "Headset"
		if c := findCheck(t, Run(&named, devices), "audio input"); c.OK || !strings.Contains(c.Detail, "available") {
			t.Errorf("audio check = %+v", c)
		}
	})

	t.Run("device error", func(t *testing.T) {
		failing := func() ([]string, error) { return nil, errors.New("no backend") }
		if c := findCheck(t, Run(cfg, failing), "audio input"); c.OK || c.Detail != "no backend" {
			t.Errorf("audio check = %+v", c)
		}
	})
}
