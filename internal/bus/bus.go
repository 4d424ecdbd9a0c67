package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "vibeco.pid"
const ProtoVer = "1.0"

// Commands understood by the daemon. Each request is one line: the command
// byte, optionally followed by a space and an argument.
const (
	CmdToggle     byte = 't'
	CmdStart      byte = 'r'
	CmdStop       byte = 'x'
	CmdStatus     byte = 's'
	CmdAuto       byte = 'a'
	CmdModel      byte = 'm'
	CmdTranscribe byte = 'f'
	CmdVersion    byte = 'v'
	CmdQuit       byte = 'q'
)

const dialTimeout = 2 * time.Second

func runtimeDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vibeco"), nil
}

// ~/.cache/vibeco/control.sock
func SockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

// ~/.cache/vibeco/vibeco.pid
func PidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

type socketManager struct {
	path string
}

func defaultSocketManager() (*socketManager, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: sp}, nil
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.DialTimeout("unix", s.path, dialTimeout)
}

func (s *socketManager) send(cmd byte, arg string) (string, error) {
	c, err := s.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	if _, err := c.Write([]byte(FormatRequest(cmd, arg))); err != nil {
		return "", err
	}

	resp, err := bufio.NewReader(c).ReadString('\n')
	return resp, err
}

func Listen() (net.Listener, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.listen()
}

func Dial() (net.Conn, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.dial()
}

// SendCommand sends one request and returns the daemon's reply line.
func SendCommand(cmd byte, arg string) (string, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return "", err
	}
	return sm.send(cmd, arg)
}

func FormatRequest(cmd byte, arg string) string {
	if arg == "" {
		return string(cmd) + "\n"
	}
	return string(cmd) + " " + arg + "\n"
}

// ParseRequest splits a request line into its command and argument.
func ParseRequest(line string) (byte, string, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return 0, "", fmt.Errorf("empty request")
	}
	cmd := line[0]
	rest := line[1:]
	if rest != "" && rest[0] != ' ' {
		return 0, "", fmt.Errorf("malformed request %q", line)
	}
	return cmd, strings.TrimSpace(rest), nil
}

type pidManager struct {
	path string
}

func defaultPidManager() (*pidManager, error) {
	pp, err := PidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: pp}, nil
}

// checkExisting fails when a live daemon owns the PID file. Stale or
// unreadable PID files are removed.
func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil || !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

func CheckExistingDaemon() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.checkExisting()
}

func CreatePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.create()
}

func RemovePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.remove()
}
