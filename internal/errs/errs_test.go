package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unknown},
		{"plain", io.EOF, Unknown},
		{"direct", E(IO, "write", io.ErrShortWrite), IO},
		{"wrapped", fmt.Errorf("outer: %w", E(Network, "post", io.EOF)), Network},
		{"nil cause", E(InvalidState, "start", nil), InvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := E(IO, "append", io.ErrShortWrite)
	if !errors.Is(err, io.ErrShortWrite) {
		t.Error("errors.Is should find the cause")
	}
	if !Is(err, IO) {
		t.Error("Is(err, IO) should be true")
	}
	if Is(err, Network) {
		t.Error("Is(err, Network) should be false")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{E(Config, "submit", errors.New("missing credential")), "ConfigError: submit: missing credential"},
		{E(InvalidState, "start", nil), "InvalidState: start"},
		{E(ResponseFormat, "", errors.New("no text")), "ResponseFormatError: no text"},
		{Errorf(Device, "open", "device %q busy", "hw:0"), `DeviceError: open: device "hw:0" busy`},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
