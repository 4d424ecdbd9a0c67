package recording

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice captures from the system's audio input through PortAudio.
type PortAudioDevice struct{}

func (PortAudioDevice) Initialize() error { return portaudio.Initialize() }

func (PortAudioDevice) Terminate() error { return portaudio.Terminate() }

// Open prepares an input stream whose callback encodes every buffer into a
// scratch slice allocated here, then hands it to onBlock.
func (PortAudioDevice) Open(config Config, onBlock func([]byte)) (Stream, error) {
	scratch := make([]byte, config.BlockBytes())

	var callback any
	switch config.Format {
	case FormatFloat32:
		callback = func(in []float32) {
			onBlock(scratch[:encodeFloat32(scratch, in)])
		}
	case FormatInt16:
		callback = func(in []int16) {
			onBlock(scratch[:encodeInt16(scratch, in)])
		}
	default:
		return nil, fmt.Errorf("unsupported sample format: %s", config.Format)
	}

	var (
		stream *portaudio.Stream
		err    error
	)
	if config.Device == "" {
		stream, err = portaudio.OpenDefaultStream(config.Channels, 0, float64(config.SampleRate), config.FramesPerBuffer, callback)
	} else {
		var dev *portaudio.DeviceInfo
		if dev, err = findInputDevice(config.Device); err != nil {
			return nil, err
		}
		params := portaudio.LowLatencyParameters(dev, nil)
		params.Input.Channels = config.Channels
		params.SampleRate = float64(config.SampleRate)
		params.FramesPerBuffer = config.FramesPerBuffer
		stream, err = portaudio.OpenStream(params, callback)
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", name)
}

// InputDevices lists capture-capable device names. PortAudio must be
// initialized.
func InputDevices() ([]string, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}
