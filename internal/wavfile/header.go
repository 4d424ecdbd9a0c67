package wavfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the length of the canonical RIFF/WAVE header written by Writer.
const HeaderSize = 44

const (
	riffSizeOffset = 4
	dataSizeOffset = 40

	// riffOverhead is what the RIFF size field counts beyond the data bytes.
	riffOverhead = HeaderSize - 8
)

// Encoding is the WAVE format code.
type Encoding uint16

const (
	PCM   Encoding = 1
	Float Encoding = 3
)

func (e Encoding) String() string {
	switch e {
	case PCM:
		return "pcm"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("encoding(%d)", uint16(e))
	}
}

// Format describes the sample layout of a recording.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Encoding      Encoding
}

// DefaultFormat is mono 44.1 kHz 32-bit float.
func DefaultFormat() Format {
	return Format{SampleRate: 44100, Channels: 1, BitsPerSample: 32, Encoding: Float}
}

func (f Format) BytesPerSample() int { return f.BitsPerSample / 8 }

func (f Format) BlockAlign() int { return f.Channels * f.BytesPerSample() }

func (f Format) ByteRate() int { return f.SampleRate * f.BlockAlign() }

func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > 8 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	switch f.Encoding {
	case PCM:
		if f.BitsPerSample != 16 && f.BitsPerSample != 32 {
			return fmt.Errorf("unsupported pcm bit depth: %d", f.BitsPerSample)
		}
	case Float:
		if f.BitsPerSample != 32 {
			return fmt.Errorf("unsupported float bit depth: %d", f.BitsPerSample)
		}
	default:
		return fmt.Errorf("unsupported encoding: %s", f.Encoding)
	}
	return nil
}

// Header is the decoded form of the 44-byte container header.
type Header struct {
	Format
	RIFFSize uint32
	DataSize uint32
}

// encodeHeader lays out the 44-byte header with the given size fields.
func encodeHeader(f Format, riffSize, dataSize uint32) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(f.Encoding))
	binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(f.ByteRate()))
	binary.Write(&buf, binary.LittleEndian, uint16(f.BlockAlign()))
	binary.Write(&buf, binary.LittleEndian, uint16(f.BitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)

	return buf.Bytes()
}

// ParseHeader reads and checks a canonical 44-byte header.
func ParseHeader(r io.Reader) (Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}

	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return Header{}, fmt.Errorf("not a RIFF/WAVE file")
	}
	if string(raw[12:16]) != "fmt " || binary.LittleEndian.Uint32(raw[16:20]) != 16 {
		return Header{}, fmt.Errorf("unexpected fmt chunk")
	}
	if string(raw[36:40]) != "data" {
		return Header{}, fmt.Errorf("data chunk does not follow fmt chunk")
	}

	le := binary.LittleEndian
	return Header{
		Format: Format{
			Encoding:      Encoding(le.Uint16(raw[20:22])),
			Channels:      int(le.Uint16(raw[22:24])),
			SampleRate:    int(le.Uint32(raw[24:28])),
			BitsPerSample: int(le.Uint16(raw[34:36])),
		},
		RIFFSize: le.Uint32(raw[riffSizeOffset : riffSizeOffset+4]),
		DataSize: le.Uint32(raw[dataSizeOffset : dataSizeOffset+4]),
	}, nil
}
