package transcriber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rahulvramesh/vibeco/internal/language"
)

// Segment holds the quality metrics of one transcribed segment.
type Segment struct {
	Start            float64
	End              float64
	AvgLogProb       float64
	NoSpeechProb     float64
	Temperature      float64
	CompressionRatio float64
}

// Result is a parsed transcription. It is a plain value; copies share nothing.
type Result struct {
	Text      string
	Language  string  // ISO 639-1 code when recognised, else the label as sent
	Duration  float64 // seconds of audio
	Task      string
	RequestID string
	// Segment is the first segment of the response, zero when there is none.
	Segment Segment

	Model   string
	Path    string
	Elapsed time.Duration
}

// Summary is a one-line description suitable for notifications and logs.
func (r Result) Summary() string {
	lang := language.DisplayName(r.Language)
	return fmt.Sprintf("%.1fs, %s, %d chars", r.Duration, lang, len([]rune(r.Text)))
}

var errMissingText = errors.New(`response has no "text" field`)

// parseResult decodes a verbose_json body. The body must be a JSON object
// with a string "text" member. Every other member is optional and read
// leniently: a value of the wrong type counts as its zero value.
func parseResult(body []byte, fallback time.Duration) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Result{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if fields == nil {
		return Result{}, errors.New("response is not a JSON object")
	}
	if !present(fields, "text") {
		return Result{}, errMissingText
	}
	var text string
	if err := json.Unmarshal(fields["text"], &text); err != nil {
		return Result{}, fmt.Errorf(`response "text" is not a string: %w`, err)
	}

	result := Result{
		Text:     text,
		Language: normalizeLanguage(stringField(fields, "language")),
		Duration: fallback.Seconds(),
		Task:     stringField(fields, "task"),
	}
	if present(fields, "duration") {
		result.Duration = numberField(fields, "duration")
	}
	if meta := objectOf(fields["x_groq"]); meta != nil {
		result.RequestID = stringField(meta, "id")
	}

	var segments []json.RawMessage
	if present(fields, "segments") && json.Unmarshal(fields["segments"], &segments) == nil && len(segments) > 0 {
		if seg := objectOf(segments[0]); seg != nil {
			result.Segment = Segment{
				Start:            numberField(seg, "start"),
				End:              numberField(seg, "end"),
				AvgLogProb:       numberField(seg, "avg_logprob"),
				NoSpeechProb:     numberField(seg, "no_speech_prob"),
				Temperature:      numberField(seg, "temperature"),
				CompressionRatio: numberField(seg, "compression_ratio"),
			}
		}
	}

	return result, nil
}

func present(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func objectOf(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(raw, &m) != nil {
		return nil
	}
	return m
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

func numberField(fields map[string]json.RawMessage, key string) float64 {
	var f float64
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &f) == nil {
		return f
	}
	return 0
}

func normalizeLanguage(label string) string {
	if code := language.Normalize(label); code != "" {
		return code
	}
	return label
}
