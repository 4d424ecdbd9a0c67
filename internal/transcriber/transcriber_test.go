package transcriber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rahulvramesh/vibeco/internal/errs"
)

const testKey = "gsk_test_0123456789abcdef"

const verboseBody = `{
  "task": "transcribe",
  "language": "English",
  "duration": 3.52,
  "text": " Hello from the microphone.",
  "segments": [
    {"id": 0, "seek": 0, "start": 0, "end": 3.2, "text": " Hello from the microphone.",
     "tokens": [50365, 2425], "temperature": 0, "avg_logprob": -0.21,
     "compression_ratio": 0.87, "no_speech_prob": 0.013},
    {"id": 1, "seek": 0, "start": 3.2, "end": 3.52, "text": "", "tokens": [],
     "temperature": 0.2, "avg_logprob": -1.5, "compression_ratio": 1, "no_speech_prob": 0.9}
  ],
  "x_groq": {"id": "req_01abc"}
}`

func writeRecording(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording_2024-05-01_10-00-00.wav")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{Endpoint: url, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(DefaultConfig())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.Endpoint() != "https://api.groq.com/openai/v1/audio/transcriptions" {
		t.Errorf("Endpoint() = %q", c.Endpoint())
	}

	if _, err := NewClient(Config{Provider: "acme"}); !errs.Is(err, errs.Config) {
		t.Errorf("NewClient(acme) error = %v, want ConfigError", err)
	}
}

func TestSubmitSuccess(t *testing.T) {
	audio := "RIFF....WAVEfmt fake audio payload"
	path := writeRecording(t, audio)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testKey {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if got := r.FormValue("model"); got != "whisper-large-v3" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		defer file.Close()
		if header.Filename != filepath.Base(path) {
			t.Errorf("filename = %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("file content type = %q", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != audio {
			t.Errorf("uploaded %q, want %q", data, audio)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, verboseBody)
	}))
	defer server.Close()

	var lastSent, lastTotal, calls atomic.Int64
	progress := func(sent, total int64) {
		calls.Add(1)
		if sent < lastSent.Load() {
			t.Errorf("progress went backwards: %d after %d", sent, lastSent.Load())
		}
		lastSent.Store(sent)
		lastTotal.Store(total)
	}

	client := newTestClient(t, server.URL)
	result, err := client.Submit(context.Background(), Request{
		FilePath:         path,
		Model:            "whisper-large-v3",
		APIKey:           testKey,
		FallbackDuration: 10 * time.Second,
	}, progress)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if calls.Load() == 0 || lastSent.Load() != lastTotal.Load() {
		t.Errorf("progress ended at %d/%d after %d calls", lastSent.Load(), lastTotal.Load(), calls.Load())
	}
	if result.Text != " Hello from the microphone." {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Errorf("Language = %q, want en", result.Language)
	}
	if result.Duration != 3.52 {
		t.Errorf("Duration = %v, want 3.52", result.Duration)
	}
	if result.Task != "transcribe" {
		t.Errorf("Task = %q", result.Task)
	}
	if result.RequestID != "req_01abc" {
		t.Errorf("RequestID = %q", result.RequestID)
	}
	want := Segment{Start: 0, End: 3.2, AvgLogProb: -0.21, NoSpeechProb: 0.013, Temperature: 0, CompressionRatio: 0.87}
	if result.Segment != want {
		t.Errorf("Segment = %+v, want %+v", result.Segment, want)
	}
	if result.Model != "whisper-large-v3" || result.Path != path {
		t.Errorf("Model/Path = %q/%q", result.Model, result.Path)
	}
}

func TestSubmitTextOnlyUsesFallbackDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"text":"hello world"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Submit(context.Background(), Request{
		FilePath:         writeRecording(t, "audio"),
		Model:            "whisper-large-v3-turbo",
		APIKey:           testKey,
		FallbackDuration: 2500 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Duration != 2.5 {
		t.Errorf("Duration = %v, want fallback 2.5", result.Duration)
	}
	if result.Language != "" || result.RequestID != "" || result.Task != "" {
		t.Errorf("optional fields should be empty: %+v", result)
	}
	if result.Segment != (Segment{}) {
		t.Errorf("Segment = %+v, want zero", result.Segment)
	}
}

func TestSubmitResponseFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing text", `{"language":"en","duration":1.0}`},
		{"null text", `{"text":null}`},
		{"text not a string", `{"text":42}`},
		{"not json", `<html>gateway</html>`},
		{"json array", `[{"text":"hi"}]`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			result, err := client.Submit(context.Background(), Request{
				FilePath: writeRecording(t, "audio"),
				Model:    "whisper-large-v3-turbo",
				APIKey:   testKey,
			}, nil)
			if !errs.Is(err, errs.ResponseFormat) {
				t.Fatalf("Submit() error = %v, want ResponseFormatError", err)
			}
			if result != (Result{}) {
				t.Errorf("result should be zero on failure, got %+v", result)
			}
		})
	}
}

func TestSubmitPreconditionsMakeNoRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"text":"unexpected"}`)
	}))
	defer server.Close()

	path := writeRecording(t, "audio")
	tests := []struct {
		name string
		req  Request
		kind errs.Kind
	}{
		{"short credential", Request{FilePath: path, Model: "whisper-base", APIKey: "abcde"}, errs.Config},
		{"empty credential", Request{FilePath: path, Model: "whisper-base"}, errs.Config},
		{"wrong prefix", Request{FilePath: path, Model: "whisper-base", APIKey: "sk-0123456789abcdefghij"}, errs.Config},
		{"unknown model", Request{FilePath: path, Model: "whisper-1", APIKey: testKey}, errs.Config},
		{"missing file", Request{FilePath: filepath.Join(t.TempDir(), "nope.wav"), Model: "whisper-base", APIKey: testKey}, errs.IO},
	}

	client := newTestClient(t, server.URL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Submit(context.Background(), tt.req, func(int64, int64) {
				t.Error("progress should not be reported")
			})
			if !errs.Is(err, tt.kind) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.kind)
			}
		})
	}

	if n := hits.Load(); n != 0 {
		t.Errorf("server received %d requests, want 0", n)
	}
}

func TestSubmitHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "openai style error",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`,
			message: "Invalid API Key",
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable",
			message: "upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Submit(context.Background(), Request{
				FilePath: writeRecording(t, "audio"),
				Model:    "whisper-large-v3-turbo",
				APIKey:   testKey,
			}, nil)
			if !errs.Is(err, errs.Network) {
				t.Fatalf("Submit() error = %v, want NetworkError", err)
			}

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("error %v does not wrap *StatusError", err)
			}
			if statusErr.StatusCode != tt.status || statusErr.Message != tt.message {
				t.Errorf("StatusError = %+v", statusErr)
			}
			if hits.Load() != 1 {
				t.Errorf("server received %d requests, want exactly 1", hits.Load())
			}
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url)
	_, err := client.Submit(context.Background(), Request{
		FilePath: writeRecording(t, "audio"),
		Model:    "whisper-large-v3-turbo",
		APIKey:   testKey,
	}, nil)
	if !errs.Is(err, errs.Network) {
		t.Fatalf("Submit() error = %v, want NetworkError", err)
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		fallback  time.Duration
		text      string
		language  string
		duration  float64
		requestID string
		segment   Segment
	}{
		{name: "explicit zero duration", body: `{"text":"","duration":0}`, fallback: 4 * time.Second},
		{name: "null duration", body: `{"text":"x","duration":null}`, fallback: 4 * time.Second, text: "x", duration: 4},
		{name: "code language", body: `{"text":"x","language":"de"}`, text: "x", language: "de"},
		{name: "lowercase name", body: `{"text":"x","language":"spanish"}`, text: "x", language: "es"},
		{name: "unknown label kept", body: `{"text":"x","language":"elvish"}`, text: "x", language: "elvish"},
		{
			name:    "string segment id",
			body:    `{"text":"hello","segments":[{"id":"seg-1","start":0.5,"end":1.5}]}`,
			text:    "hello",
			segment: Segment{Start: 0.5, End: 1.5},
		},
		{name: "string duration", body: `{"text":"hello","duration":"3.2"}`, fallback: 4 * time.Second, text: "hello"},
		{name: "numeric language", body: `{"text":"hello","language":7}`, text: "hello"},
		{name: "x_groq not an object", body: `{"text":"hello","x_groq":"req_1"}`, text: "hello"},
		{name: "numeric request id", body: `{"text":"hello","x_groq":{"id":42}}`, text: "hello"},
		{name: "segments not an array", body: `{"text":"hello","segments":{"start":1}}`, text: "hello"},
		{name: "segment not an object", body: `{"text":"hello","segments":[3]}`, text: "hello"},
		{
			name:      "mistyped segment metric",
			body:      `{"text":"hi","x_groq":{"id":"req_9"},"segments":[{"start":1,"end":2,"avg_logprob":"low","no_speech_prob":0.25}]}`,
			text:      "hi",
			requestID: "req_9",
			segment:   Segment{Start: 1, End: 2, NoSpeechProb: 0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseResult([]byte(tt.body), tt.fallback)
			if err != nil {
				t.Fatalf("parseResult() error = %v", err)
			}
			if r.Text != tt.text {
				t.Errorf("Text = %q, want %q", r.Text, tt.text)
			}
			if r.Language != tt.language {
				t.Errorf("Language = %q, want %q", r.Language, tt.language)
			}
			if r.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", r.Duration, tt.duration)
			}
			if r.RequestID != tt.requestID {
				t.Errorf("RequestID = %q, want %q", r.RequestID, tt.requestID)
			}
			if r.Segment != tt.segment {
				t.Errorf("Segment = %+v, want %+v", r.Segment, tt.segment)
			}
		})
	}
}

func TestUploadFormSize(t *testing.T) {
	form, err := newUploadForm(`odd "name".wav`, formField{"model", "whisper-base"}, formField{"response_format", "verbose_json"})
	if err != nil {
		t.Fatalf("newUploadForm() error = %v", err)
	}

	file := strings.Repeat("a", 1000)
	body, err := io.ReadAll(form.reader(strings.NewReader(file)))
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(body)) != form.size(int64(len(file))) {
		t.Errorf("body is %d bytes, size() = %d", len(body), form.size(int64(len(file))))
	}
	if !strings.HasPrefix(form.contentType, "multipart/form-data; boundary=") {
		t.Errorf("contentType = %q", form.contentType)
	}
	if !strings.Contains(string(body), `filename="odd \"name\".wav"`) {
		t.Error("filename should be quoted and escaped")
	}
}

func TestResultSummary(t *testing.T) {
	r := Result{Text: "héllo", Language: "fr", Duration: 1.25}
	if got := r.Summary(); got != "1.2s, French (fr), 5 chars" && got != "1.3s, French (fr), 5 chars" {
		t.Errorf("Summary() = %q", got)
	}
}
