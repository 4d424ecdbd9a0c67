// Package transcriber uploads finished recordings to a Whisper-compatible
// HTTP endpoint and parses the verbose JSON answer into a Result.
package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/rahulvramesh/vibeco/internal/errs"
	"github.com/rahulvramesh/vibeco/internal/provider"
)

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// ProgressFunc is called as the request body is consumed by the transport.
// total is the full request body size in bytes.
type ProgressFunc func(sent, total int64)

// Configuration for the client
type Config struct {
	Provider string
	Endpoint string // overrides the provider endpoint when set
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Provider: provider.ProviderGroq,
		Timeout:  120 * time.Second,
	}
}

// Request describes one upload.
type Request struct {
	FilePath string
	Model    string
	APIKey   string
	// FallbackDuration is used when the response carries no duration.
	FallbackDuration time.Duration
}

type Client struct {
	httpClient *http.Client
	provider   provider.Provider
	endpoint   string
}

func NewClient(config Config) (*Client, error) {
	p := provider.Default()
	if config.Provider != "" {
		if p = provider.GetProvider(config.Provider); p == nil {
			return nil, errs.Errorf(errs.Config, "new client", "unsupported provider: %s", config.Provider)
		}
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = p.Endpoint().URL()
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		provider:   p,
		endpoint:   endpoint,
	}, nil
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Provider() provider.Provider { return c.provider }

// Submit uploads req.FilePath and waits for the transcription. Credential,
// model and file problems are reported before any network activity. There is
// exactly one attempt.
func (c *Client) Submit(ctx context.Context, req Request, progress ProgressFunc) (Result, error) {
	if err := c.provider.CheckAPIKey(req.APIKey); err != nil {
		return Result{}, errs.E(errs.Config, "transcribe", err)
	}
	if err := provider.CheckModel(c.provider, req.Model); err != nil {
		return Result{}, errs.E(errs.Config, "transcribe", err)
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return Result{}, errs.E(errs.IO, "open recording", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, errs.E(errs.IO, "stat recording", err)
	}

	form, err := newUploadForm(filepath.Base(req.FilePath),
		formField{"model", req.Model},
		formField{"response_format", string(openai.AudioResponseFormatVerboseJSON)},
	)
	if err != nil {
		return Result{}, errs.E(errs.IO, "build upload", err)
	}

	total := form.size(info.Size())
	body := &progressReader{r: form.reader(f), total: total, onProgress: progress}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Result{}, errs.E(errs.Network, "create request", err)
	}
	httpReq.ContentLength = total
	httpReq.Header.Set("Content-Type", form.contentType)
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	log.Printf("Transcriber: uploading %s (%d bytes) with %s", filepath.Base(req.FilePath), info.Size(), req.Model)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("Transcriber: request failed after %v: %v", elapsed, err)
		return Result{}, errs.E(errs.Network, "transcribe", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := newStatusError(resp.StatusCode, raw)
		log.Printf("Transcriber: API returned status %d: %s", resp.StatusCode, statusErr.Message)
		return Result{}, errs.E(errs.Network, "transcribe", statusErr)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, errs.E(errs.Network, "read response", err)
	}

	result, err := parseResult(raw, req.FallbackDuration)
	if err != nil {
		log.Printf("Transcriber: unusable response after %v: %v", elapsed, err)
		return Result{}, errs.E(errs.ResponseFormat, "parse response", err)
	}
	result.Model = req.Model
	result.Path = req.FilePath
	result.Elapsed = elapsed

	log.Printf("Transcriber: transcribed %s in %v: %q", filepath.Base(req.FilePath), elapsed, result.Text)
	return result, nil
}

// StatusError is the cause of a NetworkError for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// newStatusError prefers the message of an OpenAI-style error body and falls
// back to the raw body text.
func newStatusError(code int, body []byte) *StatusError {
	e := &StatusError{StatusCode: code}
	var apiErr openai.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		e.Message = apiErr.Error.Message
		return e
	}
	e.Message = truncate(string(body), 512)
	return e
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
