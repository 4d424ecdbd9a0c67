package provider

// Model represents a transcription model with display metadata
type Model struct {
	ID          string // identifier sent in the "model" form field
	Name        string // display name
	Description string // short description
}

// EndpointConfig holds the HTTP endpoint of a provider
type EndpointConfig struct {
	BaseURL string // e.g., "https://api.groq.com"
	Path    string // e.g., "/openai/v1/audio/transcriptions"
}

// URL joins base and path.
func (e EndpointConfig) URL() string {
	return e.BaseURL + e.Path
}
