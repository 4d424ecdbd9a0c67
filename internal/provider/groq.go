package provider

import (
	"fmt"
	"strings"
)

const (
	groqKeyPrefix    = "gsk_"
	groqKeyMinLength = 20
)

// GroqProvider implements Provider for Groq's Whisper endpoint
type GroqProvider struct{}

func (p *GroqProvider) Name() string {
	return ProviderGroq
}

func (p *GroqProvider) CheckAPIKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("API key is empty (set transcription.api_key or %s)", EnvGroqKey)
	case !strings.HasPrefix(key, groqKeyPrefix):
		return fmt.Errorf("API key must start with %q", groqKeyPrefix)
	case len(key) < groqKeyMinLength:
		return fmt.Errorf("API key must be at least %d characters", groqKeyMinLength)
	}
	return nil
}

func (p *GroqProvider) DefaultModel() string {
	return "whisper-large-v3-turbo"
}

func (p *GroqProvider) Models() []Model {
	return []Model{
		{ID: "whisper-large-v3-turbo", Name: "Whisper Large v3 Turbo", Description: "Fast multilingual transcription (default)"},
		{ID: "whisper-large-v3", Name: "Whisper Large v3", Description: "Highest accuracy, slower"},
		{ID: "whisper-medium", Name: "Whisper Medium", Description: "Balanced speed and accuracy"},
		{ID: "whisper-small", Name: "Whisper Small", Description: "Lightweight"},
		{ID: "whisper-base", Name: "Whisper Base", Description: "Smallest and fastest"},
	}
}

func (p *GroqProvider) Endpoint() EndpointConfig {
	return EndpointConfig{BaseURL: "https://api.groq.com", Path: "/openai/v1/audio/transcriptions"}
}
