package provider

// Provider name constants for config and registry
const (
	ProviderGroq = "groq"
)

// Environment variable names for API keys
const (
	EnvGroqKey = "GROQ_API_KEY"
)

// EnvVarForProvider returns the environment variable name for a provider's API key
func EnvVarForProvider(provider string) string {
	switch provider {
	case ProviderGroq:
		return EnvGroqKey
	default:
		return ""
	}
}
