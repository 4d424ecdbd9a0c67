package provider

import (
	"slices"
	"testing"
)

func TestGroqProvider(t *testing.T) {
	p := GetProvider("groq")
	if p == nil {
		t.Fatal("GetProvider(groq) returned nil")
	}
	if Default() != p {
		t.Error("Default() should be groq")
	}
	if p.DefaultModel() != "whisper-large-v3-turbo" {
		t.Errorf("DefaultModel() = %q", p.DefaultModel())
	}
	if _, ok := FindModel(p, p.DefaultModel()); !ok {
		t.Error("default model should be in the catalog")
	}
	if got := p.Endpoint().URL(); got != "https://api.groq.com/openai/v1/audio/transcriptions" {
		t.Errorf("Endpoint().URL() = %q", got)
	}

	want := []string{"whisper-large-v3-turbo", "whisper-large-v3", "whisper-medium", "whisper-small", "whisper-base"}
	if got := ModelIDs(p); !slices.Equal(got, want) {
		t.Errorf("ModelIDs() = %v, want %v", got, want)
	}
}

func TestGroqCheckAPIKey(t *testing.T) {
	p := &GroqProvider{}
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"empty", "", false},
		{"short without prefix", "abcde", false},
		{"wrong prefix", "sk-abcdefghijklmnopqrstuvwxyz", false},
		{"prefix but short", "gsk_12345", false},
		{"exactly twenty", "gsk_0123456789abcdef", true},
		{"typical", "gsk_" + "a1b2c3d4e5f6g7h8i9j0k1l2m3n4o5p6", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CheckAPIKey(tt.key)
			if (err == nil) != tt.valid {
				t.Errorf("CheckAPIKey(%q) error = %v, valid want %v", tt.key, err, tt.valid)
			}
			if ValidateAPIKey(p, tt.key) != tt.valid {
				t.Errorf("ValidateAPIKey(%q) != %v", tt.key, tt.valid)
			}
		})
	}
}

func TestCheckModel(t *testing.T) {
	p := Default()
	if err := CheckModel(p, "whisper-small"); err != nil {
		t.Errorf("CheckModel(whisper-small) error = %v", err)
	}
	if err := CheckModel(p, "whisper-1"); err == nil {
		t.Error("CheckModel(whisper-1) should fail")
	}
	if err := CheckModel(p, ""); err == nil {
		t.Error("CheckModel(\"\") should fail")
	}
}

func TestListProviders(t *testing.T) {
	if got := ListProviders(); !slices.Contains(got, ProviderGroq) {
		t.Errorf("ListProviders() = %v, missing groq", got)
	}
	if EnvVarForProvider(ProviderGroq) != "GROQ_API_KEY" {
		t.Error("groq env var should be GROQ_API_KEY")
	}
	if EnvVarForProvider("unknown") != "" {
		t.Error("unknown provider should have no env var")
	}
}
