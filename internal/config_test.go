package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGatewayConfig_RequiresBaseURL(t *testing.T) {
	cfg := GatewayConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing base_url should fail validation")
	}
}

func TestGatewayConfig_MediaBaseFallsBackToBaseURL(t *testing.T) {
	cfg := GatewayConfig{BaseURL: "https://api.example.com"}
	if got := cfg.MediaBase(); got != "https://api.example.com" {
		t.Errorf("media base = %q", got)
	}
	cfg.MediaBaseURL = "https://media.example.com"
	if got := cfg.MediaBase(); got != "https://media.example.com" {
		t.Errorf("media base = %q", got)
	}
}

func TestGeocoderConfig_RequiresUserAgent(t *testing.T) {
	cfg := GeocoderConfig{BaseURL: "https://nominatim.openstreetmap.org"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing user_agent should fail validation")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validation should surface auth errors")
	}
}
