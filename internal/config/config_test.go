package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		"discord": {"token": "abc123"},
		"chatbot": {"maxInlineLen": 4000}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discord.Token != "abc123" {
		t.Fatalf("expected token abc123, got %q", cfg.Discord.Token)
	}
	if cfg.Chatbot.MaxInlineLen != 4000 {
		t.Fatalf("expected maxInlineLen 4000, got %d", cfg.Chatbot.MaxInlineLen)
	}
	// Untouched fields keep defaults.
	if cfg.Chatbot.SlowmodeSeconds != 15 {
		t.Fatalf("expected default slowmode 15, got %d", cfg.Chatbot.SlowmodeSeconds)
	}
	if cfg.Chatbot.ChannelName != "freegpt-chat" {
		t.Fatalf("expected default channel name, got %q", cfg.Chatbot.ChannelName)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "discord:\n  token: ytoken\nchatbot:\n  channelName: bot-chat\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discord.Token != "ytoken" {
		t.Fatalf("expected token ytoken, got %q", cfg.Discord.Token)
	}
	if cfg.Chatbot.ChannelName != "bot-chat" {
		t.Fatalf("expected bot-chat, got %q", cfg.Chatbot.ChannelName)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("LEXOL_TEST_TOKEN", "secret")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"discord": {"token": "${LEXOL_TEST_TOKEN}"}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discord.Token != "secret" {
		t.Fatalf("expected env-expanded token, got %q", cfg.Discord.Token)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	got := ExpandEnvVars("${LEXOL_DEFINITELY_UNSET:-fallback}")
	if got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cfg := Defaults()
	cfg.Chatbot.MaxInlineLen = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero maxInlineLen")
	}

	cfg = Defaults()
	cfg.Backends.Caption.TimeoutSeconds = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero caption timeout")
	}
}

func TestDefaults_Valid(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
