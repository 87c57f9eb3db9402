package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ReadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("Load: expected error")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Fatalf("error: got %q", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("prompts: [oops"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load: expected error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Fatalf("error: got %q", err)
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	const in = `
prompts:
  dir: ./my-prompts
storage:
  type: sqlite
  path: data/promptd.db
llm:
  default_provider: openai
  providers:
    openai:
      model: gpt-4o
`
	if err := os.WriteFile(path, []byte(in), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prompts.Dir != "./my-prompts" {
		t.Fatalf("Prompts.Dir: got %q", cfg.Prompts.Dir)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("Server.Addr default: got %q", cfg.Server.Addr)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.Path != "data/promptd.db" {
		t.Fatalf("Storage: got %+v", cfg.Storage)
	}
	if cfg.LLM.DefaultProvider != "openai" {
		t.Fatalf("DefaultProvider: got %q", cfg.LLM.DefaultProvider)
	}
	if cfg.LLM.Providers["openai"].Model != "gpt-4o" {
		t.Fatalf("Providers: got %+v", cfg.LLM.Providers)
	}
}

func TestLoad_DefaultPathMayBeMissing(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prompts.Dir != DefaultPromptsDir {
		t.Fatalf("Prompts.Dir: got %q", cfg.Prompts.Dir)
	}
	if cfg.LLM.DefaultProvider != "claude" {
		t.Fatalf("DefaultProvider: got %q", cfg.LLM.DefaultProvider)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PROMPTD_PROMPTS_DIR", "/srv/prompts")
	t.Setenv("PROMPTD_ADDR", ":9000")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-oai-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prompts.Dir != "/srv/prompts" {
		t.Fatalf("Prompts.Dir: got %q", cfg.Prompts.Dir)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("Server.Addr: got %q", cfg.Server.Addr)
	}
	if cfg.LLM.Providers["claude"].APIKey != "sk-ant-test" {
		t.Fatalf("claude key: got %+v", cfg.LLM.Providers["claude"])
	}
	if cfg.LLM.Providers["openai"].APIKey != "sk-oai-test" {
		t.Fatalf("openai key: got %+v", cfg.LLM.Providers["openai"])
	}
}
