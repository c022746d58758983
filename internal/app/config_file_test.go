package app

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func writeFile(t *testing.T, name, content string) string {
    t.Helper()
    p := filepath.Join(t.TempDir(), name)
    if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
        t.Fatalf("write %s: %v", name, err)
    }
    return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
    p := writeFile(t, "newsbrief.yaml", `
listen: ":4000"
llm:
  base: "http://localhost:8081/v1"
  model: "test-model"
  timeout: 45s
  temperature: 0
fetch:
  timeout: 10s
  respectRobots: true
extract:
  selectors:
    - "#maincontent .article-body-viewer-selector .dcr-16w5gq9"
    - "article p"
  readabilityFallback: true
scrape:
  mode: summary
metrics:
  enable: false
log:
  format: json
`)
    fc, err := LoadConfigFile(p)
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    cfg := DefaultConfig()
    ApplyFileConfig(&cfg, fc)

    if cfg.ListenAddr != ":4000" || cfg.LLMBaseURL != "http://localhost:8081/v1" || cfg.LLMModel != "test-model" {
        t.Fatalf("unexpected server/llm fields: %+v", cfg)
    }
    if cfg.LLMTimeout != 45*time.Second || cfg.FetchTimeout != 10*time.Second {
        t.Fatalf("durations not applied: %v %v", cfg.LLMTimeout, cfg.FetchTimeout)
    }
    if cfg.Temperature != 0 {
        t.Fatalf("explicit zero temperature should override default, got %v", cfg.Temperature)
    }
    if len(cfg.Selectors) != 2 || !cfg.ReadabilityFallback || !cfg.RespectRobots {
        t.Fatalf("extract/fetch options not applied: %+v", cfg)
    }
    if cfg.ScrapeMode != "summary" || cfg.MetricsEnable || cfg.LogFormat != "json" {
        t.Fatalf("mode/metrics/log not applied: %+v", cfg)
    }
    if err := ValidateConfig(cfg); err != nil {
        t.Fatalf("validate: %v", err)
    }
}

func TestLoadConfigFile_JSON(t *testing.T) {
    p := writeFile(t, "newsbrief.json", `{"llm":{"model":"gpt-4o-mini"},"summary":{"chainedWords":300}}`)
    fc, err := LoadConfigFile(p)
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    cfg := DefaultConfig()
    ApplyFileConfig(&cfg, fc)
    if cfg.LLMModel != "gpt-4o-mini" || cfg.ChainedWordLimit != 300 {
        t.Fatalf("json not applied: model=%q chained=%d", cfg.LLMModel, cfg.ChainedWordLimit)
    }
    if cfg.DirectWordLimit != 600 {
        t.Fatalf("unset fields must keep defaults, got %d", cfg.DirectWordLimit)
    }
}

func TestLoadConfigFile_Invalid(t *testing.T) {
    p := writeFile(t, "broken.yaml", "llm: [unterminated")
    if _, err := LoadConfigFile(p); err == nil {
        t.Fatalf("expected parse error")
    }
}

func TestValidateConfig(t *testing.T) {
    if err := ValidateConfig(DefaultConfig()); err != nil {
        t.Fatalf("defaults must validate: %v", err)
    }
    cases := map[string]func(*Config){
        "empty model":         func(c *Config) { c.LLMModel = " " },
        "zero fetch timeout":  func(c *Config) { c.FetchTimeout = 0 },
        "zero word limit":     func(c *Config) { c.DirectWordLimit = 0 },
        "unknown mode":        func(c *Config) { c.ScrapeMode = "verbose" },
        "no selectors":        func(c *Config) { c.Selectors = nil },
        "bad selector":        func(c *Config) { c.Selectors = []string{"div[["} },
        "bad log format":      func(c *Config) { c.LogFormat = "xml" },
        "empty listen":        func(c *Config) { c.ListenAddr = "" },
        "limit fills context": func(c *Config) { c.LLMModel = "mystery-model"; c.DirectWordLimit = 4000 },
    }
    for name, mutate := range cases {
        cfg := DefaultConfig()
        mutate(&cfg)
        err := ValidateConfig(cfg)
        if err == nil {
            t.Fatalf("%s: expected validation error", name)
        }
        if !strings.HasPrefix(err.Error(), "config:") {
            t.Fatalf("%s: error should be prefixed, got %q", name, err)
        }
    }
}

func TestWriteTimeoutCoversPipeline(t *testing.T) {
    cfg := DefaultConfig()
    if cfg.WriteTimeout() <= cfg.FetchTimeout+2*cfg.LLMTimeout {
        t.Fatalf("write timeout %v must exceed one fetch and two generation calls", cfg.WriteTimeout())
    }
}
