package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/newsbrief/internal/extract"
    "github.com/hyperifyio/newsbrief/internal/pipeline"
    "github.com/hyperifyio/newsbrief/internal/summarize"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    Listen string `yaml:"listen" json:"listen"`

    LLM struct {
        BaseURL     string        `yaml:"base" json:"base"`
        Model       string        `yaml:"model" json:"model"`
        APIKey      string        `yaml:"key" json:"key"`
        Timeout     time.Duration `yaml:"timeout" json:"timeout"`
        Temperature *float32      `yaml:"temperature" json:"temperature"`
        MaxTokens   int           `yaml:"maxTokens" json:"maxTokens"`
    } `yaml:"llm" json:"llm"`

    Fetch struct {
        Timeout       time.Duration `yaml:"timeout" json:"timeout"`
        UserAgent     string        `yaml:"userAgent" json:"userAgent"`
        MaxBodyBytes  int64         `yaml:"maxBodyBytes" json:"maxBodyBytes"`
        RespectRobots *bool         `yaml:"respectRobots" json:"respectRobots"`
    } `yaml:"fetch" json:"fetch"`

    Extract struct {
        Selectors   []string `yaml:"selectors" json:"selectors"`
        Readability *bool    `yaml:"readabilityFallback" json:"readabilityFallback"`
    } `yaml:"extract" json:"extract"`

    Scrape struct {
        Mode string `yaml:"mode" json:"mode"`
    } `yaml:"scrape" json:"scrape"`

    Summary struct {
        ChainedWords int `yaml:"chainedWords" json:"chainedWords"`
        DirectWords  int `yaml:"directWords" json:"directWords"`
    } `yaml:"summary" json:"summary"`

    Metrics struct {
        Enable *bool `yaml:"enable" json:"enable"`
    } `yaml:"metrics" json:"metrics"`

    Log struct {
        File       string `yaml:"file" json:"file"`
        Format     string `yaml:"format" json:"format"`
        MaxSizeMB  int    `yaml:"maxSizeMB" json:"maxSizeMB"`
        MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
        MaxAgeDays int    `yaml:"maxAgeDays" json:"maxAgeDays"`
    } `yaml:"log" json:"log"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. It runs on top of
// DefaultConfig and below env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if fc.Listen != "" { cfg.ListenAddr = fc.Listen }

    if fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if fc.LLM.Timeout > 0 { cfg.LLMTimeout = fc.LLM.Timeout }
    if fc.LLM.Temperature != nil { cfg.Temperature = *fc.LLM.Temperature }
    if fc.LLM.MaxTokens > 0 { cfg.MaxTokens = fc.LLM.MaxTokens }

    if fc.Fetch.Timeout > 0 { cfg.FetchTimeout = fc.Fetch.Timeout }
    if fc.Fetch.UserAgent != "" { cfg.FetchUserAgent = fc.Fetch.UserAgent }
    if fc.Fetch.MaxBodyBytes > 0 { cfg.FetchMaxBodyBytes = fc.Fetch.MaxBodyBytes }
    if fc.Fetch.RespectRobots != nil { cfg.RespectRobots = *fc.Fetch.RespectRobots }

    if len(fc.Extract.Selectors) > 0 { cfg.Selectors = append([]string{}, fc.Extract.Selectors...) }
    if fc.Extract.Readability != nil { cfg.ReadabilityFallback = *fc.Extract.Readability }

    if fc.Scrape.Mode != "" { cfg.ScrapeMode = strings.ToLower(fc.Scrape.Mode) }
    if fc.Summary.ChainedWords > 0 { cfg.ChainedWordLimit = fc.Summary.ChainedWords }
    if fc.Summary.DirectWords > 0 { cfg.DirectWordLimit = fc.Summary.DirectWords }

    if fc.Metrics.Enable != nil { cfg.MetricsEnable = *fc.Metrics.Enable }

    if fc.Log.File != "" { cfg.LogFile = fc.Log.File }
    if fc.Log.Format != "" { cfg.LogFormat = strings.ToLower(fc.Log.Format) }
    if fc.Log.MaxSizeMB > 0 { cfg.LogMaxSizeMB = fc.Log.MaxSizeMB }
    if fc.Log.MaxBackups > 0 { cfg.LogMaxBackups = fc.Log.MaxBackups }
    if fc.Log.MaxAgeDays > 0 { cfg.LogMaxAgeDays = fc.Log.MaxAgeDays }
    if fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.ListenAddr) == "" {
        return errors.New("config: listen address is required")
    }
    if strings.TrimSpace(cfg.LLMModel) == "" {
        return errors.New("config: llm.model is required (or set LLM_MODEL)")
    }
    if cfg.FetchTimeout <= 0 || cfg.LLMTimeout <= 0 {
        return errors.New("config: timeouts must be positive")
    }
    if cfg.ChainedWordLimit <= 0 || cfg.DirectWordLimit <= 0 {
        return errors.New("config: summary word limits must be positive")
    }
    for _, limit := range []int{cfg.ChainedWordLimit, cfg.DirectWordLimit} {
        if avail := summarize.ArticleTokenBudget(cfg.LLMModel, limit); avail < summarize.MinArticleTokens {
            return fmt.Errorf("config: word limit %d leaves %d article tokens for model %q (need %d)", limit, avail, cfg.LLMModel, summarize.MinArticleTokens)
        }
    }
    if cfg.FetchMaxBodyBytes < 0 || cfg.MaxTokens < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    if _, err := pipeline.ParseScrapeMode(cfg.ScrapeMode); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if len(cfg.Selectors) == 0 {
        return errors.New("config: at least one extract selector is required")
    }
    if err := extract.ValidateSelectors(cfg.Selectors); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    switch cfg.LogFormat {
    case "", "console", "json":
    default:
        return fmt.Errorf("config: unknown log format %q (want console or json)", cfg.LogFormat)
    }
    return nil
}
