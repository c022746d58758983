package app

import (
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding variables are set. It runs after the config file so env wins
// over file values, and before explicit flags, which win over both.
func ApplyEnvOverrides(cfg *Config) error {
    if cfg == nil { return nil }

    if v := os.Getenv("PORT"); v != "" { cfg.ListenAddr = ":" + strings.TrimPrefix(v, ":") }
    if v := os.Getenv("LISTEN_ADDR"); v != "" { cfg.ListenAddr = v }

    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    // GEMINI_API_KEY is the name the original deployment used; LLM_API_KEY wins.
    if v := os.Getenv("GEMINI_API_KEY"); v != "" { cfg.LLMAPIKey = v }
    if v := os.Getenv("LLM_API_KEY"); v != "" { cfg.LLMAPIKey = v }

    if v := os.Getenv("FETCH_USER_AGENT"); v != "" { cfg.FetchUserAgent = v }
    if v := strings.TrimSpace(os.Getenv("EXTRACT_SELECTORS")); v != "" { cfg.Selectors = splitList(v, ";") }
    if v := os.Getenv("SCRAPE_MODE"); v != "" { cfg.ScrapeMode = strings.ToLower(strings.TrimSpace(v)) }
    if v := os.Getenv("LOG_FILE"); v != "" { cfg.LogFile = v }
    if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.LogFormat = strings.ToLower(strings.TrimSpace(v)) }

    setDuration := func(dst *time.Duration, envKey string) error {
        s := strings.TrimSpace(os.Getenv(envKey))
        if s == "" { return nil }
        d, err := time.ParseDuration(s)
        if err != nil {
            // Bare integers are seconds.
            n, nerr := strconv.Atoi(s)
            if nerr != nil {
                return fmt.Errorf("env %s: %w", envKey, err)
            }
            d = time.Duration(n) * time.Second
        }
        *dst = d
        return nil
    }
    if err := setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT"); err != nil { return err }
    if err := setDuration(&cfg.LLMTimeout, "LLM_TIMEOUT"); err != nil { return err }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.RespectRobots, "RESPECT_ROBOTS")
    setBool(&cfg.ReadabilityFallback, "READABILITY_FALLBACK")
    setBool(&cfg.MetricsEnable, "METRICS_ENABLE")
    setBool(&cfg.Verbose, "VERBOSE")
    return nil
}

// splitList splits s on sep, trimming entries and dropping empty ones.
func splitList(s, sep string) []string {
    parts := strings.Split(s, sep)
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if v := strings.TrimSpace(p); v != "" { out = append(out, v) }
    }
    return out
}
