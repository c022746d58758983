package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/newsbrief/internal/app"
	"github.com/hyperifyio/newsbrief/internal/report"
)

const usage = `newsbrief fetches a news article, extracts its body and summarizes it.

Usage:
  newsbrief [serve] [flags]          run the HTTP service
  newsbrief summarize -url URL [flags] summarize one article and print Markdown

Run "newsbrief <command> -h" for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code: 0 on
// success, 1 on runtime failure, 2 on usage or configuration errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		return serve(ctx, args, stderr)
	case "summarize":
		return summarizeOnce(ctx, args, stdout, stderr)
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}

// commonFlags are shared by every subcommand. Values are applied on top of
// defaults, config file and environment only when set on the command line.
type commonFlags struct {
	configPath string
	envFiles   string
	version    bool

	listen        string
	llmBase       string
	llmModel      string
	llmKey        string
	llmTimeout    time.Duration
	fetchTimeout  time.Duration
	userAgent     string
	selectors     string
	scrapeMode    string
	respectRobots bool
	readability   bool
	metricsEnable bool
	logFile       string
	logFormat     string
	verbose       bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", os.Getenv("NEWSBRIEF_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&f.envFiles, "env", ".env", "Comma-separated dotenv files to load; later files override earlier ones")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")

	fs.StringVar(&f.listen, "listen", "", "HTTP listen address (default "+app.DefaultListenAddr+")")
	fs.StringVar(&f.llmBase, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&f.llmModel, "llm.model", "", "Model name")
	fs.StringVar(&f.llmKey, "llm.key", "", "API key for the provider")
	fs.DurationVar(&f.llmTimeout, "llm.timeout", 0, "Timeout for a single generation call")
	fs.DurationVar(&f.fetchTimeout, "fetch.timeout", 0, "Timeout for fetching an article page")
	fs.StringVar(&f.userAgent, "fetch.ua", "", "User-Agent for article fetches")
	fs.StringVar(&f.selectors, "extract.selectors", "", "Semicolon-separated CSS selector paths, tried in order")
	fs.StringVar(&f.scrapeMode, "scrape.mode", "", "What /scrape returns: clean, raw or summary")
	fs.BoolVar(&f.respectRobots, "fetch.robots", false, "Honour robots.txt before fetching")
	fs.BoolVar(&f.readability, "extract.readability", false, "Fall back to readability when no selector matches")
	fs.BoolVar(&f.metricsEnable, "metrics", true, "Expose Prometheus metrics on /metrics")
	fs.StringVar(&f.logFile, "log.file", "", "Also write JSON logs to this file, rotated")
	fs.StringVar(&f.logFormat, "log.format", "", "Console log format: console or json")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")
}

// loadConfig resolves configuration with precedence flags > env > file >
// defaults.
func (f *commonFlags) loadConfig(fs *flag.FlagSet) (app.Config, error) {
	if err := app.LoadEnvFiles(strings.Split(f.envFiles, ",")...); err != nil {
		return app.Config{}, err
	}
	cfg := app.DefaultConfig()
	if strings.TrimSpace(f.configPath) != "" {
		fc, err := app.LoadConfigFile(f.configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return app.Config{}, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "listen":
			cfg.ListenAddr = f.listen
		case "llm.base":
			cfg.LLMBaseURL = f.llmBase
		case "llm.model":
			cfg.LLMModel = f.llmModel
		case "llm.key":
			cfg.LLMAPIKey = f.llmKey
		case "llm.timeout":
			cfg.LLMTimeout = f.llmTimeout
		case "fetch.timeout":
			cfg.FetchTimeout = f.fetchTimeout
		case "fetch.ua":
			cfg.FetchUserAgent = f.userAgent
		case "extract.selectors":
			cfg.Selectors = nil
			for _, s := range strings.Split(f.selectors, ";") {
				if s = strings.TrimSpace(s); s != "" {
					cfg.Selectors = append(cfg.Selectors, s)
				}
			}
		case "scrape.mode":
			cfg.ScrapeMode = strings.ToLower(f.scrapeMode)
		case "fetch.robots":
			cfg.RespectRobots = f.respectRobots
		case "extract.readability":
			cfg.ReadabilityFallback = f.readability
		case "metrics":
			cfg.MetricsEnable = f.metricsEnable
		case "log.file":
			cfg.LogFile = f.logFile
		case "log.format":
			cfg.LogFormat = strings.ToLower(f.logFormat)
		case "v":
			cfg.Verbose = f.verbose
		}
	})
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func serve(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f commonFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if f.version {
		fmt.Fprintln(stderr, app.VersionString())
		return 0
	}
	cfg, err := f.loadConfig(fs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger, closer := app.NewLogger(cfg, stderr)
	defer closer.Close()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init failed")
		return 2
	}
	if err := listenAndServe(ctx, a.HTTPServer(), cfg.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		return 1
	}
	return 0
}

// listenAndServe runs srv until ctx is cancelled, then drains in-flight
// requests for at most drain.
func listenAndServe(ctx context.Context, srv *http.Server, drain time.Duration, logger zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("version", app.BuildVersion).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func summarizeOnce(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f commonFlags
	f.register(fs)
	var (
		articleURL string
		direct     bool
		outPath    string
		pdfPath    string
	)
	fs.StringVar(&articleURL, "url", "", "Article URL to summarize")
	fs.BoolVar(&direct, "direct", false, "Skip the cleaning call and summarize stripped text")
	fs.StringVar(&outPath, "out", "", "Write Markdown to this file instead of stdout")
	fs.StringVar(&pdfPath, "pdf", "", "Also render the brief as PDF to this path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if f.version {
		fmt.Fprintln(stdout, app.VersionString())
		return 0
	}
	if strings.TrimSpace(articleURL) == "" {
		fmt.Fprintln(stderr, "summarize: -url is required")
		return 2
	}
	cfg, err := f.loadConfig(fs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger, closer := app.NewLogger(cfg, stderr)
	defer closer.Close()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init failed")
		return 2
	}
	summary, err := a.Summarize(ctx, articleURL, direct)
	if err != nil {
		logger.Error().Err(err).Msg("summarize failed")
		return 1
	}

	brief := report.Brief{
		URL:         articleURL,
		Summary:     summary,
		Model:       cfg.LLMModel,
		Direct:      direct,
		GeneratedAt: time.Now(),
	}
	md := report.Markdown(brief)
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
			logger.Error().Err(err).Str("path", outPath).Msg("write markdown")
			return 1
		}
		logger.Info().Str("path", outPath).Msg("brief written")
	} else if err := report.WriteMarkdown(stdout, brief); err != nil {
		logger.Error().Err(err).Msg("write markdown")
		return 1
	}
	if pdfPath != "" {
		if err := report.WritePDF(md, pdfPath); err != nil {
			logger.Error().Err(err).Str("path", pdfPath).Msg("write pdf")
			return 1
		}
		logger.Info().Str("path", pdfPath).Msg("pdf written")
	}
	return 0
}
