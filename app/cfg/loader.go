package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Credentials
	BotToken   string `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token (required)" required:"true"`
	GroqAPIKey string `long:"groq-api-key" env:"GROQ_API_KEY" description:"Groq API key for summarization (required)" required:"true"`

	// Application configuration
	DataDir       string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for persistent state (notice database, subscriptions)"`
	SourcesDir    string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	Port          string `long:"port" env:"PORT" default:"10000" description:"HTTP server port for the webhook listener"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of workers fetching sources within one check cycle"`
	CheckInterval int    `long:"check-interval" env:"CHECK_INTERVAL" default:"300" description:"Scheduled check interval in seconds"`
	HTTPTimeout   int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"15" description:"Per-request HTTP timeout in seconds"`
	RetentionDays int    `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days to keep stored notices before pruning"`
	PollMode      bool   `long:"poll-mode" env:"POLL_MODE" description:"Use Telegram long polling instead of the webhook endpoint"`
	TLSSkipVerify bool   `long:"tls-skip-verify" env:"TLS_SKIP_VERIFY" description:"Skip TLS certificate verification when fetching sources"`

	// Summarization backend
	GroqURL   string `long:"groq-url" env:"GROQ_URL" default:"https://api.groq.com/openai/v1" description:"Base URL of the OpenAI-compatible summarization API"`
	GroqModel string `long:"groq-model" env:"GROQ_MODEL" default:"llama3-70b-8192" description:"Model used for summarization"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"WBSU Notice Bot/5.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Kolkata" description:"Timezone for notice timestamps"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BotToken:      raw.BotToken,
		GroqAPIKey:    raw.GroqAPIKey,
		DataDir:       raw.DataDir,
		SourcesDir:    raw.SourcesDir,
		Port:          raw.Port,
		WorkerCount:   raw.WorkerCount,
		CheckInterval: raw.CheckInterval,
		HTTPTimeout:   raw.HTTPTimeout,
		RetentionDays: raw.RetentionDays,
		PollMode:      raw.PollMode,
		TLSSkipVerify: raw.TLSSkipVerify,
		GroqURL:       raw.GroqURL,
		GroqModel:     raw.GroqModel,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set installs a configuration, replacing any loaded one. Used by tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
