package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/FranksOps/newsbrief/internal/fingerprint"
	"github.com/FranksOps/newsbrief/internal/storage/tables"
)

var (
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is required")
	ErrInvalidFormat = errors.New("invalid EXPORT_FORMAT")
)

type Config struct {
	Search     SearchConfig
	Export     ExportConfig
	LLM        LLMConfig
	Newsletter NewsletterConfig
	HTTP       HTTPConfig
	Log        LogConfig
	Metrics    MetricsConfig
}

// SearchConfig is the fixed query the Collector sends upstream. Apart from
// Endpoint (overridden in tests) none of it is read from the environment.
type SearchConfig struct {
	Endpoint       string
	Referer        string
	Accept         string
	AcceptLanguage string

	TargetCount int
	Days        int
	Sort        int // 0: relevance
	Photo       int // 3: items with photos
	Field       int // 0: all sections
	OfficeType  int // 0: primary desktop publishers

	MinDelay time.Duration
	MaxDelay time.Duration
}

type ExportConfig struct {
	Dir    string
	Prefix string
	Format string
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type SocialLink struct {
	Platform string
	URL      string
}

type NewsletterConfig struct {
	Name            string
	Company         string
	LogoURL         string
	WebsiteURL      string
	SubscriptionURL string
	Social          []SocialLink
	DefaultTopic    string
}

type HTTPConfig struct {
	Timeout    time.Duration
	TLSProfile fingerprint.Profile
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Port int
}

func DefaultSearch() SearchConfig {
	return SearchConfig{
		Endpoint:       "https://search.naver.com/search.naver",
		Referer:        "https://search.naver.com/search.naver",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage: "ko-KR,ko;q=0.8,en-US;q=0.5,en;q=0.3",
		TargetCount:    100,
		Days:           1,
		Sort:           0,
		Photo:          3,
		Field:          0,
		OfficeType:     0,
		MinDelay:       500 * time.Millisecond,
		MaxDelay:       1500 * time.Millisecond,
	}
}

func DefaultNewsletter() NewsletterConfig {
	return NewsletterConfig{
		Name:            "Daily News Briefing",
		Company:         "AI News Service",
		LogoURL:         "https://your-logo-url.com/logo.png",
		WebsiteURL:      "https://your-website.com",
		SubscriptionURL: "https://your-website.com/subscribe",
		Social: []SocialLink{
			{Platform: "Twitter", URL: "https://twitter.com/your-handle"},
			{Platform: "Facebook", URL: "https://facebook.com/your-page"},
			{Platform: "LinkedIn", URL: "https://linkedin.com/company/your-company"},
		},
		DefaultTopic: "issue",
	}
}

// Load reads the environment (populate it from .env first if wanted) and
// combines it with the compiled-in search and newsletter settings.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_timeout_sec", 120)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_port", 0)
	v.SetDefault("output_dir", ".")
	v.SetDefault("export_format", tables.FormatXLSX)
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("tls_profile", string(fingerprint.ProfileChrome))

	profile, err := fingerprint.ParseProfile(v.GetString("tls_profile"))
	if err != nil {
		return nil, fmt.Errorf("TLS_PROFILE: %w", err)
	}

	cfg := &Config{
		Search: DefaultSearch(),
		Export: ExportConfig{
			Dir:    v.GetString("output_dir"),
			Prefix: "navernews",
			Format: v.GetString("export_format"),
		},
		LLM: LLMConfig{
			APIKey:      v.GetString("openai_api_key"),
			BaseURL:     v.GetString("openai_base_url"),
			Model:       v.GetString("openai_model"),
			Temperature: 0.5,
			MaxTokens:   1500,
			Timeout:     time.Duration(v.GetInt("openai_timeout_sec")) * time.Second,
		},
		Newsletter: DefaultNewsletter(),
		HTTP: HTTPConfig{
			Timeout:    time.Duration(v.GetInt("http_timeout_sec")) * time.Second,
			TLSProfile: profile,
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Metrics: MetricsConfig{
			Port: v.GetInt("metrics_port"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !tables.ValidFormat(c.Export.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Export.Format)
	}
	if c.Search.TargetCount <= 0 {
		return errors.New("search target count must be positive")
	}
	return nil
}

// RequireAPIKey reports ErrMissingAPIKey when no generation credential is set.
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
