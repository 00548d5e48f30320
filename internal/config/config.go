// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	OCR        OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	Routing    RoutingConfig    `yaml:"routing" mapstructure:"routing"`
	Confidence ConfidenceConfig `yaml:"confidence" mapstructure:"confidence"`
	Health     HealthConfig     `yaml:"health" mapstructure:"health"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// MonitoringConfig configures alert thresholds and delivery.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	CostThresholdUSD     float64 `yaml:"cost_threshold_usd" mapstructure:"cost_threshold_usd"`
	ReviewRateThreshold  float64 `yaml:"review_rate_threshold" mapstructure:"review_rate_threshold"`
}

// StoreConfig configures the scan journal backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite or memory
	Path   string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Google Generative Language API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OCRConfig configures the local tesseract engine.
type OCRConfig struct {
	Languages []string `yaml:"languages" mapstructure:"languages"`
}

// RoutingConfig holds the quality-score thresholds that pick a provider
// chain tier.
type RoutingConfig struct {
	HighThreshold int `yaml:"high_threshold" mapstructure:"high_threshold"`
	LowThreshold  int `yaml:"low_threshold" mapstructure:"low_threshold"`
}

// ConfidenceConfig holds the confidence-score thresholds.
type ConfidenceConfig struct {
	ReviewThreshold float64 `yaml:"review_threshold" mapstructure:"review_threshold"`
	HighTier        float64 `yaml:"high_tier" mapstructure:"high_tier"`
	MediumTier      float64 `yaml:"medium_tier" mapstructure:"medium_tier"`
}

// HealthConfig holds the consecutive-failure thresholds for provider health
// transitions.
type HealthConfig struct {
	DegradedAfter int `yaml:"degraded_after" mapstructure:"degraded_after"`
	DownAfter     int `yaml:"down_after" mapstructure:"down_after"`
}

// PricingConfig holds per-model token pricing (USD per million tokens).
type PricingConfig struct {
	Models map[string]ModelPricing `yaml:"models" mapstructure:"models"`
}

// ModelPricing holds one model's token rates.
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ScanConfig configures scan execution.
type ScanConfig struct {
	MaxConcurrent     int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	ProviderRateLimit float64 `yaml:"provider_rate_limit" mapstructure:"provider_rate_limit"` // calls/sec per cloud provider
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DOCSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "docscan.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("ocr.languages", []string{"eng", "tur"})
	v.SetDefault("routing.high_threshold", 80)
	v.SetDefault("routing.low_threshold", 50)
	v.SetDefault("confidence.review_threshold", 70)
	v.SetDefault("confidence.high_tier", 85)
	v.SetDefault("confidence.medium_tier", 70)
	v.SetDefault("health.degraded_after", 1)
	v.SetDefault("health.down_after", 3)
	v.SetDefault("scan.max_concurrent", 4)
	v.SetDefault("scan.provider_rate_limit", 2)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.review_rate_threshold", 0.5)
	v.SetDefault("pricing.models", map[string]ModelPricing{
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"gpt-4o":                     {Input: 2.50, Output: 10.00},
		"gemini-2.0-flash":           {Input: 0.10, Output: 0.40},
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks configuration consistency. Missing provider keys are not an
// error since the local OCR engine needs none; they just shrink the usable
// chain.
func (c *Config) Validate() error {
	var problems []string

	if c.Routing.LowThreshold < 0 || c.Routing.HighThreshold > 100 {
		problems = append(problems, "routing thresholds must lie in [0,100]")
	}
	if c.Routing.LowThreshold >= c.Routing.HighThreshold {
		problems = append(problems, "routing.low_threshold must be below routing.high_threshold")
	}
	if c.Confidence.MediumTier > c.Confidence.HighTier {
		problems = append(problems, "confidence.medium_tier must not exceed confidence.high_tier")
	}
	if c.Health.DegradedAfter < 1 || c.Health.DownAfter < c.Health.DegradedAfter {
		problems = append(problems, "health thresholds must satisfy 1 <= degraded_after <= down_after")
	}
	if c.Scan.MaxConcurrent < 1 || c.Scan.MaxConcurrent > 64 {
		problems = append(problems, "scan.max_concurrent must be between 1 and 64")
	}
	if c.Scan.ProviderRateLimit < 0 {
		problems = append(problems, "scan.provider_rate_limit must be >= 0")
	}
	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		problems = append(problems, "store.driver must be sqlite or memory")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
