package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marketpulse/finrag/internal/audit"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Citations CitationsConfig `mapstructure:"citations"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// CorpusConfig locates the cleaned news dataset.
type CorpusConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai or mock
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RetrievalConfig tunes the ranking engine.
type RetrievalConfig struct {
	TopK   int    `mapstructure:"top_k"`
	Scorer string `mapstructure:"scorer"` // terms or bleve
}

// CitationsConfig bounds the citation list.
type CitationsConfig struct {
	MaxItems    int `mapstructure:"max_items"`
	MaxBackfill int `mapstructure:"max_backfill"`
}

// AuditConfig points at the interaction log. "" or ":memory:" disables it.
type AuditConfig struct {
	LogPath string `mapstructure:"log_path"`
}

// LoadConfig reads configuration from file and FINRAG_* environment
// variables. A missing file is fine when no explicit path was given; the
// defaults describe a fully offline deployment.
func LoadConfig(path string) *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("corpus.path", "stock_news.cleaned.json")
	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("retrieval.top_k", 8)
	v.SetDefault("retrieval.scorer", "terms")
	v.SetDefault("citations.max_items", 3)
	v.SetDefault("citations.max_backfill", 1)
	v.SetDefault("audit.log_path", audit.DefaultPath())

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FINRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &cfg
}
