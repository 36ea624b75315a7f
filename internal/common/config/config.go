package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Agent         AgentConfig             `mapstructure:"agent"`
	JSONUI        JSONUIConfig            `mapstructure:"json_ui"`
	History       HistoryConfig           `mapstructure:"history"`
	Menu          MenuConfig              `mapstructure:"menu"`
	Database      DatabaseConfig          `mapstructure:"database"`
	RateLimit     RateLimitConfig         `mapstructure:"rate_limit"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Orders        OrdersConfig            `mapstructure:"orders"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string   `mapstructure:"address"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// AgentConfig configures the tool-calling LLM runtime.
type AgentConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	MaxToolSteps    int     `mapstructure:"max_tool_steps"`
	MaxPromptTokens int     `mapstructure:"max_prompt_tokens"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
}

type JSONUIConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Categories []string `mapstructure:"categories"`
}

// HistoryConfig selects where per-session conversation windows live.
type HistoryConfig struct {
	Backend     string `mapstructure:"backend"` // memory | redis
	MaxMessages int    `mapstructure:"max_messages"`
	TTL         int    `mapstructure:"ttl"` // seconds
	KeyPrefix   string `mapstructure:"key_prefix"`
}

type MenuConfig struct {
	Source        string `mapstructure:"source"` // file | postgres
	DatasetPath   string `mapstructure:"dataset_path"`
	SearchBackend string `mapstructure:"search_backend"` // memory | elasticsearch
	Index         string `mapstructure:"index"`
	MaxResults    int    `mapstructure:"max_results"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether a postgres host has been configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig mirrors the per-session and global fixed windows.
type RateLimitConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Backend         string `mapstructure:"backend"` // memory | redis
	SessionRequests int    `mapstructure:"session_requests"`
	GlobalRequests  int    `mapstructure:"global_requests"`
	Window          int    `mapstructure:"window"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type OrdersConfig struct {
	Persist       bool   `mapstructure:"persist"`
	PaymentMethod string `mapstructure:"payment_method"`
}

// NotificationConfig holds settings for order confirmations.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
