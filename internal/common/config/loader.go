package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<env>.yaml on top and lets
// environment variables override any key (dots become underscores).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json_ui.enabled", true)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("orders.persist", false)
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally provided under
// their own environment variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Agent.APIKey == "" {
		for _, name := range []string{"GENAI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.Agent.APIKey = val
				break
			}
		}
	}
	if val := os.Getenv("GOOGLE_GEMINI_MODEL"); val != "" && cfg.Agent.Model == "" {
		cfg.Agent.Model = val
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "swaad-chat"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.Agent.BaseURL == "" {
		cfg.Agent.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = "gemini-2.5-flash"
	}
	if cfg.Agent.Temperature == 0 {
		cfg.Agent.Temperature = 0.7
	}
	if cfg.Agent.MaxTokens == 0 {
		cfg.Agent.MaxTokens = 1024
	}
	if cfg.Agent.MaxToolSteps == 0 {
		cfg.Agent.MaxToolSteps = 6
	}
	if cfg.Agent.Timeout == 0 {
		cfg.Agent.Timeout = 60000
	}

	if len(cfg.JSONUI.Categories) == 0 {
		cfg.JSONUI.Categories = []string{"North Indian", "South Indian", "Street Food"}
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = "memory"
	}
	if cfg.History.MaxMessages == 0 {
		cfg.History.MaxMessages = 20
	}
	if cfg.History.TTL == 0 {
		cfg.History.TTL = 86400
	}
	if cfg.History.KeyPrefix == "" {
		cfg.History.KeyPrefix = "chat:history:"
	}

	if cfg.Menu.Source == "" {
		cfg.Menu.Source = "file"
	}
	if cfg.Menu.DatasetPath == "" {
		cfg.Menu.DatasetPath = "data/foods.json"
	}
	if cfg.Menu.SearchBackend == "" {
		cfg.Menu.SearchBackend = "memory"
	}
	if cfg.Menu.Index == "" {
		cfg.Menu.Index = "menu_items"
	}
	if cfg.Menu.MaxResults == 0 {
		cfg.Menu.MaxResults = 8
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "memory"
	}
	if cfg.RateLimit.SessionRequests == 0 {
		cfg.RateLimit.SessionRequests = 10
	}
	if cfg.RateLimit.GlobalRequests == 0 {
		cfg.RateLimit.GlobalRequests = 30
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 60000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.Orders.PaymentMethod == "" {
		cfg.Orders.PaymentMethod = "cod"
	}
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-south-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig checks that every selected backend has what it needs.
func validateConfig(cfg *Config) error {
	switch cfg.History.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for redis history")
		}
	default:
		return fmt.Errorf("history.backend must be memory or redis, got %q", cfg.History.Backend)
	}

	switch cfg.RateLimit.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for redis rate limiting")
		}
	default:
		return fmt.Errorf("rate_limit.backend must be memory or redis, got %q", cfg.RateLimit.Backend)
	}

	switch cfg.Menu.Source {
	case "file":
		if cfg.Menu.DatasetPath == "" {
			return fmt.Errorf("menu.dataset_path is required")
		}
	case "postgres":
		if !cfg.Database.Postgres.Enabled() {
			return fmt.Errorf("database.postgres.host is required for postgres menu source")
		}
	default:
		return fmt.Errorf("menu.source must be file or postgres, got %q", cfg.Menu.Source)
	}

	if cfg.Menu.SearchBackend == "elasticsearch" && cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.Orders.Persist && !cfg.Database.Postgres.Enabled() {
		return fmt.Errorf("database.postgres.host is required when orders.persist is set")
	}

	if cfg.Orders.PaymentMethod != "cod" {
		return fmt.Errorf("orders.payment_method only supports cod, got %q", cfg.Orders.PaymentMethod)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Agent.MaxToolSteps < 1 {
		return fmt.Errorf("agent.max_tool_steps must be positive")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}
