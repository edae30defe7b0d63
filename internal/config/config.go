package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Accounts  AccountsConfig  `yaml:"accounts"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Notify    NotifyConfig    `yaml:"notify"`
}

type AccountsConfig struct {
	Path string `yaml:"path"`
}

type SchedulerConfig struct {
	CycleHours     int `yaml:"cycleHours"`
	AccountPauseMs int `yaml:"accountPauseMs"`
}

func (c SchedulerConfig) Cycle() time.Duration {
	if c.CycleHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.CycleHours) * time.Hour
}

func (c SchedulerConfig) AccountPause() time.Duration {
	if c.AccountPauseMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.AccountPauseMs) * time.Millisecond
}

type StorageConfig struct {
	SQLitePath string `yaml:"sqlitePath"`
}

// ServerConfig describes the optional local status API. An empty addr
// leaves the listener disabled.
type ServerConfig struct {
	Addr string     `yaml:"addr"`
	Cors CorsConfig `yaml:"cors"`
}

type CorsConfig struct {
	AllowOrigins     []string `yaml:"allowOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
}

type ProviderConfig struct {
	BaseURL      string           `yaml:"baseURL"`
	TimeoutMs    int              `yaml:"timeoutMs"`
	Retry        ProviderRetryCfg `yaml:"retry"`
	UserAgent    string           `yaml:"userAgent"`
	ReferralCode string           `yaml:"referralCode"`
}

// ProviderRetryCfg controls fixed-wait retries. Count is the number of
// retries after the first attempt, so count=4 means up to 5 requests.
type ProviderRetryCfg struct {
	Count  int `yaml:"count"`
	WaitMs int `yaml:"waitMs"`
}

func (c ProviderConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c ProviderRetryCfg) Wait() time.Duration {
	if c.WaitMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.WaitMs) * time.Millisecond
}

type NotifyConfig struct {
	Email EmailConfig `yaml:"email"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	AuthCode string `yaml:"authCode"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Accounts.Path == "" {
		c.Accounts.Path = "./accounts.txt"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "./data/checkbot.db"
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://node.securitylabs.xyz"
	}
	// count=0 picks the default; a negative count disables retries.
	if c.Provider.Retry.Count == 0 {
		c.Provider.Retry.Count = 4
	}
	if c.Provider.Retry.Count < 0 {
		c.Provider.Retry.Count = 0
	}
}

func (c Config) validate() error {
	if c.Accounts.Path == "" {
		return errors.New("accounts.path is required")
	}
	if c.Provider.BaseURL == "" {
		return errors.New("provider.baseURL is required")
	}
	return nil
}
