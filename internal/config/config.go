package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port              int    `yaml:"port"`
	LogLevel          string `yaml:"log_level"`
	LogJSON           bool   `yaml:"log_json"`
	SecureCookies     bool   `yaml:"secure_cookies"`
	JwtTTLHours       int    `yaml:"jwt_ttl_hours"`
	AccessGrantTTLMin int    `yaml:"access_grant_ttl_min"` // lifetime of a password-unlock grant
	HistoryLimit      int    `yaml:"history_limit"`        // max undo snapshots kept per editing session
	AnalyticsFlush    string `yaml:"analytics_flush"`      // cron spec for flushing view/click counters
	MaxBlocks         int    `yaml:"max_blocks"`           // upper bound on blocks per board
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return time.Duration(s.Public.JwtTTLHours) * time.Hour
}

func (s *Config) AccessGrantTTL() time.Duration {
	return time.Duration(s.Public.AccessGrantTTLMin) * time.Minute
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.validate()
	return cfg
}

// validate panics on missing required fields so misconfiguration fails at startup
func (s *Config) validate() {
	if s.Private.JwtKey == "" {
		panic("config: jwt_key is required")
	}
	if s.Public.JwtTTLHours <= 0 {
		panic("config: jwt_ttl_hours is required")
	}
	if s.Public.HistoryLimit <= 0 {
		panic("config: history_limit is required")
	}
	if s.Public.AccessGrantTTLMin <= 0 {
		panic("config: access_grant_ttl_min is required")
	}
}
