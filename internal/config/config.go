package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Rules     RulesConfig
	Inventory InventoryConfig
	Pool      PoolConfig
	Run       RunConfig
	Scoring   ScoringConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

type RulesConfig struct {
	Path string
}

type InventoryConfig struct {
	Path string
}

type PoolConfig struct {
	MinSessions   int
	MaxSessions   int
	IdleTTL       time.Duration
	BorrowTimeout time.Duration
}

type RunConfig struct {
	WorkerCount     int
	CheckTimeout    time.Duration
	ConnectAttempts int
	ConnectBackoff  time.Duration
	ConnectRate     float64
	ConnectBurst    int
}

type ScoringConfig struct {
	PassThreshold float64
}

type MetricsConfig struct {
	ListenAddr string
}

type LogConfig struct {
	Dir string
}

func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("DBGUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("rules.path", "validation_rules.yaml")
	v.SetDefault("inventory.path", "databases.yaml")
	v.SetDefault("pool.minsessions", 1)
	v.SetDefault("pool.maxsessions", 4)
	v.SetDefault("pool.idlettl", "60s")
	v.SetDefault("pool.borrowtimeout", "15s")
	v.SetDefault("run.workercount", 4)
	v.SetDefault("run.checktimeout", "30s")
	v.SetDefault("run.connectattempts", 3)
	v.SetDefault("run.connectbackoff", "500ms")
	v.SetDefault("run.connectrate", 0)
	v.SetDefault("run.connectburst", 1)
	v.SetDefault("scoring.passthreshold", 80)
	v.SetDefault("log.dir", "logs")

	// Defaults form a complete configuration; only an explicitly named file
	// is required to exist.
	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Pool.MaxSessions < 1 {
		return fmt.Errorf("pool.maxsessions must be at least 1, got %d", c.Pool.MaxSessions)
	}
	if c.Pool.MinSessions < 0 || c.Pool.MinSessions > c.Pool.MaxSessions {
		return fmt.Errorf("pool.minsessions must be between 0 and pool.maxsessions, got %d", c.Pool.MinSessions)
	}
	if c.Run.WorkerCount < 1 {
		return fmt.Errorf("run.workercount must be at least 1, got %d", c.Run.WorkerCount)
	}
	if c.Run.ConnectAttempts < 1 {
		return fmt.Errorf("run.connectattempts must be at least 1, got %d", c.Run.ConnectAttempts)
	}
	if c.Scoring.PassThreshold < 0 || c.Scoring.PassThreshold > 100 {
		return fmt.Errorf("scoring.passthreshold must be within 0-100, got %v", c.Scoring.PassThreshold)
	}
	return nil
}
