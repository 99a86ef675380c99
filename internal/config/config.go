package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the matchcast binary.
// Values are layered: defaults, then the YAML file, then .env, then MATCHCAST_* variables.
type Config struct {
	DataDir          string `yaml:"data_dir"`            // directory of per-team CSV files
	ModelsPath       string `yaml:"models_path"`         // trained bundle location
	ResultFile       string `yaml:"result_file"`         // where the CLI writes its text report
	RecentWindow     int    `yaml:"recent_window"`       // matches considered as recent form
	HeadToHeadWindow int    `yaml:"head_to_head_window"` // meetings listed in head-to-head

	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Training TrainingConfig `yaml:"training"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // "", "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr          string  `yaml:"addr"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	ReadTimeout   int     `yaml:"read_timeout_seconds"`
	WriteTimeout  int     `yaml:"write_timeout_seconds"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Output   string `yaml:"output"` // c, f or b
	File     string `yaml:"file"`
	DateTime bool   `yaml:"datetime"`
}

type TrainingConfig struct {
	Iterations      int     `yaml:"iterations"`
	LearningRate    float64 `yaml:"learning_rate"`
	L2              float64 `yaml:"l2"`
	RidgeL2         float64 `yaml:"ridge_l2"`
	SelectorMax     int     `yaml:"selector_max_features"`
	HoldoutFraction float64 `yaml:"holdout_fraction"`
}

const envPrefix = "MATCHCAST_"

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		DataDir:          "stats",
		ModelsPath:       "models/bundle.json",
		ResultFile:       "result.txt",
		RecentWindow:     5,
		HeadToHeadWindow: 5,
		Server: ServerConfig{
			Addr:          ":8080",
			RatePerSecond: 5,
			Burst:         10,
			ReadTimeout:   10,
			WriteTimeout:  30,
		},
		Log: LogConfig{
			Level:  "info",
			Output: "c",
			File:   "/tmp/matchcast.log",
		},
		Training: TrainingConfig{
			Iterations:      500,
			LearningRate:    0.1,
			L2:              0.01,
			RidgeL2:         1.0,
			SelectorMax:     8,
			HoldoutFraction: 0.2,
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a .env file in the
// working directory and the process environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// a missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = envStr("DATA_DIR", c.DataDir)
	c.ModelsPath = envStr("MODELS_PATH", c.ModelsPath)
	c.ResultFile = envStr("RESULT_FILE", c.ResultFile)
	c.RecentWindow = envInt("RECENT_WINDOW", c.RecentWindow)
	c.HeadToHeadWindow = envInt("HEAD_TO_HEAD_WINDOW", c.HeadToHeadWindow)

	c.Store.Driver = envStr("STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = envStr("STORE_DSN", c.Store.DSN)

	c.Server.Addr = envStr("SERVER_ADDR", c.Server.Addr)
	c.Server.RatePerSecond = envFloat("SERVER_RATE_PER_SECOND", c.Server.RatePerSecond)
	c.Server.Burst = envInt("SERVER_BURST", c.Server.Burst)

	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
	c.Log.Output = envStr("LOG_OUTPUT", c.Log.Output)
	c.Log.File = envStr("LOG_FILE", c.Log.File)
	c.Log.DateTime = envStr("LOG_DATETIME", strconv.FormatBool(c.Log.DateTime)) == "true"

	c.Training.Iterations = envInt("TRAINING_ITERATIONS", c.Training.Iterations)
	c.Training.LearningRate = envFloat("TRAINING_LEARNING_RATE", c.Training.LearningRate)
}

// Validate ensures all configuration values are within reasonable ranges
func (c *Config) Validate() error {
	if c.RecentWindow < 1 {
		return fmt.Errorf("recent_window must be at least 1, got: %d", c.RecentWindow)
	}
	if c.HeadToHeadWindow < 1 {
		return fmt.Errorf("head_to_head_window must be at least 1, got: %d", c.HeadToHeadWindow)
	}
	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver must be empty, sqlite or postgres, got: %q", c.Store.Driver)
	}
	if c.Store.Driver != "" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %s", c.Store.Driver)
	}
	if c.Server.RatePerSecond <= 0 {
		return fmt.Errorf("server.rate_per_second must be positive, got: %f", c.Server.RatePerSecond)
	}
	if c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1, got: %d", c.Server.Burst)
	}
	if len(c.Log.Output) != 1 || !strings.ContainsAny(c.Log.Output, "cfb") {
		return fmt.Errorf("log.output must be one of c, f or b, got: %q", c.Log.Output)
	}
	if c.Training.Iterations < 1 {
		return fmt.Errorf("training.iterations must be at least 1, got: %d", c.Training.Iterations)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got: %f", c.Training.LearningRate)
	}
	if c.Training.SelectorMax < 1 {
		return fmt.Errorf("training.selector_max_features must be at least 1, got: %d", c.Training.SelectorMax)
	}
	if c.Training.HoldoutFraction < 0 || c.Training.HoldoutFraction >= 1 {
		return fmt.Errorf("training.holdout_fraction must be in [0, 1), got: %f", c.Training.HoldoutFraction)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
