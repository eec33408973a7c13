package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	rcron "github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimezone      = "Asia/Seoul"
	DefaultWindow        = 5 * time.Minute
	DefaultLookbackDays  = 3
	DefaultMinCalm       = 10
	DefaultRiskCron      = "0 0 1 * * *"
	DefaultHTTPAddr      = ":8080"
	DefaultRedisKey      = "calmtrace:samples"
	DefaultRedisBlock    = 5 * time.Second
	DefaultIngestWorkers = 4

	envPrefix = "CALMTRACE_"
)

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Block    time.Duration `yaml:"block"`
}

type BackupConfig struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

type Config struct {
	DataDir              string        `yaml:"data_dir"`
	DBPath               string        `yaml:"db_path"`
	Timezone             string        `yaml:"timezone"`
	PostWindow           time.Duration `yaml:"post_window"`
	DedupWindow          time.Duration `yaml:"dedup_window"`
	BaselineLookbackDays int           `yaml:"baseline_lookback_days"`
	MinCalmSamples       int           `yaml:"min_calm_samples"`
	RiskCron             string        `yaml:"risk_cron"`
	HTTPAddr             string        `yaml:"http_addr"`
	IngestWorkers        int           `yaml:"ingest_workers"`
	LogLevel             string        `yaml:"log_level"`
	LogFormat            string        `yaml:"log_format"`
	Redis                RedisConfig   `yaml:"redis"`
	Backup               BackupConfig  `yaml:"backup"`
}

func Default(dataDir string) Config {
	return Config{
		DataDir:              dataDir,
		DBPath:               filepath.Join(dataDir, "calmtrace.db"),
		Timezone:             DefaultTimezone,
		PostWindow:           DefaultWindow,
		DedupWindow:          DefaultWindow,
		BaselineLookbackDays: DefaultLookbackDays,
		MinCalmSamples:       DefaultMinCalm,
		RiskCron:             DefaultRiskCron,
		HTTPAddr:             DefaultHTTPAddr,
		IngestWorkers:        DefaultIngestWorkers,
		LogLevel:             "info",
		LogFormat:            "text",
		Redis:                RedisConfig{Key: DefaultRedisKey, Block: DefaultRedisBlock},
		Backup:               BackupConfig{Key: "calmtrace/calmtrace.db"},
	}
}

// Load layers defaults, the YAML file, .env and CALMTRACE_* variables, in
// that order. An empty file means <dataDir>/calmtrace.yaml, which may be
// absent.
func Load(dataDir, file string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)

	explicit := file != ""
	if !explicit {
		file = filepath.Join(dataDir, "calmtrace.yaml")
	}
	raw, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "calmtrace.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}
	num := func(name string, dst *int) error {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("DB_PATH", &cfg.DBPath)
	str("TIMEZONE", &cfg.Timezone)
	str("RISK_CRON", &cfg.RiskCron)
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("REDIS_KEY", &cfg.Redis.Key)
	str("BACKUP_BUCKET", &cfg.Backup.Bucket)
	str("BACKUP_KEY", &cfg.Backup.Key)
	for name, dst := range map[string]*time.Duration{
		"POST_WINDOW":  &cfg.PostWindow,
		"DEDUP_WINDOW": &cfg.DedupWindow,
		"REDIS_BLOCK":  &cfg.Redis.Block,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}
	for name, dst := range map[string]*int{
		"BASELINE_LOOKBACK_DAYS": &cfg.BaselineLookbackDays,
		"MIN_CALM_SAMPLES":       &cfg.MinCalmSamples,
		"INGEST_WORKERS":         &cfg.IngestWorkers,
		"REDIS_DB":               &cfg.Redis.DB,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.PostWindow <= 0 {
		return fmt.Errorf("post_window must be positive")
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("dedup_window must be positive")
	}
	if c.BaselineLookbackDays < 1 {
		return fmt.Errorf("baseline_lookback_days must be at least 1")
	}
	if c.MinCalmSamples < 1 {
		return fmt.Errorf("min_calm_samples must be at least 1")
	}
	if c.IngestWorkers < 1 {
		return fmt.Errorf("ingest_workers must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	parser := rcron.NewParser(rcron.Second | rcron.Minute | rcron.Hour | rcron.Dom | rcron.Month | rcron.Dow | rcron.Descriptor)
	if _, err := parser.Parse(c.RiskCron); err != nil {
		return fmt.Errorf("risk_cron: %w", err)
	}
	return nil
}

// Location resolves the timezone that defines calendar days.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
