package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DBDriver    string `yaml:"db_driver" validate:"oneof=sqlite postgres"`
	DBPath      string `yaml:"db_path" validate:"required_if=DBDriver sqlite"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=DBDriver postgres"`

	RawDataPath string `yaml:"raw_data_path" validate:"required"`
	DatasetPath string `yaml:"dataset_path" validate:"required"`
	ArtifactDir string `yaml:"artifact_dir" validate:"required"`

	ReportOutputDir string `yaml:"report_output_dir" validate:"required"`
	ReportTopN      int    `yaml:"report_top_n" validate:"gt=0"` // 0 means unset
	ReportSchedule  string `yaml:"report_schedule"`

	SlackBotToken              string `yaml:"slack_bot_token"`
	ReportChannelID            string `yaml:"report_channel_id"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds" validate:"gte=5"`

	HTTPAddr  string `yaml:"http_addr" validate:"required"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// Unset seeds draw a fresh random seed per prediction.
	SplitSeed  *uint64 `yaml:"split_seed"`
	TreeSeed   *uint64 `yaml:"tree_seed"`
	ForestSeed uint64  `yaml:"forest_seed"`

	Timezone string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads .env, then config.yaml (or CONFIG_PATH), then environment
// overrides, and validates the result.
func Load() (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	envOverride(&cfg.DBDriver, "DB_DRIVER")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.RawDataPath, "RAW_DATA_PATH")
	envOverride(&cfg.DatasetPath, "DATASET_PATH")
	envOverride(&cfg.ArtifactDir, "ARTIFACT_DIR")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverrideAllowEmpty(&cfg.ReportSchedule, "REPORT_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.LogFormat, "LOG_FORMAT")
	envOverride(&cfg.Timezone, "TIMEZONE")

	var errs []error
	errs = append(errs,
		envOverrideInt(&cfg.ReportTopN, "REPORT_TOP_N"),
		envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"),
		envOverrideSeed(&cfg.SplitSeed, "SPLIT_SEED"),
		envOverrideSeed(&cfg.TreeSeed, "TREE_SEED"),
	)
	if val := os.Getenv("FOREST_SEED"); val != "" {
		parsed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid FOREST_SEED '%s': %w", val, err))
		}
		cfg.ForestSeed = parsed
	}
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverSQLite
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./deskinsight.db"
	}
	if cfg.RawDataPath == "" {
		cfg.RawDataPath = "./data/data.json"
	}
	if cfg.DatasetPath == "" {
		cfg.DatasetPath = "./data/data_clasified.json"
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = "./artifacts"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.ReportTopN == 0 {
		cfg.ReportTopN = 10
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return cfg, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideSeed(field **uint64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = &parsed
	}
	return nil
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

func (c Config) ExternalHTTPTimeout() time.Duration {
	return time.Duration(c.ExternalHTTPTimeoutSeconds) * time.Second
}
