package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-rota/pkg/core/engine"
	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// GenerationConfig controls the restart search
type GenerationConfig struct {
	Iterations       int            `yaml:"iterations" validate:"min=1"`
	ForcedIterations int            `yaml:"forcedIterations" validate:"min=1"`
	Parallelism      int            `yaml:"parallelism" validate:"min=1"`
	TimeBudget       time.Duration  `yaml:"timeBudget" validate:"min=0"`
	LookbackDays     int            `yaml:"lookbackDays" validate:"min=1"`
	Weights          engine.Weights `yaml:"weights"`
}

// DefaultsConfig is the site-wide fallback used when neither the worker nor the
// global_settings table sets a value
type DefaultsConfig struct {
	MaxConsecutive       int     `yaml:"maxConsecutive" validate:"min=1"`
	MinDaysOff           int     `yaml:"minDaysOff" validate:"min=0"`
	NightPreference      float64 `yaml:"nightPreference" validate:"gte=0"`
	TargetShifts         int     `yaml:"targetShifts" validate:"min=0"`
	TargetVariance       int     `yaml:"targetVariance" validate:"min=0"`
	PreferredBlockLength int     `yaml:"preferredBlockLength" validate:"min=1"`
}

// WorkerSettings converts the defaults to model settings
func (d DefaultsConfig) WorkerSettings() model.WorkerSettings {
	return model.WorkerSettings{
		MaxConsecutive:       d.MaxConsecutive,
		MinDaysOff:           d.MinDaysOff,
		NightPreference:      d.NightPreference,
		TargetShifts:         d.TargetShifts,
		TargetVariance:       d.TargetVariance,
		PreferredBlockLength: d.PreferredBlockLength,
	}
}

// PublishConfig defines where published schedules are written
type PublishConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL    string           `yaml:"databaseURL,omitempty"`
	RedisAddr      string           `yaml:"redisAddr,omitempty"`
	LockTTL        time.Duration    `yaml:"lockTTL" validate:"min=0"`
	HTTPAddr       string           `yaml:"httpAddr" validate:"required"`
	AllowedOrigins []string         `yaml:"allowedOrigins,omitempty"`
	Generation     GenerationConfig `yaml:"generation"`
	Defaults       DefaultsConfig   `yaml:"defaults"`
	Publish        PublishConfig    `yaml:"publish"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used for any field not set in the config file
func Default() *Config {
	defaults := model.DefaultWorkerSettings()
	return &Config{
		LockTTL:        5 * time.Minute,
		HTTPAddr:       ":8080",
		AllowedOrigins: []string{"*"},
		Generation: GenerationConfig{
			Iterations:       engine.DefaultIterations,
			ForcedIterations: engine.DefaultIterations,
			Parallelism:      engine.DefaultParallelism,
			LookbackDays:     7,
			Weights:          engine.DefaultWeights(),
		},
		Defaults: DefaultsConfig{
			MaxConsecutive:       defaults.MaxConsecutive,
			MinDaysOff:           defaults.MinDaysOff,
			NightPreference:      defaults.NightPreference,
			TargetShifts:         defaults.TargetShifts,
			TargetVariance:       defaults.TargetVariance,
			PreferredBlockLength: defaults.PreferredBlockLength,
		},
	}
}

// LoadWithEnv loads and validates the configuration from shift_rota_config.<env>.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Fields missing from the file keep their defaults. DATABASE_URL and REDIS_ADDR
// environment variables override the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from .env files if present.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	w := cfg.Generation.Weights
	if w.UnfilledSlot > w.ForcedAssignment {
		return fmt.Errorf("config validation failed: generation.weights.unfilledSlot (%d) must not be greater than forcedAssignment (%d)",
			w.UnfilledSlot, w.ForcedAssignment)
	}
	if w.MarginalRestDays < 0 {
		return fmt.Errorf("config validation failed: generation.weights.marginalRestDays must not be negative")
	}

	return nil
}

// findConfigFile searches for shift_rota_config.<env>.yaml in current directory and home directory
func findConfigFile(env string) (string, error) {
	name := "shift_rota_config.yaml"
	if env != "" {
		name = "shift_rota_config." + env + ".yaml"
	}
	return findFile(name)
}

// findFile returns name if it exists in the current directory, else the same name in the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
