package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// StaffingOverride raises or lowers the required staff count for the dates
// matched by its recurrence rule. An empty StoreID applies to every store.
type StaffingOverride struct {
	RRule         string `yaml:"rrule" validate:"required"`
	StoreID       string `yaml:"storeID,omitempty"`
	RequiredStaff int    `yaml:"requiredStaff" validate:"min=0"`
}

// Config represents the engine configuration
type Config struct {
	DefaultRequiredStaff int                `yaml:"defaultRequiredStaff" validate:"min=1"`
	DefaultContractHours float64            `yaml:"defaultContractHours" validate:"gt=0"`
	SnapshotCapacity     int                `yaml:"snapshotCapacity,omitempty" validate:"omitempty,min=1"`
	ValidationCacheSize  int                `yaml:"validationCacheSize,omitempty" validate:"omitempty,min=1"`
	StaffingOverrides    []StaffingOverride `yaml:"staffingOverrides,omitempty" validate:"dive"`
	ManagerEmails        map[string]string  `yaml:"managerEmails,omitempty" validate:"dive,email"`
	DefaultManagerEmail  string             `yaml:"defaultManagerEmail,omitempty" validate:"omitempty,email"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration for the given environment.
// It looks for shiftbalance_<env>.yaml, then shiftbalance.yaml, in the current
// directory and the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no file overrides it
func Default() *Config {
	return &Config{
		DefaultRequiredStaff: 2,
		DefaultContractHours: 32,
		SnapshotCapacity:     10,
		ValidationCacheSize:  50,
	}
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.StaffingOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in staffingOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(env string) (string, error) {
	candidates := []string{"shiftbalance.yaml"}
	if env != "" {
		candidates = []string{fmt.Sprintf("shiftbalance_%s.yaml", env), "shiftbalance.yaml"}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
		if homeDir != "" {
			homePath := filepath.Join(homeDir, name)
			if _, err := os.Stat(homePath); err == nil {
				return homePath, nil
			}
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
