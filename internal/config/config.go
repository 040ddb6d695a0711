package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// PublishRule restricts which dates inside a publish range a template is
// instantiated on, e.g. "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR" for weekdays
// only.
type PublishRule struct {
	TemplateID string `yaml:"templateID" validate:"required"`
	RRule      string `yaml:"rrule" validate:"required"`
}

// Config represents the application configuration.
type Config struct {
	WeekStart    string              `yaml:"weekStart" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	DayStartHour int                 `yaml:"dayStartHour" validate:"min=0,max=23"`
	DayEndHour   int                 `yaml:"dayEndHour" validate:"required,min=1,max=24,gtfield=DayStartHour"`
	PublishRules []PublishRule       `yaml:"publishRules,omitempty" validate:"dive"`
	Permissions  map[string][]string `yaml:"permissions,omitempty"` // role name -> feature keys
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// WeekStartDay returns the configured week-start weekday. Validation
// guarantees the name is known by the time this is called.
func (c *Config) WeekStartDay() time.Weekday {
	return weekdays[c.WeekStart]
}

// Load loads and validates the configuration from roster_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.PublishRules {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in publishRules[%d]: %w", i, err)
		}
	}

	return nil
}

// DatabaseURL resolves the postgres connection string from the
// environment, loading a .env file first when one exists.
func DatabaseURL() (string, error) {
	// Missing .env is fine; real environments set the variable directly.
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL is not set")
	}
	return url, nil
}

// findConfigFile searches for roster_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	configFileName := "roster_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
