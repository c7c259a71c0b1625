// Package config loads, normalizes and validates the application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g.
// IFREC_DATA_RAW_ROOT overrides data.raw_root.
const EnvPrefix = "IFREC"

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Paths locates the data the validators operate on.
type Paths struct {
	RawRoot    string `mapstructure:"raw_root" validate:"required"`
	BackupRoot string `mapstructure:"backup_root" validate:"required"`
	Database   string `mapstructure:"database" validate:"required"`
	ReportDir  string `mapstructure:"report_dir" validate:"required"`
}

// Config is the complete application configuration.
type Config struct {
	Validation   model.DataValidationConfig  `mapstructure:"data_validation"`
	Tables       model.TableValidationConfig `mapstructure:"table_validation"`
	Data         Paths                       `mapstructure:"data"`
	ReportFormat string                      `mapstructure:"report_format" validate:"oneof=csv xlsx"`
}

// SetDefaults registers default values. Keys with defaults can also be set
// from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.raw_root", "data/01_raw")
	v.SetDefault("data.backup_root", "data/backups")
	v.SetDefault("data.database", "data/ifrec.db")
	v.SetDefault("data.report_dir", "data/08_reporting")
	v.SetDefault("report_format", "csv")
	v.SetDefault("data_validation.enabled", true)
	v.SetDefault("data_validation.encoding", "latin1")
	v.SetDefault("data_validation.workers", 0)
	v.SetDefault("data_validation.report_include_passed", false)
	v.SetDefault("table_validation.report_include_passed", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// ReadConfig wires v to the config file and environment. With an empty
// cfgFile it searches ./ifrec.yaml then $HOME/.config/ifrec/ifrec.yaml. A
// missing config file is not an error; defaults apply.
func ReadConfig(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ifrec"))
		}
		v.SetConfigName("ifrec")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// LoadDotEnv loads environment variables from the given files, ".env" when
// none are named. Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load decodes v into a Config, expands paths and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.normalize()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	expandPaths(&c.Data.RawRoot, &c.Data.BackupRoot, &c.Data.Database, &c.Data.ReportDir)
	c.ReportFormat = strings.ToLower(c.ReportFormat)

	for name, ds := range c.Validation.Datasets {
		expandPaths(&ds.Path)
		for check, strategy := range ds.Validations {
			ds.Validations[check] = model.Strategy(strings.ToLower(string(strategy)))
		}
		c.Validation.Datasets[name] = ds
	}
	for name, ds := range c.Tables.Datasets {
		expandPaths(&ds.Path)
		c.Tables.Datasets[name] = ds
	}
}

// Validate checks cfg against its struct tags. Field names in the error use
// configuration keys.
func Validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
