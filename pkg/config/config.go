package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const envPrefix = "ACHU"

// FileDefaults fill the file header fields a manifest leaves empty.
type FileDefaults struct {
	DestinationID   string `mapstructure:"destination_id"`
	DestinationName string `mapstructure:"destination_name"`
	OriginID        string `mapstructure:"origin_id"`
	OriginName      string `mapstructure:"origin_name"`
	ReferenceCode   string `mapstructure:"reference_code"`
	FileIDModifier  string `mapstructure:"file_id_modifier"`
}

// YNABConfig holds the YNAB specific configurations.
type YNABConfig struct {
	TokenEnv  string `mapstructure:"token_env"`
	BudgetID  string `mapstructure:"budget_id"`
	AccountID string `mapstructure:"account_id"`
}

type Config struct {
	OutputPath string       `mapstructure:"output"`
	LogLevel   string       `mapstructure:"log_level"`
	File       FileDefaults `mapstructure:"file"`
	YNAB       YNABConfig   `mapstructure:"ynab"`
}

func (c *Config) GetOutputPath() string {
	return c.OutputPath
}

// Token reads the YNAB personal access token from the configured variable.
func (c *Config) Token() string {
	if c.YNAB.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.YNAB.TokenEnv)
}

// New creates a configuration holding only an output path.
func New(outputPath string) *Config {
	return &Config{
		OutputPath: outputPath,
		LogLevel:   "info",
		YNAB:       YNABConfig{TokenEnv: "YNAB_TOKEN"},
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"output":      "output",
	"log-level":   "log_level",
	"budget":      "ynab.budget_id",
	"account":     "ynab.account_id",
	"origin-id":   "file.origin_id",
	"origin":      "file.origin_name",
	"dest-id":     "file.destination_id",
	"dest":        "file.destination_name",
	"id-modifier": "file.file_id_modifier",
}

// Build loads .env, the config file (cfgFile or ./achu.yaml), ACHU_*
// environment variables and finally any flags the user set, in increasing
// order of precedence.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("achu")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("file.destination_id", "")
	v.SetDefault("file.destination_name", "")
	v.SetDefault("file.origin_id", "")
	v.SetDefault("file.origin_name", "")
	v.SetDefault("file.reference_code", "")
	v.SetDefault("file.file_id_modifier", "")
	v.SetDefault("ynab.token_env", "YNAB_TOKEN")
	v.SetDefault("ynab.budget_id", "")
	v.SetDefault("ynab.account_id", "")
}
