package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds tool-level settings. Values resolve lowest to highest:
// built-in defaults, optional config file, CURSOR_VAULT_* environment
// variables. The allow-list itself lives in its own JSON file (see
// LoadAllowedProjects) because that format is shared with other tooling.
type Config struct {
	StoragePath         string       `mapstructure:"storage_path"`
	TempDir             string       `mapstructure:"temp_dir"`
	AllowedProjectsFile string       `mapstructure:"allowed_projects_file"`
	EventLogFile        string       `mapstructure:"event_log"`
	Server              ServerConfig `mapstructure:"server"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadConfig reads settings from cfgFile when given, otherwise from an
// optional config.yaml under the user config dir or the working directory.
// A missing config file is fine; a malformed one is not.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("storage_path", "")
	v.SetDefault("temp_dir", defaultTempDir())
	v.SetDefault("allowed_projects_file", defaultAllowedProjectsFile())
	v.SetDefault("event_log", "")
	v.SetDefault("server.addr", "127.0.0.1:8377")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "cursor-vault"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CURSOR_VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, &ConfigError{Path: v.ConfigFileUsed(), Err: err}
		}
	} else {
		LogDebug("loaded config from %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Path: v.ConfigFileUsed(), Err: err}
	}

	return &cfg, nil
}

// defaultTempDir is per-process so two concurrent invocations of the tool
// never derive into the same shadow/filtered files.
func defaultTempDir() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("cursor-vault-%d", os.Getpid()))
}

func defaultAllowedProjectsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "allowedProjects.json"
	}
	return filepath.Join(dir, "cursor-vault", "allowedProjects.json")
}
