package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DOMRUN"

type config struct {
	Engine engineConfig `mapstructure:"engine"`
	Log    logConfig    `mapstructure:"log"`
}

type engineConfig struct {
	URL         string `mapstructure:"url"`
	MemoryPages uint32 `mapstructure:"memory_pages"`
}

type logConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.url", "about:blank")
	v.SetDefault("engine.memory_pages", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.compress", false)
}

// loadConfig reads file (or ./domrun.yaml when file is empty) and the
// DOMRUN_* environment on top of the defaults. A missing default config
// file is not an error.
func loadConfig(v *viper.Viper, file string) (config, error) {
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("domrun")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
