package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "tapegrad"
	configFileType = "yaml"
	envPrefix      = "TAPEGRAD"

	cfgKeyLogLevel   = "log-level"
	cfgKeyDB         = "db"
	cfgKeyLR         = "lr"
	cfgKeySteps      = "steps"
	cfgKeySeed       = "seed"
	cfgKeyOptimizer  = "optimizer"
	cfgKeyMomentum   = "momentum"
	cfgKeyCheckpoint = "checkpoint"
	cfgKeyResume     = "resume"
	cfgKeyLogEvery   = "log-every"
	cfgKeyEps        = "eps"
	cfgKeyTolerance  = "tolerance"
)

// loadConfig builds the viper instance for one command invocation.
//
// Precedence, highest first: flags set on the command line, TAPEGRAD_*
// environment variables, the config file, flag defaults. A missing
// tapegrad.yaml is not an error; an explicitly named file must exist.
func loadConfig(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// newLogger returns a text logger writing to w at the named level
// ("debug", "info", "warn", "error").
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
