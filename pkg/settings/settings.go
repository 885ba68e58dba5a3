// Package settings resolves command line settings from flags, DOWNSON_*
// environment variables and an optional .downson.yaml file, in that order of
// precedence.
package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

const (
	EnvPrefix = "DOWNSON"
	FileName  = ".downson"
)

// Bind returns a viper instance backed by the flags of cmd. dirs are searched
// for the settings file; the working directory and the user config directory
// are used when dirs is empty.
func Bind(cmd *cobra.Command, dirs ...string) (*viper.Viper, error) {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Errorf("binding flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = append(dirs, ".")
		if dir, err := os.UserConfigDir(); err == nil {
			dirs = append(dirs, filepath.Join(dir, "downson"))
		}
	}
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Errorf("reading settings file: %w", err)
		}
	}

	return v, nil
}
