// Package cmd holds the waves command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavecore/internal/config"
	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "waves",
	Short:         "Terminal music player",
	Long:          "Play local files and remote streams with a tiered resource cache.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/waves/config.toml then ./config.toml)")
}

// loadConfig reads the configuration and sets up logging. The returned closer
// releases the log file.
func loadConfig() (*config.Config, io.Closer, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, nil, errors.New(errmsg.FormatWith(errmsg.OpConfigLoad, configPath, statErr))
		}
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	closer, err := logging.Setup(cfg.GetLogConfig())
	if err != nil {
		return nil, nil, errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	log.WithFields(log.Fields{
		"package":  "cmd",
		"function": "loadConfig",
	}).Debug("configuration loaded")
	return cfg, closer, nil
}
