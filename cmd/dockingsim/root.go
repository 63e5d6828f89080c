package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/navuxneeth/NASA-Challenge/core"
	"github.com/navuxneeth/NASA-Challenge/internal/logging"
)

const envPrefix = "DOCKINGSIM"

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v   *viper.Viper
	log logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logging.Noop()}

	root := &cobra.Command{
		Use:   "dockingsim",
		Short: "ISS docking challenge, Earth Observer quiz and orbit tools",
		Long: `dockingsim runs the spacecraft docking mini-game headlessly.

Configuration is read, in increasing precedence, from .dockingsim.yaml
(home directory or working directory), .env / .env.local, DOCKINGSIM_*
environment variables and command-line flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .dockingsim.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	_ = a.v.BindPFlag("config", pf.Lookup("config"))
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = a.v.BindEnv("log.level", "LOG_LEVEL")
	_ = a.v.BindEnv("log.format", "LOG_FORMAT")

	root.AddCommand(
		newRunCmd(a),
		newReplayCmd(a),
		newQuizCmd(a),
		newNBLCmd(a),
		newCupolaCmd(a),
		newISSCmd(a),
		newThemeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	loadEnvFiles()

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName(".dockingsim")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := a.v.GetString("log.level")
	a.log = logging.New(logging.Config{
		Level:     level,
		Format:    a.v.GetString("log.format"),
		AddSource: strings.EqualFold(level, "debug"),
		Output:    cmd.ErrOrStderr(),
	})
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug(cmd.Context(), "config file loaded", logging.String("path", used))
	}
	return nil
}

// dockingConfig overlays the "docking" section of the config onto the
// defaults and validates the result.
func (a *app) dockingConfig() (core.Config, error) {
	cfg := core.DefaultConfig()
	if a.v.IsSet("docking") {
		if err := a.v.UnmarshalKey("docking", &cfg); err != nil {
			return core.Config{}, fmt.Errorf("decode docking config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env then .env.local; variables already set win.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}
