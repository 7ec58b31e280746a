package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dhamidi/askiq/config"
)

// app carries what every command needs once flags and config are parsed.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	stderr     io.Writer
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	a := &app{v: v, stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           "askiq",
		Short:         "askiq is a terminal chat with saved, searchable conversations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.stderr = cmd.ErrOrStderr()
			initLogger(a.stderr, cfg.LogLevel)
			log.Debug().
				Str("backend", cfg.Store.Backend).
				Str("path", cfg.Store.Path).
				Str("model", cfg.Model).
				Msg("configuration loaded")
			return nil
		},
		RunE: a.runChat,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file (default $HOME/.askiq/config.yaml)")
	flags.String("store", "", "Storage backend: sqlite, bolt, file or memory")
	flags.String("store-path", "", "Database file, or directory for the file backend")
	flags.StringP("model", "m", "", "The name of the model to use")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("render", "", "Message rendering: glamour or raw")
	cobra.CheckErr(v.BindPFlag(config.KeyStoreBackend, flags.Lookup("store")))
	cobra.CheckErr(v.BindPFlag(config.KeyStorePath, flags.Lookup("store-path")))
	cobra.CheckErr(v.BindPFlag(config.KeyModel, flags.Lookup("model")))
	cobra.CheckErr(v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	cobra.CheckErr(v.BindPFlag(config.KeyRender, flags.Lookup("render")))

	rootCmd.AddCommand(a.historyCommand())
	return rootCmd
}

// initLogger installs a console logger on w at the given level. Unknown
// levels fall back to warn.
func initLogger(w io.Writer, level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown log level, keeping warn")
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if err := config.LoadDotEnv(); err != nil {
		die("Error: %v", err)
	}
	if err := newRootCommand(config.New()).Execute(); err != nil {
		die("Error: %v", err)
	}
}
