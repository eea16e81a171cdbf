package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"funnelforge/internal/ui"
	"funnelforge/pkg/models"
)

var (
	rootVerbose bool
	rootQuiet   bool

	rootCmd = &cobra.Command{
		Use:   "funnelforge",
		Short: "Generate consistent synthetic marketing and sales datasets",
		Long: "FunnelForge - A CLI tool for fabricating demo-ready analytics, CRM and billing\n" +
			"datasets that stay numerically consistent with each other: every Stripe\n" +
			"subscription traces back to a won deal, every deal to a user journey in the\n" +
			"event stream.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if rootVerbose {
				level = zerolog.DebugLevel
			}
			if rootQuiet {
				level = zerolog.WarnLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
)

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Only log warnings and errors")
}

func initViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home + "/.funnelforge")
	}
	viper.SetEnvPrefix("funnelforge")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file not found is okay; generate falls back to defaults.
	_ = viper.ReadInConfig()
}

// applyEnvOverrides overlays settings viper discovered - FUNNELFORGE_*
// environment variables or a config.yaml in the working directory -
// onto the loaded configuration. Explicit command flags still win;
// they are applied after this.
func applyEnvOverrides(cfg *models.Config) {
	if viper.IsSet("generation.seed") {
		cfg.Generation.Seed = viper.GetInt64("generation.seed")
	}
	if viper.IsSet("generation.days") {
		cfg.Generation.Days = viper.GetInt("generation.days")
	}
	if viper.IsSet("generation.start_date") {
		cfg.Generation.StartDate = viper.GetString("generation.start_date")
	}
	if viper.IsSet("output.directory") {
		cfg.Output.Directory = viper.GetString("output.directory")
	}
	if viper.IsSet("warehouse.account") {
		cfg.Warehouse.Account = viper.GetString("warehouse.account")
	}
	if viper.IsSet("warehouse.username") {
		cfg.Warehouse.Username = viper.GetString("warehouse.username")
	}
	if viper.IsSet("warehouse.password") {
		cfg.Warehouse.Password = viper.GetString("warehouse.password")
	}
}

func newLogger() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).With().Timestamp().Logger()
}
