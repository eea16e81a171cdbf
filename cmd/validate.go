package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"funnelforge/internal/config"
	"funnelforge/internal/ui"
	"funnelforge/pkg/models"
)

var validateConfigFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration without generating anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidateConfig()
		if err != nil {
			return err
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		g := cfg.Generation
		table := ui.NewTable()
		table.AddHeader("Setting", "Value")
		table.AddRow("seed", fmt.Sprintf("%d", g.Seed))
		table.AddRow("start_date", g.StartDate)
		table.AddRow("days", fmt.Sprintf("%d", g.Days))
		table.AddRow("base_daily_new_users", fmt.Sprintf("%d", g.BaseDailyNewUsers))
		table.AddRow("base_daily_sessions", fmt.Sprintf("%d", g.BaseDailySessions))
		table.AddRow("lead_share_of_traffic", fmt.Sprintf("%.2f", g.LeadShareOfTraffic))
		table.AddRow("output_directory", cfg.Output.Directory)
		table.AddRow("warehouse_enabled", fmt.Sprintf("%t", cfg.Warehouse.Enabled))
		table.Render()

		ui.ShowSuccess("Configuration is valid")
		return nil
	},
}

func loadValidateConfig() (*models.Config, error) {
	var cfg *models.Config
	var err error

	if validateConfigFile != "" {
		cfg, err = config.LoadFile(validateConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "", "Config file to validate")

	rootCmd.AddCommand(validateCmd)
}
