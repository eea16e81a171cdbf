package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"funnelforge/internal/config"
	"funnelforge/internal/ui"
	"funnelforge/pkg/models"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration interactively",
	Long: `Walk through the generation settings and write the configuration file.

Warehouse credentials are optional; when provided, the password is stored in
the OS keychain rather than the config file.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	var prior *models.Config
	if config.Exists() {
		if !initForce {
			ok, err := ui.Confirm(fmt.Sprintf("Configuration %s already exists. Overwrite?", config.GetConfigFile()), false)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Initialization cancelled.")
				return nil
			}
		}
		if loaded, err := config.Load(); err == nil {
			prior = loaded
		}
	}

	ui.ShowHeader("FunnelForge Setup")
	cfg := models.DefaultConfig()

	seed, err := askInt("Run seed", cfg.Generation.Seed, "Runs with the same seed produce byte-identical output")
	if err != nil {
		return err
	}
	cfg.Generation.Seed = seed

	start, err := ui.Input("Simulation start date (YYYY-MM-DD)", cfg.Generation.StartDate, "")
	if err != nil {
		return err
	}
	cfg.Generation.StartDate = start

	days, err := askInt("Number of simulated days", int64(cfg.Generation.Days), "")
	if err != nil {
		return err
	}
	cfg.Generation.Days = int(days)

	newUsers, err := askInt("Base daily new users", int64(cfg.Generation.BaseDailyNewUsers), "Scaled by seasonality, growth and jitter per day")
	if err != nil {
		return err
	}
	cfg.Generation.BaseDailyNewUsers = int(newUsers)

	outDir, err := ui.Input("Output directory", cfg.Output.Directory, "One JSONL file per dataset")
	if err != nil {
		return err
	}
	cfg.Output.Directory = outDir

	useWarehouse, err := ui.Confirm("Also load datasets into a Snowflake warehouse?", false)
	if err != nil {
		return err
	}
	if useWarehouse {
		if err := askWarehouse(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	if err := clearStaleCredential(prior, cfg); err != nil {
		ui.ShowWarning(fmt.Sprintf("Could not remove stale keychain entry: %v", err))
	}

	ui.ShowSuccess(fmt.Sprintf("Configuration written to %s", config.GetConfigFile()))
	fmt.Println("\nRun a generation pass with:")
	fmt.Println("  funnelforge generate")
	return nil
}

func askWarehouse(cfg *models.Config) error {
	account, err := ui.Input("Warehouse account", "", "e.g. xy12345.us-east-1")
	if err != nil {
		return err
	}
	username, err := ui.Input("Warehouse username", "", "")
	if err != nil {
		return err
	}
	password, err := ui.Password("Warehouse password", "Stored in the OS keychain, not the config file")
	if err != nil {
		return err
	}
	database, err := ui.Input("Database", "FUNNELFORGE", "")
	if err != nil {
		return err
	}
	schema, err := ui.Input("Schema", "PUBLIC", "")
	if err != nil {
		return err
	}
	warehouse, err := ui.Input("Warehouse (compute)", "COMPUTE_WH", "")
	if err != nil {
		return err
	}
	role, err := ui.Input("Role", "SYSADMIN", "")
	if err != nil {
		return err
	}

	cfg.Warehouse = models.Warehouse{
		Enabled:   true,
		Account:   account,
		Username:  username,
		Role:      role,
		Warehouse: warehouse,
		Database:  database,
		Schema:    schema,
	}

	if password != "" {
		if err := config.StoreWarehousePassword(account, username, password); err != nil {
			ui.ShowWarning(fmt.Sprintf("Could not store password in keychain: %v", err))
			cfg.Warehouse.Password = password
		}
	}
	return nil
}

// clearStaleCredential drops the keychain entry the new configuration
// no longer references, so disabling the warehouse or switching
// accounts does not leave secrets behind.
func clearStaleCredential(prior, next *models.Config) error {
	if prior == nil || prior.Warehouse.Account == "" {
		return nil
	}
	if next.Warehouse.Enabled &&
		next.Warehouse.Account == prior.Warehouse.Account &&
		next.Warehouse.Username == prior.Warehouse.Username {
		return nil
	}
	return config.DeleteWarehousePassword(prior.Warehouse.Account, prior.Warehouse.Username)
}

func askInt(message string, def int64, help string) (int64, error) {
	raw, err := ui.Input(message, strconv.FormatInt(def, 10), help)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(ui.NormalizeAnswer(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}
