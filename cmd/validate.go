package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wasteflow/config"
	"github.com/kilianp07/wasteflow/core/forecast"
	"github.com/kilianp07/wasteflow/core/network"
	"github.com/kilianp07/wasteflow/scenario"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario>",
	Short: "Check a scenario file without allocating",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	forecasts, err := sc.ResolveForecasts(forecast.AverageForecaster{Window: cfg.Forecast.Window})
	if err != nil {
		return err
	}
	if err := sc.Validate(forecasts); err != nil {
		return err
	}
	if err := network.NewBuilder(cfg.Network).Validate(sc.Producers, sc.Processors); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d producers, %d processors, %d forecasts\n",
		args[0], len(sc.Producers), len(sc.Processors), len(forecasts))
	return err
}
