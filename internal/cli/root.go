// Package cli implements plannerctl, a terminal client for the shopping
// list engine.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/angelmondragon/pantryplan-backend/internal/planner"
)

const envPrefix = "PLANNERCTL"

// Opener connects to the planner store. The returned func releases it.
type Opener func(ctx context.Context) (*planner.Services, func() error, error)

// NewRootCommand builds the plannerctl command tree. Flags can also be set
// from PLANNERCTL_* variables or a YAML file passed with --config.
func NewRootCommand(open Opener) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfgFile string
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Inspect the meal plan and shopping list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML file with flag defaults")

	root.AddCommand(
		newWeekCommand(v),
		newShortfallCommand(v, open),
		newDeficitsCommand(open),
	)
	return root
}

// bind registers cmd's local flags with v so env vars and the config file
// fill in what the command line leaves out.
func bind(v *viper.Viper, cmd *cobra.Command, names ...string) {
	for _, name := range names {
		cobra.CheckErr(v.BindPFlag(name, cmd.Flags().Lookup(name)))
	}
}
