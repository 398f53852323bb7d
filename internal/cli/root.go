// Package cli wires the flowercrm commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowerShopCRM/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flowercrm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flowercrm",
		Short: "Flower shop back office",
		Long:  "Order board, stock audits and staff accounts for a flower shop, served over gRPC.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "flowercrm.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewStatusesCommand(opts))

	return cmd
}

// loadConfig reads the config file. strict requires a real JWT secret.
func (o *RootOptions) loadConfig(strict bool) (*config.Config, error) {
	if strict {
		return config.Load(o.Config)
	}
	return config.LoadWithDefaults(o.Config)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
