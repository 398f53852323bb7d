package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"flowerShopCRM/internal/db"
)

// NewMigrateCommand creates the migrate command group. Opening the database
// already applies pending migrations.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or roll back schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateRollback(rootOpts, cmd)
		},
	})
	return cmd
}

func runMigrateStatus(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(false)
	if err != nil {
		return err
	}
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer d.Close()
	st, err := db.Status(d)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	for _, m := range st {
		mark := "pending"
		if m.Applied {
			mark = "applied"
		}
		fmt.Fprintf(out, "%04d  %-12s%s\n", m.Version, m.Name, mark)
	}
	return nil
}

func runMigrateRollback(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(false)
	if err != nil {
		return err
	}
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer d.Close()
	v, err := db.RollbackLast(d)
	if err != nil {
		return err
	}
	if v == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rolled back %04d\n", v)
	return nil
}
