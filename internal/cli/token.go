package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/db"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	Role     string
	TTL      time.Duration
	Register bool
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{}
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a bearer token for a staff member",
		Long: `Issue an HS256 bearer token signed with the configured JWT secret.

With --register the staff record is created when missing, so the profile
and manager checks find it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Role, "role", models.RoleFlorist, "role claim (florist|manager)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 12*time.Hour, "token lifetime, 0 for no expiry")
	cmd.Flags().BoolVar(&opts.Register, "register", false, "create the staff record if it does not exist")
	return cmd
}

func runToken(rootOpts *RootOptions, opts *TokenOptions, username string, cmd *cobra.Command) error {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role != models.RoleFlorist && role != models.RoleManager {
		return fmt.Errorf("invalid role %q", opts.Role)
	}
	cfg, err := rootOpts.loadConfig(false)
	if err != nil {
		return err
	}
	if opts.Register {
		if err := registerStaff(cmd.Context(), cfg.Database.Path, username, role); err != nil {
			return err
		}
	}
	tok, err := auth.Sign(cfg.Auth.JWTSecret, username, role, opts.TTL, time.Now())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		return json.NewEncoder(out).Encode(map[string]string{"username": username, "role": role, "token": tok})
	}
	fmt.Fprintln(out, tok)
	return nil
}

func registerStaff(ctx context.Context, path, username, role string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := db.Open(path)
	if err != nil {
		return err
	}
	defer d.Close()
	staff := repository.NewStaffRepository(d)
	existing, err := staff.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = staff.Create(ctx, &models.Staff{Username: username, Role: role})
	return err
}
