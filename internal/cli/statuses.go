package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/lifecycle"
)

type statusRow struct {
	Status   string `json:"status"`
	Label    string `json:"label"`
	StyleTag string `json:"style_tag"`
	Action   string `json:"action,omitempty"`
	Next     string `json:"next,omitempty"`
}

// NewStatusesCommand creates the statuses command.
func NewStatusesCommand(rootOpts *RootOptions) *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "Print the order status table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if locale == "" {
				cfg, err := rootOpts.loadConfig(false)
				if err != nil {
					return err
				}
				locale = cfg.Locale
			}
			return writeStatuses(cmd.OutOrStdout(), rootOpts.Format, display.New(locale))
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "label language (defaults to the configured locale)")
	return cmd
}

func writeStatuses(w io.Writer, format string, labels *display.Catalog) error {
	var rows []statusRow
	for _, r := range lifecycle.NewEngine(labels).Table() {
		rows = append(rows, statusRow{Status: string(r.Status), Label: r.Label, StyleTag: r.StyleTag, Action: r.Action, Next: string(r.Next)})
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	line := func(cols ...string) {
		s := fmt.Sprintf("%-12s%-12s%-12s%s", cols[0], cols[1], cols[2], cols[3])
		fmt.Fprintln(w, strings.TrimRight(s, " "))
	}
	line("STATUS", "NEXT", "LABEL", "ACTION")
	for _, r := range rows {
		line(r.Status, r.Next, r.Label, r.Action)
	}
	return nil
}
