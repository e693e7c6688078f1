package cmd

import (
	"fmt"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [alert-id]",
	Short: "Cancel an emergency alert",
	Long:  `Deactivate an emergency alert. Without an id the most recent active alert is cancelled.`,
	Example: `safebadge cancel 3
safebadge cancel`,
	Args: cobra.MaximumNArgs(1),
	RunE: cancelAlert,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func cancelAlert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	c := newClient(cfg)
	ctx := cmd.Context()

	var alertID uint
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid alert id %q", args[0])
		}
		alertID, err = safecast.Convert[uint](id)
		if err != nil {
			return fmt.Errorf("invalid alert id %q: %w", args[0], err)
		}
	} else {
		alerts, err := c.ListAlerts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list alerts: %w", err)
		}
		latest, ok := lo.Last(lo.Filter(alerts, func(a models.Alert, _ int) bool { return a.IsActive }))
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "There is no active alert.")
			return nil
		}
		alertID = latest.ID
	}

	alert, err := c.DeactivateAlert(ctx, alertID)
	if err != nil {
		return fmt.Errorf("failed to cancel alert %d: %w", alertID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Alert #%d cancelled.\n", alert.ID)
	return nil
}
