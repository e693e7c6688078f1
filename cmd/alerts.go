package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/mergestat/timediff"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var alertsCmdFlags struct {
	ActiveOnly bool
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List emergency alerts",
	Long:  `List all emergency alerts of the badge owner, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  listAlerts,
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsCmdFlags.ActiveOnly, "active", false, "Only show active alerts")

	rootCmd.AddCommand(alertsCmd)
}

func listAlerts(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	alerts, err := newClient(cfg).ListAlerts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}
	if alertsCmdFlags.ActiveOnly {
		alerts = lo.Filter(alerts, func(a models.Alert, _ int) bool { return a.IsActive })
	}

	out := cmd.OutOrStdout()
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tRAISED\tLOCATION")
	for _, a := range alerts {
		status := "inactive"
		if a.IsActive {
			status = "ACTIVE"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, status, timediff.TimeDiff(a.Timestamp), a.Location.Address)
	}
	return w.Flush()
}
