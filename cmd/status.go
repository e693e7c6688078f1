package cmd

import (
	"fmt"

	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the badge status",
	Long:  `Show the owner, the device settings and the number of active alerts.`,
	Args:  cobra.NoArgs,
	RunE:  status,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func status(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	c := newClient(cfg)

	var (
		user     *models.User
		settings *models.DeviceSettings
		alerts   []models.Alert
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() (err error) {
		user, err = c.GetUser(ctx)
		return err
	})
	g.Go(func() (err error) {
		settings, err = c.GetSettings(ctx)
		return err
	})
	g.Go(func() (err error) {
		alerts, err = c.ListAlerts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Owner:              %s (%s)\n", user.FullName, user.Username)
	fmt.Fprintf(out, "Device:             %s\n", lo.Ternary(settings.IsActive, "active", "inactive"))
	fmt.Fprintf(out, "Battery:            %d%%\n", settings.BatteryLevel)
	fmt.Fprintf(out, "Location sharing:   %s\n", onOff(settings.LocationSharing))
	fmt.Fprintf(out, "SMS alerts:         %s\n", onOff(settings.SMSAlerts))
	fmt.Fprintf(out, "Emergency services: %s\n", onOff(settings.EmergencyServices))
	fmt.Fprintf(out, "Sound alarm:        %s\n", onOff(settings.SoundAlarm))
	if loc := settings.LastLocation; loc != nil {
		fmt.Fprintf(out, "Last location:      %s (%.4f, %.4f)\n", loc.Address, loc.Latitude, loc.Longitude)
	}
	active := lo.CountBy(alerts, func(a models.Alert) bool { return a.IsActive })
	fmt.Fprintf(out, "Active alerts:      %d\n", active)
	return nil
}
