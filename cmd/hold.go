package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/session"
	"github.com/spf13/cobra"
)

var holdCmdFlags struct {
	Duration time.Duration
}

var holdCmd = &cobra.Command{
	Use:   "hold",
	Short: "Press and hold the alert button",
	Long: `Press the alert button of the badge, hold it for the given duration and release it.
An alert is raised if the button is held for at least the configured threshold.`,
	Example: `safebadge hold
safebadge hold --duration 1s   # released early, no alert`,
	Args: cobra.NoArgs,
	RunE: hold,
}

func init() {
	holdCmd.Flags().DurationVarP(&holdCmdFlags.Duration, "duration", "d", 0, "How long to hold the button (default: the configured threshold)")

	rootCmd.AddCommand(holdCmd)
}

func hold(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	duration := holdCmdFlags.Duration
	if duration <= 0 {
		duration = cfg.Hold.Threshold
	}

	out := cmd.OutOrStdout()
	outcome := make(chan session.Event, 1)
	ctl := session.New(newClient(cfg),
		session.WithThreshold(cfg.Hold.Threshold),
		session.WithSampleInterval(cfg.Hold.SampleInterval),
		session.WithObserver(func(e session.Event) {
			switch e.Type {
			case session.EventProgress:
				printProgress(out, e.Progress)
			case session.EventReleased, session.EventActivated, session.EventActivationFailed:
				outcome <- e
			}
		}),
	)
	defer ctl.Close()

	if err := ctl.Press(cmd.Context()); err != nil {
		if errors.Is(err, session.ErrDeviceInactive) {
			return fmt.Errorf("the badge is switched off, activate it before raising an alert")
		}
		return err
	}
	log.Debug("Button pressed", "duration", duration, "threshold", cfg.Hold.Threshold)

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case e := <-outcome:
		return reportOutcome(out, e)
	case <-cmd.Context().Done():
		ctl.Release()
		fmt.Fprintln(out)
		return cmd.Context().Err()
	case <-timer.C:
	}

	// either the release ends the hold or the threshold was reached just before
	ctl.Release()
	return reportOutcome(out, <-outcome)
}

func reportOutcome(out io.Writer, e session.Event) error {
	fmt.Fprintln(out)
	switch e.Type {
	case session.EventReleased:
		fmt.Fprintf(out, "Released after %s, no alert was raised.\n", e.Elapsed.Round(time.Millisecond))
		return nil
	case session.EventActivationFailed:
		return fmt.Errorf("failed to raise alert: %w", e.Err)
	}
	fmt.Fprintf(out, "Emergency alert #%d activated on %s.\n", e.AlertID, e.ActivatedAt)
	fmt.Fprintf(out, "Run 'safebadge cancel %d' to cancel it.\n", e.AlertID)
	return nil
}

func printProgress(out io.Writer, progress float64) {
	const width = 30
	filled := int(progress * width)
	fmt.Fprintf(out, "\r[%s%s] %3.0f%%", strings.Repeat("#", filled), strings.Repeat(" ", width-filled), progress*100)
}
