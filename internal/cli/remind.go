package cli

import (
	"fmt"

	"kos-manager/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRemindCmd(configPath *string) *cobra.Command {
	var daysAhead int

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for unpaid payments that are due soon or overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			notifier, closeNotifier, err := newNotifier(e)
			if err != nil {
				return err
			}
			defer closeNotifier()

			if !cmd.Flags().Changed("days") {
				daysAhead = e.cfg.Reminder.DaysAhead
			}

			var clock service.Clock
			reminders := &service.ReminderService{
				Payments:    &service.PaymentService{DB: e.db},
				Notifier:    notifier,
				DaysAhead:   daysAhead,
				Concurrency: e.cfg.Reminder.Concurrency,
				Log:         e.log,
			}
			sent, err := reminders.SendDue(cmd.Context(), clock.Today())
			if err != nil {
				return fmt.Errorf("send reminders: %w", err)
			}
			e.log.Info("reminders sent", zap.Int("count", sent))
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) sent\n", sent)
			return nil
		},
	}
	cmd.Flags().IntVar(&daysAhead, "days", 0, "remind about payments due within this many days (default from config)")
	return cmd
}
