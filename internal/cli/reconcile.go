package cli

import (
	"fmt"

	"kos-manager/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReconcileCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Mark pending payments past their due date as overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			var clock service.Clock
			payments := &service.PaymentService{DB: e.db}
			n, err := payments.Reconcile(cmd.Context(), clock.Today())
			if err != nil {
				return fmt.Errorf("reconcile payments: %w", err)
			}
			e.log.Info("payments reconciled", zap.Int64("overdue", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d payment(s) marked overdue\n", n)
			return nil
		},
	}
}
