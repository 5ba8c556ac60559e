package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ticker-alerts/internal/models"
	"ticker-alerts/internal/store"
)

// newAlertsCmd creates the 'alerts' command group for inspecting and toggling
// alert definitions.
func newAlertsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and manage alert definitions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all alert definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, s store.AlertStore) error {
				alerts, err := s.ListAlerts(ctx)
				if err != nil {
					return err
				}
				if len(alerts) == 0 {
					fmt.Println("No alerts defined.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSYMBOL\tKIND\tSTATUS\tDIRECTION\tVALUE\tRECIPIENTS")
				for _, a := range alerts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\n",
						a.ID, a.Symbol, a.Kind, a.Status, a.Direction, a.Value, len(a.Recipients))
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "activate <id>",
		Short: "Activate an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, s store.AlertStore) error {
				if err := s.SetStatus(ctx, args[0], models.StatusActive); err != nil {
					return err
				}
				fmt.Printf("Alert %s activated.\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, s store.AlertStore) error {
				if err := s.SetStatus(ctx, args[0], models.StatusDeactivated); err != nil {
					return err
				}
				fmt.Printf("Alert %s deactivated.\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func withStore(app *App, fn func(context.Context, store.AlertStore) error) error {
	s, err := store.NewSQLiteStore(app.Config.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(context.Background(), s)
}
