package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/models"
	"market-alerts/internal/store"
)

// addAlertCommands adds alert rule management commands.
func addAlertCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "alert",
		Aliases: []string{"alerts"},
		Short:   "Manage price alerts",
		Long:    "Create, list, remove and toggle price alert rules.",
	}

	cmd.AddCommand(newAlertAddCmd(app))
	cmd.AddCommand(newAlertListCmd(app))
	cmd.AddCommand(newAlertRemoveCmd(app))
	cmd.AddCommand(newAlertToggleCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAlertAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <symbol> <price> <above|below> <label...>",
		Short: "Add a price alert",
		Long: `Add a price alert that fires once when the symbol's price reaches the level.

'above' fires when price >= level, 'below' when price <= level.`,
		Example: `  market-alerts alert add EURUSD 1.0900 above Resistance
  market-alerts alert add GBPUSD 1.2650 below Key Level`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			rule, err := parseRule(args)
			if err != nil {
				return err
			}

			st, err := app.Store(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening alert store: %w", err)
			}
			alert, err := st.Create(cmd.Context(), rule)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(alert)
			}
			output.Success("✓ Alert created: %s %s %s (%s)",
				alert.Symbol, FormatDirection(alert.Direction), FormatPrice(alert.AlertPrice), alert.Label)
			output.Dim("ID: %s", alert.ID)
			return nil
		},
	}
}

// parseRule builds a rule from add arguments. Field validation is left to
// the store so the CLI and HTTP API reject the same inputs.
func parseRule(args []string) (models.AlertRule, error) {
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return models.AlertRule{}, apperrors.NewValidationError("alert_price", args[1], "must be a number")
	}
	return models.AlertRule{
		Symbol:     args[0],
		AlertPrice: price,
		Direction:  models.Direction(strings.ToLower(args[2])),
		Label:      strings.Join(args[3:], " "),
	}, nil
}

func newAlertListCmd(app *App) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List price alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.Store(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening alert store: %w", err)
			}
			alerts, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if activeOnly {
				filtered := alerts[:0]
				for _, a := range alerts {
					if a.IsActive {
						filtered = append(filtered, a)
					}
				}
				alerts = filtered
			}

			if output.IsJSON() {
				return output.JSON(alerts)
			}
			if len(alerts) == 0 {
				output.Dim("No alerts. Add one with 'market-alerts alert add'.")
				return nil
			}

			table := NewTable(output, "ID", "SYMBOL", "DIRECTION", "LEVEL", "LABEL", "ACTIVE", "CREATED")
			for _, a := range alerts {
				table.AddRow(
					ShortID(a.ID),
					a.Symbol,
					FormatDirection(a.Direction),
					FormatPrice(a.AlertPrice),
					TruncateString(a.Label, 32),
					output.Active(a.IsActive),
					FormatDateTime(a.CreatedAt),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "show only active alerts")
	return cmd
}

func newAlertRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a price alert",
		Long:    "Remove a price alert by ID or unique ID prefix.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.Store(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening alert store: %w", err)
			}
			alert, err := resolveAlert(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			if err := st.Remove(cmd.Context(), alert.ID); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": alert.ID})
			}
			output.Success("✓ Removed %s alert %s (%s)", alert.Symbol, ShortID(alert.ID), alert.Label)
			return nil
		},
	}
}

func newAlertToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate a price alert",
		Long: `Flip an alert between active and inactive.

A fired alert is deactivated automatically; toggle it to re-arm it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.Store(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening alert store: %w", err)
			}
			alert, err := resolveAlert(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			if err := st.ToggleActive(cmd.Context(), alert.ID); err != nil {
				return err
			}
			updated, err := st.Get(cmd.Context(), alert.ID)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(updated)
			}
			state := "deactivated"
			if updated.IsActive {
				state = "activated"
			}
			output.Success("✓ %s alert %s %s", updated.Symbol, ShortID(updated.ID), state)
			return nil
		},
	}
}

// resolveAlert finds an alert by full ID or by unique ID prefix.
func resolveAlert(ctx context.Context, st store.AlertStore, ref string) (*models.Alert, error) {
	if alert, err := st.Get(ctx, ref); err == nil {
		return alert, nil
	} else if !apperrors.Is(err, apperrors.ErrAlertNotFound) {
		return nil, err
	}

	alerts, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	var match *models.Alert
	for i := range alerts {
		if !strings.HasPrefix(alerts[i].ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("alert id prefix %q is ambiguous", ref)
		}
		match = &alerts[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAlertNotFound, ref)
	}
	return match, nil
}
