// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"math"
	"strings"

	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/models"
)

// AlertStore defines the interface for alert persistence. Every mutation is
// durable when the call returns.
type AlertStore interface {
	Create(ctx context.Context, rule models.AlertRule) (*models.Alert, error)
	Get(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context) ([]models.Alert, error)
	Remove(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	Close() error
}

// ValidateRule checks alert creation input.
func ValidateRule(rule models.AlertRule) error {
	if strings.TrimSpace(rule.Symbol) == "" {
		return apperrors.NewValidationError("symbol", rule.Symbol, "symbol is required")
	}
	if math.IsNaN(rule.AlertPrice) || math.IsInf(rule.AlertPrice, 0) {
		return apperrors.NewValidationError("alert_price", rule.AlertPrice, "price must be a finite number")
	}
	if !rule.Direction.Valid() {
		return apperrors.NewValidationError("direction", rule.Direction, "direction must be 'above' or 'below'")
	}
	if strings.TrimSpace(rule.Label) == "" {
		return apperrors.NewValidationError("label", rule.Label, "label is required")
	}
	return nil
}
