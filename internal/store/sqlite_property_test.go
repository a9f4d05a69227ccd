package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/models"
)

func newTestStore(t *testing.T, userID string) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "alerts.db"), userID)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Property: create followed by list contains exactly one record matching
// every submitted field, with a freshly assigned unique ID.
func TestProperty_CreateListRoundTrip(t *testing.T) {
	store := newTestStore(t, "round-trip")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"EURUSD", "GBPUSD", "USDJPY", "XAUUSD", "BTCUSD", "eurusd"}
	labels := []string{"Support", "Resistance", "Key Level", "Breakout", "Daily high"}

	properties.Property("Round-trip: create then list yields one matching record", prop.ForAll(
		func(symbolIdx, labelIdx int, price float64, above bool) bool {
			ctx := context.Background()
			dir := models.DirectionBelow
			if above {
				dir = models.DirectionAbove
			}
			rule := models.AlertRule{
				Symbol:     symbols[symbolIdx],
				AlertPrice: price,
				Direction:  dir,
				Label:      labels[labelIdx],
			}

			before, err := store.List(ctx)
			if err != nil {
				t.Logf("List failed: %v", err)
				return false
			}

			created, err := store.Create(ctx, rule)
			if err != nil {
				t.Logf("Create failed: %v", err)
				return false
			}
			for _, a := range before {
				if a.ID == created.ID {
					t.Logf("ID %s reused", created.ID)
					return false
				}
			}

			after, err := store.List(ctx)
			if err != nil {
				return false
			}
			if len(after) != len(before)+1 {
				t.Logf("Count mismatch: before=%d after=%d", len(before), len(after))
				return false
			}

			matches := 0
			for _, a := range after {
				if a.ID != created.ID {
					continue
				}
				matches++
				if a.Symbol != rule.Symbol || a.AlertPrice != rule.AlertPrice ||
					a.Direction != rule.Direction || a.Label != rule.Label ||
					!a.IsActive || !a.CreatedAt.Equal(created.CreatedAt) {
					t.Logf("Record mismatch: got %+v, rule %+v", a, rule)
					return false
				}
			}
			// Insertion order: the new record is last
			return matches == 1 && after[len(after)-1].ID == created.ID
		},
		gen.IntRange(0, len(symbols)-1),
		gen.IntRange(0, len(labels)-1),
		gen.Float64Range(0.0001, 100000.0),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: toggling twice restores the original is_active value.
func TestProperty_ToggleTwiceIsIdentity(t *testing.T) {
	store := newTestStore(t, "toggle")
	ctx := context.Background()

	alert, err := store.Create(ctx, models.AlertRule{
		Symbol: "EURUSD", AlertPrice: 1.1, Direction: models.DirectionAbove, Label: "Resistance",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("toggle twice restores state", prop.ForAll(
		func(startActive bool) bool {
			if err := store.SetActive(ctx, alert.ID, startActive); err != nil {
				return false
			}
			if err := store.ToggleActive(ctx, alert.ID); err != nil {
				return false
			}
			mid, err := store.Get(ctx, alert.ID)
			if err != nil || mid.IsActive == startActive {
				return false
			}
			if err := store.ToggleActive(ctx, alert.ID); err != nil {
				return false
			}
			got, err := store.Get(ctx, alert.ID)
			return err == nil && got.IsActive == startActive
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestCreateValidation(t *testing.T) {
	store := newTestStore(t, "validation")
	ctx := context.Background()

	tests := []struct {
		name  string
		rule  models.AlertRule
		field string
	}{
		{"missing symbol", models.AlertRule{AlertPrice: 1, Direction: models.DirectionAbove, Label: "x"}, "symbol"},
		{"blank symbol", models.AlertRule{Symbol: "  ", AlertPrice: 1, Direction: models.DirectionAbove, Label: "x"}, "symbol"},
		{"NaN price", models.AlertRule{Symbol: "EURUSD", AlertPrice: math.NaN(), Direction: models.DirectionAbove, Label: "x"}, "alert_price"},
		{"infinite price", models.AlertRule{Symbol: "EURUSD", AlertPrice: math.Inf(1), Direction: models.DirectionBelow, Label: "x"}, "alert_price"},
		{"bad direction", models.AlertRule{Symbol: "EURUSD", AlertPrice: 1, Direction: "sideways", Label: "x"}, "direction"},
		{"missing label", models.AlertRule{Symbol: "EURUSD", AlertPrice: 1, Direction: models.DirectionBelow}, "label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.rule)
			var ve *apperrors.ValidationError
			if !apperrors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	alerts, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("invalid input committed %d alerts", len(alerts))
	}
}

func TestRemoveAndToggleUnknownID(t *testing.T) {
	store := newTestStore(t, "idempotent")
	ctx := context.Background()

	alert, err := store.Create(ctx, models.AlertRule{
		Symbol: "GBPUSD", AlertPrice: 1.265, Direction: models.DirectionBelow, Label: "Key Level",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Remove(ctx, alert.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, alert.ID); err != nil {
		t.Errorf("second Remove should be a no-op, got %v", err)
	}
	if err := store.ToggleActive(ctx, "does-not-exist"); err != nil {
		t.Errorf("ToggleActive on unknown id should be a no-op, got %v", err)
	}
	if _, err := store.Get(ctx, alert.ID); !apperrors.Is(err, apperrors.ErrAlertNotFound) {
		t.Errorf("Get after remove = %v, want ErrAlertNotFound", err)
	}
}

func TestAlertsAreScopedToUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	ctx := context.Background()

	alice, err := NewSQLiteStore(path, "alice")
	if err != nil {
		t.Fatalf("open alice: %v", err)
	}
	defer alice.Close()
	bob, err := NewSQLiteStore(path, "bob")
	if err != nil {
		t.Fatalf("open bob: %v", err)
	}
	defer bob.Close()

	a, err := alice.Create(ctx, models.AlertRule{Symbol: "EURUSD", AlertPrice: 1.2, Direction: models.DirectionAbove, Label: "Alice"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bobAlerts, err := bob.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bobAlerts) != 0 {
		t.Errorf("bob sees %d alerts, want 0", len(bobAlerts))
	}

	// Bob cannot mutate Alice's alert
	if err := bob.ToggleActive(ctx, a.ID); err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if err := bob.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, err := alice.Get(ctx, a.ID)
	if err != nil || !got.IsActive {
		t.Errorf("alice's alert changed by bob: %+v, %v", got, err)
	}
}

func TestAlertsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path, "local")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	created, err := first.Create(ctx, models.AlertRule{Symbol: "XAUUSD", AlertPrice: 2000, Direction: models.DirectionBelow, Label: "Support"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := first.SetActive(ctx, created.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(path, "local")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.IsActive || got.Label != "Support" || got.AlertPrice != 2000 {
		t.Errorf("reopened alert = %+v", got)
	}
}

func TestDialectBind(t *testing.T) {
	q := "UPDATE alerts SET is_active = ? WHERE id = ? AND user_id = ?"
	if got := sqliteDialect.bind(q); got != q {
		t.Errorf("sqlite bind changed query: %q", got)
	}
	want := "UPDATE alerts SET is_active = $1 WHERE id = $2 AND user_id = $3"
	if got := postgresDialect.bind(q); got != want {
		t.Errorf("postgres bind = %q, want %q", got, want)
	}
}
