package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/models"
)

// dialect captures what differs between SQL backends.
type dialect struct {
	name     string
	schema   string
	numbered bool // $1, $2 placeholders instead of ?
}

// bind rewrites ? placeholders for the dialect.
func (d dialect) bind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SQLStore implements AlertStore on database/sql. Rows are scoped to a
// single owning user.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	userID  string
	now     func() time.Time

	// mu serializes mutations so interleaved callers never observe a
	// half-applied write.
	mu sync.Mutex
}

func newSQLStore(db *sql.DB, d dialect, userID string) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		dialect: d,
		userID:  userID,
		now:     time.Now,
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema() error {
	_, err := s.db.Exec(s.dialect.schema)
	return err
}

// UserID returns the owning user this store is scoped to.
func (s *SQLStore) UserID() string {
	return s.userID
}

// Driver returns the backend name.
func (s *SQLStore) Driver() string {
	return s.dialect.name
}

// Create validates the rule and persists a new active alert.
func (s *SQLStore) Create(ctx context.Context, rule models.AlertRule) (*models.Alert, error) {
	if err := ValidateRule(rule); err != nil {
		return nil, err
	}

	alert := &models.Alert{
		ID:         uuid.NewString(),
		UserID:     s.userID,
		Symbol:     rule.Symbol,
		AlertPrice: rule.AlertPrice,
		Direction:  rule.Direction,
		Label:      rule.Label,
		IsActive:   true,
		CreatedAt:  s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.dialect.bind(`
		INSERT INTO alerts (id, user_id, symbol, alert_price, direction, label, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		alert.ID, alert.UserID, alert.Symbol, alert.AlertPrice,
		string(alert.Direction), alert.Label, alert.IsActive, alert.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, apperrors.NewPersistenceError("create", alert.ID, err)
	}

	return alert, nil
}

// Get returns a single alert by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*models.Alert, error) {
	query := s.dialect.bind(`
		SELECT id, user_id, symbol, alert_price, direction, label, is_active, created_at
		FROM alerts
		WHERE id = ? AND user_id = ?
	`)
	row := s.db.QueryRowContext(ctx, query, id, s.userID)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrAlertNotFound
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("get", id, err)
	}
	return alert, nil
}

// List returns the user's alerts in insertion order.
func (s *SQLStore) List(ctx context.Context) ([]models.Alert, error) {
	query := s.dialect.bind(`
		SELECT id, user_id, symbol, alert_price, direction, label, is_active, created_at
		FROM alerts
		WHERE user_id = ?
		ORDER BY seq ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, s.userID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list", "", err)
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("list", "", err)
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list", "", err)
	}
	return alerts, nil
}

// Remove deletes an alert. Removing an unknown ID is not an error.
func (s *SQLStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.dialect.bind(`DELETE FROM alerts WHERE id = ? AND user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, id, s.userID); err != nil {
		return apperrors.NewPersistenceError("remove", id, err)
	}
	return nil
}

// ToggleActive flips is_active. Unknown IDs are a no-op.
func (s *SQLStore) ToggleActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.dialect.bind(`UPDATE alerts SET is_active = NOT is_active WHERE id = ? AND user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, id, s.userID); err != nil {
		return apperrors.NewPersistenceError("toggle", id, err)
	}
	return nil
}

// SetActive sets is_active explicitly. Unknown IDs are a no-op.
func (s *SQLStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.dialect.bind(`UPDATE alerts SET is_active = ? WHERE id = ? AND user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, active, id, s.userID); err != nil {
		return apperrors.NewPersistenceError("set_active", id, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		alert     models.Alert
		direction string
		createdAt int64
	)
	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.Symbol,
		&alert.AlertPrice,
		&direction,
		&alert.Label,
		&alert.IsActive,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	alert.Direction = models.Direction(direction)
	alert.CreatedAt = time.Unix(0, createdAt).UTC()
	return &alert, nil
}
