package scenario

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for scenario rule persistence.
type Repository interface {
	// GetByID retrieves a rule by ID.
	// Returns ErrRuleNotFound if the rule does not exist.
	GetByID(ctx context.Context, id string) (*Rule, error)

	// List retrieves all rules.
	List(ctx context.Context) ([]Rule, error)

	// ListByDeviceType retrieves all rules for a device type.
	ListByDeviceType(ctx context.Context, deviceTypeID string) ([]Rule, error)

	// Create inserts a new rule. The ID is generated if empty.
	Create(ctx context.Context, rule *Rule) error

	// Update modifies an existing rule.
	// Returns ErrRuleNotFound if the rule does not exist.
	Update(ctx context.Context, rule *Rule) error

	// Delete removes a rule by ID.
	// Returns ErrRuleNotFound if the rule does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed rule repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const ruleColumns = "id, device_type_id, weather_condition, condition_value, operator, new_status, created_at, updated_at"

// GetByID retrieves a rule by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Rule, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ruleColumns+" FROM scenarios WHERE id = ?", id)

	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("querying rule by id: %w", err)
	}
	return rule, nil
}

// List retrieves all rules.
func (r *SQLiteRepository) List(ctx context.Context) ([]Rule, error) {
	return r.queryRules(ctx, "SELECT "+ruleColumns+" FROM scenarios ORDER BY created_at")
}

// ListByDeviceType retrieves all rules for a device type.
func (r *SQLiteRepository) ListByDeviceType(ctx context.Context, deviceTypeID string) ([]Rule, error) {
	return r.queryRules(ctx,
		"SELECT "+ruleColumns+" FROM scenarios WHERE device_type_id = ? ORDER BY created_at",
		deviceTypeID)
}

// Create inserts a new rule.
func (r *SQLiteRepository) Create(ctx context.Context, rule *Rule) error {
	if rule.ID == "" {
		rule.ID = GenerateID()
	}

	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, device_type_id, weather_condition, condition_value, operator, new_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.DeviceTypeID, rule.WeatherCondition, rule.ConditionValue,
		rule.Operator, rule.NewStatus,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: device type %s does not exist", ErrInvalidRule, rule.DeviceTypeID)
		}
		return fmt.Errorf("creating rule: %w", err)
	}
	return nil
}

// Update modifies an existing rule.
func (r *SQLiteRepository) Update(ctx context.Context, rule *Rule) error {
	now := time.Now().UTC()
	rule.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE scenarios
		 SET device_type_id = ?, weather_condition = ?, condition_value = ?, operator = ?, new_status = ?, updated_at = ?
		 WHERE id = ?`,
		rule.DeviceTypeID, rule.WeatherCondition, rule.ConditionValue,
		rule.Operator, rule.NewStatus, now.Format(time.RFC3339), rule.ID,
	)
	if err != nil {
		return fmt.Errorf("updating rule: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// queryRules executes a query and scans all rule results.
func (r *SQLiteRepository) queryRules(ctx context.Context, query string, args ...any) ([]Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	if rules == nil {
		rules = []Rule{}
	}
	return rules, nil
}

// rowScanner is an interface for sql.Row and sql.Rows Scan methods.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRule scans a rule from a row.
func scanRule(s rowScanner) (*Rule, error) {
	var r Rule
	var createdAt, updatedAt string

	err := s.Scan(&r.ID, &r.DeviceTypeID, &r.WeatherCondition, &r.ConditionValue,
		&r.Operator, &r.NewStatus, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &r, nil
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
