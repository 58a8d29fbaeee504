package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatusChangeRepository defines the interface for the status change audit trail.
// The trail is append-only: entries are never updated or deleted.
type StatusChangeRepository interface {
	// AppendTx inserts a status change record within an existing transaction.
	// Used by the status changer so that the device write and the audit
	// append commit or fail together.
	AppendTx(ctx context.Context, tx *sql.Tx, change *StatusChange) error

	// ListByDevice retrieves status changes for a device, newest first.
	// limit <= 0 means no limit.
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]StatusChange, error)

	// List retrieves all status changes, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]StatusChange, error)
}

// SQLiteStatusChangeRepository implements StatusChangeRepository using SQLite.
type SQLiteStatusChangeRepository struct {
	db *sql.DB
}

// NewStatusChangeRepository creates a new SQLite-backed status change repository.
func NewStatusChangeRepository(db *sql.DB) *SQLiteStatusChangeRepository {
	return &SQLiteStatusChangeRepository{db: db}
}

// AppendTx inserts a status change record within a transaction.
func (r *SQLiteStatusChangeRepository) AppendTx(ctx context.Context, tx *sql.Tx, change *StatusChange) error {
	if change.ID == "" {
		change.ID = GenerateChangeID()
	}

	var scenarioID sql.NullString
	if change.ScenarioID != nil {
		scenarioID = sql.NullString{String: *change.ScenarioID, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO status_changes (id, device_id, old_status, new_status, changed_at, cause, scenario_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		change.ID, change.DeviceID, change.OldStatus, change.NewStatus,
		change.ChangedAt.Format(time.RFC3339), change.Cause, scenarioID,
	)
	if err != nil {
		return fmt.Errorf("appending status change: %w", err)
	}
	return nil
}

// ListByDevice retrieves status changes for a device, newest first.
func (r *SQLiteStatusChangeRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]StatusChange, error) {
	query := `SELECT id, device_id, old_status, new_status, changed_at, cause, scenario_id
		FROM status_changes WHERE device_id = ? ORDER BY changed_at DESC`
	args := []any{deviceID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryChanges(ctx, query, args...)
}

// List retrieves all status changes, newest first.
func (r *SQLiteStatusChangeRepository) List(ctx context.Context, limit int) ([]StatusChange, error) {
	query := `SELECT id, device_id, old_status, new_status, changed_at, cause, scenario_id
		FROM status_changes ORDER BY changed_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryChanges(ctx, query, args...)
}

// queryChanges executes a query and scans all status change results.
func (r *SQLiteStatusChangeRepository) queryChanges(ctx context.Context, query string, args ...any) ([]StatusChange, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying status changes: %w", err)
	}
	defer rows.Close()

	var changes []StatusChange
	for rows.Next() {
		var c StatusChange
		var changedAt string
		var scenarioID sql.NullString

		if err := rows.Scan(&c.ID, &c.DeviceID, &c.OldStatus, &c.NewStatus,
			&changedAt, &c.Cause, &scenarioID); err != nil {
			return nil, fmt.Errorf("scanning status change: %w", err)
		}

		c.ChangedAt, _ = time.Parse(time.RFC3339, changedAt) //nolint:errcheck // format is controlled
		if scenarioID.Valid {
			c.ScenarioID = &scenarioID.String
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status changes: %w", err)
	}

	if changes == nil {
		changes = []StatusChange{}
	}
	return changes, nil
}
