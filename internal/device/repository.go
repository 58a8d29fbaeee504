package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a device by its unique identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// List retrieves all devices ordered by name.
	List(ctx context.Context) ([]Device, error)

	// ListByType retrieves all devices of a specific device type.
	ListByType(ctx context.Context, deviceTypeID string) ([]Device, error)

	// Create inserts a new device.
	// Returns ErrDeviceExists if a device with the same ID already exists.
	Create(ctx context.Context, device *Device) error

	// Update modifies an existing device.
	// Returns ErrDeviceNotFound if the device does not exist.
	Update(ctx context.Context, device *Device) error

	// Delete removes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error

	// UpdateStatusTx updates the status and last_updated fields within an
	// existing transaction. Used by the status changer so that the device
	// write and the audit append commit or fail together.
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string, lastUpdated time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, name, device_type_id, latitude, longitude, status, last_updated, created_at"

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := "SELECT " + deviceColumns + " FROM devices WHERE id = ?"

	row := r.db.QueryRowContext(ctx, query, id)
	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return device, nil
}

// List retrieves all devices.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	query := "SELECT " + deviceColumns + " FROM devices ORDER BY name"
	return r.queryDevices(ctx, query)
}

// ListByType retrieves all devices of a specific device type.
func (r *SQLiteRepository) ListByType(ctx context.Context, deviceTypeID string) ([]Device, error) {
	query := "SELECT " + deviceColumns + " FROM devices WHERE device_type_id = ? ORDER BY name"
	return r.queryDevices(ctx, query, deviceTypeID)
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	now := time.Now().UTC()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	if device.LastUpdated.IsZero() {
		device.LastUpdated = now
	}

	query := `
		INSERT INTO devices (id, name, device_type_id, latitude, longitude, status, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.Name, device.DeviceTypeID,
		device.Latitude, device.Longitude, device.Status,
		device.LastUpdated.Format(time.RFC3339),
		device.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return ErrDeviceExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", ErrTypeNotFound, device.DeviceTypeID)
		}
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// Update modifies an existing device's descriptive fields.
// Status changes go through UpdateStatusTx so the audit trail stays complete.
func (r *SQLiteRepository) Update(ctx context.Context, device *Device) error {
	query := `
		UPDATE devices
		SET name = ?, device_type_id = ?, latitude = ?, longitude = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		device.Name, device.DeviceTypeID, device.Latitude, device.Longitude, device.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", ErrTypeNotFound, device.DeviceTypeID)
		}
		return fmt.Errorf("updating device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// UpdateStatusTx updates the status and last_updated fields within a transaction.
func (r *SQLiteRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string, lastUpdated time.Time) error {
	result, err := tx.ExecContext(ctx,
		"UPDATE devices SET status = ?, last_updated = ? WHERE id = ?",
		status, lastUpdated.Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating device status: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// queryDevices executes a query and scans all device results.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// rowScanner is an interface for sql.Row and sql.Rows Scan methods.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device from a row.
func scanDevice(s rowScanner) (*Device, error) {
	var d Device
	var lastUpdated, createdAt string

	err := s.Scan(&d.ID, &d.Name, &d.DeviceTypeID,
		&d.Latitude, &d.Longitude, &d.Status,
		&lastUpdated, &createdAt)
	if err != nil {
		return nil, err
	}

	d.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated) //nolint:errcheck // format is controlled
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)     //nolint:errcheck // format is controlled

	return &d, nil
}

// isPrimaryKeyViolation checks if a SQLite error is a PRIMARY KEY constraint violation.
func isPrimaryKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: devices.id")
}

// isUniqueViolation checks if a SQLite error is any UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
