package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TypeRepository defines the interface for device type persistence.
type TypeRepository interface {
	// GetByID retrieves a device type by ID.
	// Returns ErrTypeNotFound if the type does not exist.
	GetByID(ctx context.Context, id string) (*DeviceType, error)

	// GetByName retrieves a device type by its unique name.
	GetByName(ctx context.Context, name string) (*DeviceType, error)

	// List retrieves all device types ordered by name.
	List(ctx context.Context) ([]DeviceType, error)

	// Create inserts a new device type.
	// Returns ErrTypeNameExists if the name is already taken.
	Create(ctx context.Context, deviceType *DeviceType) error

	// Update modifies an existing device type.
	// Returns ErrTypeNameExists if the new name collides with another type.
	Update(ctx context.Context, deviceType *DeviceType) error

	// Delete removes a device type by ID.
	// Returns ErrTypeInUse if devices or scenarios still reference it.
	Delete(ctx context.Context, id string) error
}

// SQLiteTypeRepository implements TypeRepository using SQLite.
type SQLiteTypeRepository struct {
	db *sql.DB
}

// NewSQLiteTypeRepository creates a new SQLite-backed device type repository.
func NewSQLiteTypeRepository(db *sql.DB) *SQLiteTypeRepository {
	return &SQLiteTypeRepository{db: db}
}

// GetByID retrieves a device type by ID.
func (r *SQLiteTypeRepository) GetByID(ctx context.Context, id string) (*DeviceType, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM device_types WHERE id = ?", id)
	return scanDeviceType(row)
}

// GetByName retrieves a device type by its unique name.
func (r *SQLiteTypeRepository) GetByName(ctx context.Context, name string) (*DeviceType, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM device_types WHERE name = ?", name)
	return scanDeviceType(row)
}

// List retrieves all device types.
func (r *SQLiteTypeRepository) List(ctx context.Context) ([]DeviceType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM device_types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying device types: %w", err)
	}
	defer rows.Close()

	var types []DeviceType
	for rows.Next() {
		var t DeviceType
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning device type: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device types: %w", err)
	}

	if types == nil {
		types = []DeviceType{}
	}
	return types, nil
}

// Create inserts a new device type.
func (r *SQLiteTypeRepository) Create(ctx context.Context, deviceType *DeviceType) error {
	if deviceType.ID == "" {
		deviceType.ID = GenerateTypeID()
	}

	now := time.Now().UTC()
	deviceType.CreatedAt = now
	deviceType.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO device_types (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		deviceType.ID, deviceType.Name,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTypeNameExists
		}
		return fmt.Errorf("creating device type: %w", err)
	}
	return nil
}

// Update modifies an existing device type.
func (r *SQLiteTypeRepository) Update(ctx context.Context, deviceType *DeviceType) error {
	now := time.Now().UTC()
	deviceType.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		"UPDATE device_types SET name = ?, updated_at = ? WHERE id = ?",
		deviceType.Name, now.Format(time.RFC3339), deviceType.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTypeNameExists
		}
		return fmt.Errorf("updating device type: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrTypeNotFound
	}
	return nil
}

// Delete removes a device type by ID.
func (r *SQLiteTypeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM device_types WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTypeInUse
		}
		return fmt.Errorf("deleting device type: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrTypeNotFound
	}
	return nil
}

// scanDeviceType scans a device type from a single row.
func scanDeviceType(row *sql.Row) (*DeviceType, error) {
	var t DeviceType
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTypeNotFound
		}
		return nil, fmt.Errorf("scanning device type: %w", err)
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &t, nil
}
