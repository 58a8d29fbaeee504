package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nimbushome/nimbus-core/internal/infrastructure/database"
	_ "github.com/nimbushome/nimbus-core/migrations"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     false,
		BusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func seedType(t *testing.T, db *database.DB, id string) {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO device_types (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, "type-"+id, now, now)
	if err != nil {
		t.Fatalf("seeding device type: %v", err)
	}
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	seedType(t, db, "dtp-lamp0001")

	rule := &Rule{
		DeviceTypeID:     "dtp-lamp0001",
		WeatherCondition: ConditionTemperature,
		ConditionValue:   "30.0",
		Operator:         OperatorGreater,
		NewStatus:        "OFF",
	}
	if err := repo.Create(ctx, rule); err != nil {
		t.Fatalf("creating rule: %v", err)
	}
	if rule.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.GetByID(ctx, rule.ID)
	if err != nil {
		t.Fatalf("getting rule: %v", err)
	}
	if got.WeatherCondition != ConditionTemperature || got.ConditionValue != "30.0" ||
		got.Operator != OperatorGreater || got.NewStatus != "OFF" {
		t.Fatalf("unexpected rule: %+v", got)
	}
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)

	_, err := repo.GetByID(context.Background(), "scn-missing1")
	if !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestSQLiteRepository_CreateUnknownType(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)

	rule := &Rule{
		DeviceTypeID:     "dtp-nothere1",
		WeatherCondition: ConditionHumidity,
		ConditionValue:   "80",
		Operator:         OperatorGreater,
		NewStatus:        "ON",
	}
	err := repo.Create(context.Background(), rule)
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for unknown device type, got %v", err)
	}
}

func TestSQLiteRepository_ListByDeviceType(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	seedType(t, db, "dtp-lamp0001")
	seedType(t, db, "dtp-fan00001")

	for _, r := range []*Rule{
		{DeviceTypeID: "dtp-lamp0001", WeatherCondition: ConditionCloudiness, ConditionValue: "75", Operator: OperatorGreater, NewStatus: "ON"},
		{DeviceTypeID: "dtp-lamp0001", WeatherCondition: ConditionSunset, ConditionValue: "-", Operator: OperatorGreater, NewStatus: "ON"},
		{DeviceTypeID: "dtp-fan00001", WeatherCondition: ConditionTemperature, ConditionValue: "28", Operator: OperatorGreater, NewStatus: "ON"},
	} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("creating rule: %v", err)
		}
	}

	lamp, err := repo.ListByDeviceType(ctx, "dtp-lamp0001")
	if err != nil {
		t.Fatalf("listing rules: %v", err)
	}
	if len(lamp) != 2 {
		t.Fatalf("expected 2 lamp rules, got %d", len(lamp))
	}

	none, err := repo.ListByDeviceType(ctx, "dtp-unknown1")
	if err != nil {
		t.Fatalf("listing rules: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rules, got %d", len(none))
	}
}

func TestSQLiteRepository_UpdateAndDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	seedType(t, db, "dtp-lamp0001")

	rule := &Rule{
		DeviceTypeID:     "dtp-lamp0001",
		WeatherCondition: ConditionWindSpeed,
		ConditionValue:   "12.5",
		Operator:         OperatorGreater,
		NewStatus:        "OFF",
	}
	if err := repo.Create(ctx, rule); err != nil {
		t.Fatalf("creating rule: %v", err)
	}

	rule.ConditionValue = "15.0"
	if err := repo.Update(ctx, rule); err != nil {
		t.Fatalf("updating rule: %v", err)
	}

	got, err := repo.GetByID(ctx, rule.ID)
	if err != nil {
		t.Fatalf("getting rule: %v", err)
	}
	if got.ConditionValue != "15.0" {
		t.Fatalf("expected updated value, got %q", got.ConditionValue)
	}

	if err := repo.Delete(ctx, rule.ID); err != nil {
		t.Fatalf("deleting rule: %v", err)
	}
	if err := repo.Delete(ctx, rule.ID); !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("expected ErrRuleNotFound on second delete, got %v", err)
	}
}

func TestSQLiteRepository_UpdateMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db.DB)

	err := repo.Update(context.Background(), &Rule{
		ID:               "scn-missing1",
		DeviceTypeID:     "dtp-lamp0001",
		WeatherCondition: ConditionHumidity,
		ConditionValue:   "50",
		Operator:         OperatorLess,
		NewStatus:        "ON",
	})
	if !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("expected ErrRuleNotFound, got %v", err)
	}
}
