package scenario

import (
	"context"
	"testing"
)

// mockRepository is an in-memory Repository that counts lookups.
type mockRepository struct {
	rules       map[string]*Rule
	listCalls   int
	byTypeCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{rules: make(map[string]*Rule)}
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*Rule, error) {
	r, ok := m.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepository) List(_ context.Context) ([]Rule, error) {
	m.listCalls++
	out := make([]Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRepository) ListByDeviceType(_ context.Context, deviceTypeID string) ([]Rule, error) {
	m.byTypeCalls++
	var out []Rule
	for _, r := range m.rules {
		if r.DeviceTypeID == deviceTypeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, rule *Rule) error {
	if rule.ID == "" {
		rule.ID = GenerateID()
	}
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *mockRepository) Update(_ context.Context, rule *Rule) error {
	if _, ok := m.rules[rule.ID]; !ok {
		return ErrRuleNotFound
	}
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.rules[id]; !ok {
		return ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func TestRegistry_ServesFromCache(t *testing.T) {
	repo := newMockRepository()
	repo.rules["scn-aaaa0001"] = &Rule{
		ID: "scn-aaaa0001", DeviceTypeID: "dtp-lamp0001",
		WeatherCondition: ConditionTemperature, ConditionValue: "25", Operator: OperatorGreater, NewStatus: "ON",
	}

	reg := NewRegistry(repo)
	ctx := context.Background()

	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("refreshing cache: %v", err)
	}

	for i := 0; i < 3; i++ {
		rules, err := reg.RulesForDeviceType(ctx, "dtp-lamp0001", "")
		if err != nil {
			t.Fatalf("looking up rules: %v", err)
		}
		if len(rules) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(rules))
		}
	}
	if repo.byTypeCalls != 0 {
		t.Fatalf("expected cached lookups, repository hit %d times", repo.byTypeCalls)
	}
}

func TestRegistry_RebuildsAfterWrite(t *testing.T) {
	repo := newMockRepository()
	reg := NewRegistry(repo)
	ctx := context.Background()

	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("refreshing cache: %v", err)
	}

	rule := validRule()
	if err := reg.CreateRule(ctx, rule); err != nil {
		t.Fatalf("creating rule: %v", err)
	}

	rules, err := reg.RulesForDeviceType(ctx, rule.DeviceTypeID, "")
	if err != nil {
		t.Fatalf("looking up rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule after create, got %d", len(rules))
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected one rebuild after write, List hit %d times", repo.listCalls)
	}

	// Rebuilt view keeps serving from memory.
	if _, err := reg.RulesForDeviceType(ctx, rule.DeviceTypeID, ""); err != nil {
		t.Fatalf("looking up rules: %v", err)
	}
	if repo.listCalls != 2 || repo.byTypeCalls != 0 {
		t.Fatalf("expected cached lookups after rebuild, List=%d ByType=%d", repo.listCalls, repo.byTypeCalls)
	}
}

func TestRegistry_CreateValidates(t *testing.T) {
	reg := NewRegistry(newMockRepository())

	rule := validRule()
	rule.Operator = "!="
	if err := reg.CreateRule(context.Background(), rule); err == nil {
		t.Fatal("expected validation error for unknown operator")
	}
}

func TestRegistry_UnknownTypeReturnsEmpty(t *testing.T) {
	reg := NewRegistry(newMockRepository())
	ctx := context.Background()

	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("refreshing cache: %v", err)
	}

	rules, err := reg.RulesForDeviceType(ctx, "dtp-nothere1", "")
	if err != nil {
		t.Fatalf("looking up rules: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("expected no rules, got %d", len(rules))
	}
}
