package scenario

import (
	"context"
	"fmt"
	"sync"
)

// Lookup retrieves the rules that apply to a device type. It is implemented
// by the local Registry and by the HTTP Client, so callers can run against
// an embedded rule store or a remote scenario service without caring which.
type Lookup interface {
	// RulesForDeviceType returns all rules bound to the given device type.
	// The credential is forwarded to remote implementations and ignored by
	// local ones.
	RulesForDeviceType(ctx context.Context, deviceTypeID, credential string) ([]Rule, error)
}

// Logger is a minimal logging interface for the registry.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Registry provides cached access to scenario rules keyed by device type.
// It fronts a Repository and keeps per-type rule lists in memory so the
// evaluation pass does not hit the database for every device.
type Registry struct {
	repo   Repository
	logger Logger

	cacheMu  sync.RWMutex
	cache    map[string][]Rule
	complete bool
}

// NewRegistry creates a registry backed by the given repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		logger: noopLogger{},
		cache:  make(map[string][]Rule),
	}
}

// SetLogger sets the registry logger. A nil logger restores the no-op default.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// RefreshCache reloads every rule from the repository into the cache.
func (r *Registry) RefreshCache(ctx context.Context) error {
	rules, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("refreshing rule cache: %w", err)
	}

	grouped := make(map[string][]Rule)
	for _, rule := range rules {
		grouped[rule.DeviceTypeID] = append(grouped[rule.DeviceTypeID], rule)
	}

	r.cacheMu.Lock()
	r.cache = grouped
	r.complete = true
	r.cacheMu.Unlock()

	r.logger.Debug("rule cache refreshed", "rules", len(rules), "device_types", len(grouped))
	return nil
}

// RulesForDeviceType returns the rules for a device type, serving from the
// cache. A partial cache (after a rule write) is rebuilt from the
// repository first, so lookups return to memory speed after one reload.
// The credential is unused for local lookups.
func (r *Registry) RulesForDeviceType(ctx context.Context, deviceTypeID, _ string) ([]Rule, error) {
	r.cacheMu.RLock()
	complete := r.complete
	r.cacheMu.RUnlock()

	if !complete {
		if err := r.RefreshCache(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
		}
	}

	r.cacheMu.RLock()
	rules := r.cache[deviceTypeID]
	out := make([]Rule, len(rules))
	copy(out, rules)
	r.cacheMu.RUnlock()
	return out, nil
}

// GetRule retrieves a single rule by ID from the repository.
func (r *Registry) GetRule(ctx context.Context, id string) (*Rule, error) {
	return r.repo.GetByID(ctx, id)
}

// ListRules returns all rules from the repository.
func (r *Registry) ListRules(ctx context.Context) ([]Rule, error) {
	return r.repo.List(ctx)
}

// ListRulesByDeviceType returns one device type's rules straight from the
// repository. Management reads use this; the evaluation path goes through
// the cached RulesForDeviceType instead.
func (r *Registry) ListRulesByDeviceType(ctx context.Context, deviceTypeID string) ([]Rule, error) {
	return r.repo.ListByDeviceType(ctx, deviceTypeID)
}

// CreateRule validates and persists a new rule, then invalidates the cache.
func (r *Registry) CreateRule(ctx context.Context, rule *Rule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}
	if rule.ID == "" {
		rule.ID = GenerateID()
	}
	if err := r.repo.Create(ctx, rule); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// UpdateRule validates and persists changes to a rule, then invalidates
// the cache.
func (r *Registry) UpdateRule(ctx context.Context, rule *Rule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}
	if err := r.repo.Update(ctx, rule); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// DeleteRule removes a rule and invalidates the cache.
func (r *Registry) DeleteRule(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// invalidate drops the cached view. The next lookup rebuilds it from the
// repository.
func (r *Registry) invalidate() {
	r.cacheMu.Lock()
	r.cache = make(map[string][]Rule)
	r.complete = false
	r.cacheMu.Unlock()
}
