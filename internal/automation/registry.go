package automation

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry and Engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the rule definitions known to the engine. Rules are
// stored and returned as deep copies so callers cannot alter the cache.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Rule
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a rule registry. repo may be nil when rules are only
// added programmatically.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Rule),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache replaces the cached rules with those from the repository.
func (r *Registry) RefreshCache(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	rules, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	cache := make(map[string]*Rule, len(rules))
	for i := range rules {
		cache[rules[i].UID] = rules[i].DeepCopy()
	}

	r.cacheMu.Lock()
	r.cache = cache
	r.cacheMu.Unlock()

	r.logger.Info("rule cache refreshed", "count", len(rules))
	return nil
}

// Add validates and stores a new rule.
func (r *Registry) Add(rule *Rule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if _, exists := r.cache[rule.UID]; exists {
		return fmt.Errorf("%w: %s", ErrRuleExists, rule.UID)
	}
	r.cache[rule.UID] = rule.DeepCopy()
	return nil
}

// Remove deletes a rule.
func (r *Registry) Remove(uid string) error {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if _, ok := r.cache[uid]; !ok {
		return ErrRuleNotFound
	}
	delete(r.cache, uid)
	return nil
}

// Get returns a copy of the rule with the given UID.
func (r *Registry) Get(uid string) (*Rule, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[uid]
	r.cacheMu.RUnlock()

	if !ok {
		return nil, ErrRuleNotFound
	}
	return cached.DeepCopy(), nil
}

// List returns copies of all rules sorted by UID.
func (r *Registry) List() []Rule {
	r.cacheMu.RLock()
	rules := make([]Rule, 0, len(r.cache))
	for _, rule := range r.cache {
		rules = append(rules, *rule.DeepCopy())
	}
	r.cacheMu.RUnlock()

	sort.Slice(rules, func(i, j int) bool { return rules[i].UID < rules[j].UID })
	return rules
}

// Count returns the number of rules.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
