package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"
)

// maxRuleExecutionTime bounds a single rule evaluation.
const maxRuleExecutionTime = 30 * time.Second

// boundModule pairs a module with the handler built for it and the factory
// that must release it.
type boundModule struct {
	module  Module
	factory HandlerFactory
	handler ModuleHandler
}

// activeRule is a rule whose handlers are live.
type activeRule struct {
	rule       *Rule
	triggers   []boundModule
	conditions []boundModule
	actions    []boundModule

	// runMu serialises evaluations of one rule.
	runMu sync.Mutex
}

// Engine binds rules to module handlers and evaluates them when a trigger
// fires: all conditions must pass, then the actions run in order.
//
// Thread Safety: all methods are safe for concurrent use. Evaluations of
// different rules run concurrently; evaluations of one rule are serialised.
type Engine struct {
	registry *Registry
	mqtt     MQTTClient
	logger   Logger

	mu        sync.RWMutex
	factories map[string]HandlerFactory // by module type UID
	active    map[string]*activeRule    // by rule UID
}

// NewEngine creates a rule engine.
//
// Parameters:
//   - registry: rule definitions
//   - mqtt: client for rule-fired events (may be nil)
//   - logger: Logger instance
func NewEngine(registry *Registry, mqtt MQTTClient, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		registry:  registry,
		mqtt:      mqtt,
		logger:    logger,
		factories: make(map[string]HandlerFactory),
		active:    make(map[string]*activeRule),
	}
}

// RegisterFactory makes f responsible for the module types it lists. A type
// already claimed by another factory is an error.
func (e *Engine) RegisterFactory(f HandlerFactory) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range f.Types() {
		if existing, ok := e.factories[t]; ok && existing != f {
			return fmt.Errorf("module type %s already registered", t)
		}
	}
	for _, t := range f.Types() {
		e.factories[t] = f
	}
	return nil
}

// Start reloads the registry from its repository and activates every rule.
// Rules that fail to activate are logged and reported together; the others
// stay active.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.registry.RefreshCache(ctx); err != nil {
		return err
	}

	var errs []error
	for _, rule := range e.registry.List() {
		if err := e.activate(&rule); err != nil {
			e.logger.Error("rule activation failed", "rule_uid", rule.UID, "error", err)
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.UID, err))
		}
	}
	e.logger.Info("rule engine started", "rules", len(e.ActiveRules()))
	return errors.Join(errs...)
}

// Stop deactivates every rule.
func (e *Engine) Stop() {
	e.mu.Lock()
	active := e.active
	e.active = make(map[string]*activeRule)
	e.mu.Unlock()

	for _, ar := range active {
		e.release(ar)
	}
}

// AddRule registers and activates a rule.
func (e *Engine) AddRule(rule *Rule) error {
	if err := e.registry.Add(rule); err != nil {
		return err
	}
	if err := e.activate(rule); err != nil {
		_ = e.registry.Remove(rule.UID) //nolint:errcheck // just added
		return err
	}
	return nil
}

// RemoveRule deactivates and forgets a rule.
func (e *Engine) RemoveRule(uid string) error {
	e.mu.Lock()
	ar, ok := e.active[uid]
	delete(e.active, uid)
	e.mu.Unlock()

	if ok {
		e.release(ar)
	}
	return e.registry.Remove(uid)
}

// ActiveRules returns the UIDs of rules with live handlers.
func (e *Engine) ActiveRules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	uids := make([]string, 0, len(e.active))
	for uid := range e.active {
		uids = append(uids, uid)
	}
	return uids
}

// TriggerRule fires a rule through its first manual trigger, as if the
// trigger had detected its event.
func (e *Engine) TriggerRule(ctx context.Context, uid string, outputs map[string]any) error {
	e.mu.RLock()
	ar, ok := e.active[uid]
	e.mu.RUnlock()
	if !ok {
		return ErrRuleNotFound
	}
	if !ar.rule.IsEnabled() {
		return ErrRuleDisabled
	}
	for _, t := range ar.triggers {
		if mt, ok := t.handler.(ManualTrigger); ok {
			mt.Trigger(ctx, outputs)
			return nil
		}
	}
	return ErrNoManualTrigger
}

// activate builds the handlers of rule. On failure every handler built so
// far is released.
func (e *Engine) activate(rule *Rule) error {
	ar := &activeRule{rule: rule.DeepCopy()}

	for _, m := range rule.Modules() {
		b, err := e.bind(m, rule.UID)
		if err != nil {
			e.release(ar)
			return err
		}
		switch m.Kind {
		case KindTrigger:
			ar.triggers = append(ar.triggers, b)
		case KindCondition:
			ar.conditions = append(ar.conditions, b)
		case KindAction:
			ar.actions = append(ar.actions, b)
		}
	}

	uid := rule.UID
	for _, t := range ar.triggers {
		t.handler.(TriggerHandler).SetCallback(func(ctx context.Context, outputs map[string]any) {
			if _, err := e.run(ctx, uid, outputs); err != nil {
				e.logger.Warn("rule evaluation failed", "rule_uid", uid, "error", err)
			}
		})
	}

	e.mu.Lock()
	old := e.active[uid]
	e.active[uid] = ar
	e.mu.Unlock()
	if old != nil {
		e.release(old)
	}

	e.logger.Debug("rule activated", "rule_uid", uid,
		"triggers", len(ar.triggers), "conditions", len(ar.conditions), "actions", len(ar.actions))
	return nil
}

// bind creates the handler of one module and checks it fits the module kind.
func (e *Engine) bind(m Module, ruleUID string) (boundModule, error) {
	e.mu.RLock()
	f, ok := e.factories[m.TypeUID]
	e.mu.RUnlock()
	if !ok {
		e.logger.Error("no handler factory for module type", "rule_uid", ruleUID, "module", m.ID, "type", m.TypeUID)
		return boundModule{}, fmt.Errorf("%w: %s", ErrUnsupportedModuleType, m.TypeUID)
	}

	h, err := f.Create(m, ruleUID)
	if err != nil {
		return boundModule{}, fmt.Errorf("module %s: %w", m.ID, err)
	}

	var fits bool
	switch m.Kind {
	case KindTrigger:
		_, fits = h.(TriggerHandler)
	case KindCondition:
		_, fits = h.(ConditionHandler)
	case KindAction:
		_, fits = h.(ActionHandler)
	}
	if !fits {
		f.Unget(m, ruleUID, h)
		return boundModule{}, fmt.Errorf("%w: %s: type %s cannot be used as a %s", ErrInvalidModule, m.ID, m.TypeUID, m.Kind)
	}
	return boundModule{module: m, factory: f, handler: h}, nil
}

func (e *Engine) release(ar *activeRule) {
	for _, group := range [][]boundModule{ar.triggers, ar.conditions, ar.actions} {
		for _, b := range group {
			b.factory.Unget(b.module, ar.rule.UID, b.handler)
		}
	}
}

// Run evaluates a rule directly with the given trigger outputs.
func (e *Engine) Run(ctx context.Context, uid string, outputs map[string]any) (RuleResult, error) {
	return e.run(ctx, uid, outputs)
}

func (e *Engine) run(ctx context.Context, uid string, outputs map[string]any) (RuleResult, error) {
	e.mu.RLock()
	ar, ok := e.active[uid]
	e.mu.RUnlock()
	if !ok {
		return RuleResult{}, ErrRuleNotFound
	}
	if !ar.rule.IsEnabled() {
		return RuleResult{}, ErrRuleDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, maxRuleExecutionTime)
	defer cancel()

	ar.runMu.Lock()
	defer ar.runMu.Unlock()

	started := time.Now()
	result := RuleResult{ID: GenerateID(), RuleUID: uid}

	inputs := make(map[string]any, len(outputs)+1)
	maps.Copy(inputs, outputs)
	inputs["rule_uid"] = uid

	err := e.evaluate(ctx, ar, inputs, &result)
	result.Duration = time.Since(started).Milliseconds()
	if err != nil {
		result.Error = err.Error()
	}

	if result.Fired {
		e.publishFired(result)
	}
	e.logger.Info("rule evaluated",
		"rule_uid", uid,
		"evaluation_id", result.ID,
		"fired", result.Fired,
		"blocked_by", result.Blocked,
		"actions", result.Actions,
		"duration_ms", result.Duration,
	)
	return result, err
}

func (e *Engine) evaluate(ctx context.Context, ar *activeRule, inputs map[string]any, result *RuleResult) error {
	for _, c := range ar.conditions {
		ok, err := c.handler.(ConditionHandler).IsSatisfied(ctx, inputs)
		if err != nil {
			result.Blocked = c.module.ID
			return fmt.Errorf("condition %s: %w", c.module.ID, err)
		}
		if !ok {
			result.Blocked = c.module.ID
			return nil
		}
	}

	for _, a := range ar.actions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("action %s: %w", a.module.ID, err)
		}
		out, err := a.handler.(ActionHandler).Execute(ctx, inputs)
		if err != nil {
			return fmt.Errorf("action %s: %w", a.module.ID, err)
		}
		result.Actions++
		maps.Copy(inputs, out)
	}

	result.Fired = true
	result.Outputs = inputs
	return nil
}

// publishFired announces a fired rule on graylogic/core/automation/{uid}/fired.
func (e *Engine) publishFired(result RuleResult) {
	if e.mqtt == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.Error("marshalling rule result", "rule_uid", result.RuleUID, "error", err)
		return
	}
	topic := "graylogic/core/automation/" + result.RuleUID + "/fired"
	if err := e.mqtt.Publish(topic, payload, 1, false); err != nil {
		e.logger.Warn("publishing rule result", "topic", topic, "error", err)
	}
}
