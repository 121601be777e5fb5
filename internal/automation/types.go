package automation

import "context"

// ModuleKind distinguishes the three parts of a rule.
type ModuleKind string

const (
	KindTrigger   ModuleKind = "trigger"
	KindCondition ModuleKind = "condition"
	KindAction    ModuleKind = "action"
)

// Module is one configured building block of a rule. TypeUID selects the
// handler factory and handler implementation.
type Module struct {
	ID      string         `json:"id" yaml:"id"`
	TypeUID string         `json:"type" yaml:"type"`
	Kind    ModuleKind     `json:"kind" yaml:"-"`
	Label   string         `json:"label,omitempty" yaml:"label,omitempty"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Rule wires triggers, conditions and actions together. When any trigger
// fires, all conditions must be satisfied before the actions run in order.
type Rule struct {
	UID        string   `json:"uid" yaml:"uid"`
	Name       string   `json:"name" yaml:"name"`
	Enabled    *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Triggers   []Module `json:"triggers" yaml:"triggers"`
	Conditions []Module `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Actions    []Module `json:"actions" yaml:"actions"`
}

// IsEnabled reports whether the rule should run. Rules are enabled unless
// explicitly disabled.
func (r *Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Modules returns every module of the rule with its Kind set.
func (r *Rule) Modules() []Module {
	modules := make([]Module, 0, len(r.Triggers)+len(r.Conditions)+len(r.Actions))
	for _, group := range []struct {
		kind ModuleKind
		list []Module
	}{
		{KindTrigger, r.Triggers},
		{KindCondition, r.Conditions},
		{KindAction, r.Actions},
	} {
		for _, m := range group.list {
			m.Kind = group.kind
			modules = append(modules, m)
		}
	}
	return modules
}

// DeepCopy returns an independent copy of the rule.
func (r *Rule) DeepCopy() *Rule {
	if r == nil {
		return nil
	}
	cpy := *r
	if r.Enabled != nil {
		v := *r.Enabled
		cpy.Enabled = &v
	}
	cpy.Triggers = copyModules(r.Triggers)
	cpy.Conditions = copyModules(r.Conditions)
	cpy.Actions = copyModules(r.Actions)
	return &cpy
}

func copyModules(in []Module) []Module {
	if in == nil {
		return nil
	}
	out := make([]Module, len(in))
	for i, m := range in {
		out[i] = m
		out[i].Config = deepCopyMap(m.Config)
	}
	return out
}

// deepCopyMap copies nested maps and slices so cached rules cannot be
// mutated through a returned copy.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}

// ModuleHandler is the runtime counterpart of a Module.
type ModuleHandler interface {
	// Dispose releases the handler. It is called when the rule is removed.
	Dispose()
}

// TriggerCallback is invoked by a trigger handler when it fires. outputs
// become the inputs of the rule's conditions and first action.
type TriggerCallback func(ctx context.Context, outputs map[string]any)

// TriggerHandler fires its rule.
type TriggerHandler interface {
	ModuleHandler
	SetCallback(cb TriggerCallback)
}

// ManualTrigger is a trigger that can be fired on demand, e.g. from the API.
type ManualTrigger interface {
	TriggerHandler
	Trigger(ctx context.Context, outputs map[string]any)
}

// ConditionHandler decides whether a triggered rule may proceed.
type ConditionHandler interface {
	ModuleHandler
	IsSatisfied(ctx context.Context, inputs map[string]any) (bool, error)
}

// ActionHandler performs the work of a rule. The returned outputs are
// merged into the inputs of the next action.
type ActionHandler interface {
	ModuleHandler
	Execute(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// RuleResult describes one evaluation of a rule.
type RuleResult struct {
	ID       string         `json:"id"`
	RuleUID  string         `json:"rule_uid"`
	Fired    bool           `json:"fired"`
	Blocked  string         `json:"blocked_by,omitempty"`
	Actions  int            `json:"actions"`
	Outputs  map[string]any `json:"outputs,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration int64          `json:"duration_ms"`
}
