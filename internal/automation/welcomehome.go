package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Module type UIDs of the welcome-home scenario.
const (
	AirConditionerTriggerType = "welcomehome.AirConditionerTrigger"
	LightsTriggerType         = "welcomehome.LightsTrigger"
	StateConditionType        = "welcomehome.StateCondition"
	TemperatureConditionType  = "welcomehome.TemperatureCondition"
	WelcomeHomeActionType     = "welcomehome.WelcomeHomeAction"
)

// welcomeHomeFactoryName identifies the factory in log records.
const welcomeHomeFactoryName = "welcomehome"

// MQTTClient is the interface for publishing to the broker.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// WelcomeHomeFactory builds the handlers of the welcome-home scenario: two
// triggers (air conditioner and lights), a state and a temperature
// condition, and an action that sends a device command over MQTT.
//
// The factory remembers the trigger handler of each rule so the rule can be
// fired on demand through TriggerHandler.
type WelcomeHomeFactory struct {
	BaseFactory

	mqtt   MQTTClient
	logger Logger

	mu       sync.RWMutex
	triggers map[string]*WelcomeHomeTrigger // by rule UID
}

// NewWelcomeHomeFactory creates the factory. mqtt may be nil, in which case
// the welcome action fails with ErrMQTTUnavailable.
func NewWelcomeHomeFactory(mqtt MQTTClient, logger Logger) *WelcomeHomeFactory {
	if logger == nil {
		logger = noopLogger{}
	}
	f := &WelcomeHomeFactory{
		mqtt:     mqtt,
		logger:   logger,
		triggers: make(map[string]*WelcomeHomeTrigger),
	}
	f.BaseFactory.init(f.create)
	return f
}

// Types returns the five welcome-home module types.
func (f *WelcomeHomeFactory) Types() []string {
	return []string{
		WelcomeHomeActionType,
		StateConditionType,
		TemperatureConditionType,
		AirConditionerTriggerType,
		LightsTriggerType,
	}
}

// TriggerHandler returns the trigger handler created for ruleUID.
func (f *WelcomeHomeFactory) TriggerHandler(ruleUID string) (*WelcomeHomeTrigger, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	h, ok := f.triggers[ruleUID]
	return h, ok
}

// Unget releases h and, for triggers, forgets the rule's trigger handler.
func (f *WelcomeHomeFactory) Unget(m Module, ruleUID string, h ModuleHandler) {
	if t, ok := h.(*WelcomeHomeTrigger); ok {
		f.mu.Lock()
		if f.triggers[ruleUID] == t {
			delete(f.triggers, ruleUID)
		}
		f.mu.Unlock()
	}
	f.BaseFactory.Unget(m, ruleUID, h)
}

func (f *WelcomeHomeFactory) create(m Module, ruleUID string) (ModuleHandler, error) {
	switch m.TypeUID {
	case WelcomeHomeActionType:
		return newWelcomeHomeAction(m, f.mqtt, f.logger)
	case StateConditionType:
		return newStateCondition(m)
	case TemperatureConditionType:
		return newTemperatureCondition(m)
	case AirConditionerTriggerType, LightsTriggerType:
		t := &WelcomeHomeTrigger{module: m}
		f.mu.Lock()
		f.triggers[ruleUID] = t
		f.mu.Unlock()
		return t, nil
	default:
		f.logger.Error("not supported module handler", "factory", welcomeHomeFactoryName, "type", m.TypeUID)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModuleType, m.TypeUID)
	}
}

// WelcomeHomeTrigger fires its rule when Trigger is called, e.g. when the
// lights or the air conditioner report the resident coming home.
type WelcomeHomeTrigger struct {
	module Module

	mu       sync.RWMutex
	callback TriggerCallback
}

// SetCallback registers the rule callback.
func (t *WelcomeHomeTrigger) SetCallback(cb TriggerCallback) {
	t.mu.Lock()
	t.callback = cb
	t.mu.Unlock()
}

// Trigger fires the rule with outputs. It does nothing once disposed.
func (t *WelcomeHomeTrigger) Trigger(ctx context.Context, outputs map[string]any) {
	t.mu.RLock()
	cb := t.callback
	t.mu.RUnlock()
	if cb == nil {
		return
	}
	out := deepCopyMap(outputs)
	if out == nil {
		out = make(map[string]any, 1)
	}
	out["trigger"] = t.module.TypeUID
	cb(ctx, out)
}

// Dispose detaches the trigger from its rule.
func (t *WelcomeHomeTrigger) Dispose() {
	t.SetCallback(nil)
}

// stateCondition compares the "state" input with a configured state.
type stateCondition struct {
	state    string
	operator string
}

func newStateCondition(m Module) (*stateCondition, error) {
	state, err := configString(m, "state", "")
	if err != nil {
		return nil, err
	}
	if state == "" {
		return nil, fmt.Errorf("%w: %s: state is required", ErrInvalidModule, m.ID)
	}
	op, err := configString(m, "operator", "=")
	if err != nil {
		return nil, err
	}
	if op != "=" && op != "!=" {
		return nil, fmt.Errorf("%w: %s: operator must be = or !=", ErrInvalidModule, m.ID)
	}
	return &stateCondition{state: state, operator: op}, nil
}

func (c *stateCondition) IsSatisfied(_ context.Context, inputs map[string]any) (bool, error) {
	current, ok := inputs["state"]
	if !ok {
		return false, nil
	}
	equal := fmt.Sprint(current) == c.state
	if c.operator == "!=" {
		return !equal, nil
	}
	return equal, nil
}

func (c *stateCondition) Dispose() {}

// temperatureCondition passes when the "temperature" input calls for the
// configured mode: "heating" below the set point, "cooling" above it.
type temperatureCondition struct {
	setPoint float64
	mode     string
}

func newTemperatureCondition(m Module) (*temperatureCondition, error) {
	setPoint, ok, err := configNumber(m, "temperature")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s: temperature is required", ErrInvalidModule, m.ID)
	}
	mode, err := configString(m, "operator", "heating")
	if err != nil {
		return nil, err
	}
	if mode != "heating" && mode != "cooling" {
		return nil, fmt.Errorf("%w: %s: operator must be heating or cooling", ErrInvalidModule, m.ID)
	}
	return &temperatureCondition{setPoint: setPoint, mode: mode}, nil
}

func (c *temperatureCondition) IsSatisfied(_ context.Context, inputs map[string]any) (bool, error) {
	raw, ok := inputs["temperature"]
	if !ok {
		return false, nil
	}
	current, ok := toFloat(raw)
	if !ok {
		return false, fmt.Errorf("%w: temperature input %v is not a number", ErrInvalidModule, raw)
	}
	if c.mode == "cooling" {
		return current > c.setPoint, nil
	}
	return current < c.setPoint, nil
}

func (c *temperatureCondition) Dispose() {}

// welcomeHomeAction sends a device command using the command topic scheme
// graylogic/command/{protocol}/{device}.
type welcomeHomeAction struct {
	moduleID   string
	device     string
	protocol   string
	command    string
	parameters map[string]any
	mqtt       MQTTClient
	logger     Logger
}

func newWelcomeHomeAction(m Module, mqtt MQTTClient, logger Logger) (*welcomeHomeAction, error) {
	device, err := configString(m, "device", "")
	if err != nil {
		return nil, err
	}
	if device == "" {
		return nil, fmt.Errorf("%w: %s: device is required", ErrInvalidModule, m.ID)
	}
	protocol, err := configString(m, "protocol", "knx")
	if err != nil {
		return nil, err
	}
	command, err := configString(m, "command", "on")
	if err != nil {
		return nil, err
	}
	params, _ := m.Config["parameters"].(map[string]any)
	return &welcomeHomeAction{
		moduleID:   m.ID,
		device:     device,
		protocol:   protocol,
		command:    command,
		parameters: deepCopyMap(params),
		mqtt:       mqtt,
		logger:     logger,
	}, nil
}

func (a *welcomeHomeAction) Execute(_ context.Context, inputs map[string]any) (map[string]any, error) {
	if a.mqtt == nil {
		return nil, ErrMQTTUnavailable
	}

	commandID := GenerateID()
	payload, err := json.Marshal(map[string]any{
		"id":         commandID,
		"device_id":  a.device,
		"command":    a.command,
		"parameters": a.parameters,
		"source":     "rule:" + fmt.Sprint(inputs["rule_uid"]),
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling command: %w", err)
	}

	topic := "graylogic/command/" + a.protocol + "/" + a.device
	if err := a.mqtt.Publish(topic, payload, 1, false); err != nil {
		return nil, fmt.Errorf("publishing to %q: %w", topic, err)
	}

	a.logger.Info("welcome home", "module", a.moduleID, "device", a.device, "command", a.command, "topic", topic)
	return map[string]any{"result": "Welcome Home!", "command_id": commandID}, nil
}

func (a *welcomeHomeAction) Dispose() {}
