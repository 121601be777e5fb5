package automation

import "errors"

// Domain errors for the automation package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, automation.ErrRuleNotFound) {
//	    // handle not found case
//	}
var (
	// ErrRuleNotFound is returned when a rule UID does not exist.
	ErrRuleNotFound = errors.New("rule: not found")

	// ErrRuleExists is returned when adding a rule whose UID is taken.
	ErrRuleExists = errors.New("rule: already exists")

	// ErrRuleDisabled is returned when triggering a disabled rule.
	ErrRuleDisabled = errors.New("rule: disabled")

	// ErrInvalidRule is returned when rule validation fails.
	ErrInvalidRule = errors.New("rule: invalid")

	// ErrInvalidModule is returned when a module's configuration is invalid.
	ErrInvalidModule = errors.New("rule: invalid module")

	// ErrUnsupportedModuleType is returned when no factory handles a module type.
	ErrUnsupportedModuleType = errors.New("rule: unsupported module type")

	// ErrNoManualTrigger is returned when a rule has no trigger that can be
	// fired on demand.
	ErrNoManualTrigger = errors.New("rule: no manual trigger")

	// ErrMQTTUnavailable is returned when MQTT is not connected.
	ErrMQTTUnavailable = errors.New("rule: MQTT unavailable")
)
