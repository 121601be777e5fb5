package mqtt

import "strings"

// Topic roots.
const (
	// TopicPrefixBridge is the root of the flat bridge scheme
	// graylogic/{category}/{protocol}/{address}.
	TopicPrefixBridge = "graylogic"

	// TopicPrefixCore is the root of topics owned by core services.
	TopicPrefixCore = "graylogic/core"

	// TopicPrefixSystem is the root of service status topics.
	TopicPrefixSystem = "graylogic/system"
)

// Topics builds the topics the ephemeris service publishes and listens on.
//
//	topics := mqtt.Topics{}
//	topics.EphemerisToday()          // graylogic/core/ephemeris/today
//	topics.AstroFacade("south")      // graylogic/core/astro/facade/south
//	topics.AutomationFired("wake")   // graylogic/core/automation/wake/fired
type Topics struct{}

// BridgeCommand returns the command topic of a device behind a bridge.
//
// Example: graylogic/command/knx/hall-lights
func (Topics) BridgeCommand(protocol, device string) string {
	return TopicPrefixBridge + "/command/" + protocol + "/" + device
}

// EphemerisToday carries the retained calendar facts of the current day.
//
// Example: graylogic/core/ephemeris/today
func (Topics) EphemerisToday() string {
	return TopicPrefixCore + "/ephemeris/today"
}

// AstroFacade carries the retained sun exposure of one facade.
//
// Example: graylogic/core/astro/facade/south
func (Topics) AstroFacade(facadeID string) string {
	return TopicPrefixCore + "/astro/facade/" + facadeID
}

// AutomationFired announces a rule whose actions ran.
//
// Example: graylogic/core/automation/welcome-home/fired
func (Topics) AutomationFired(ruleUID string) string {
	return TopicPrefixCore + "/automation/" + ruleUID + "/fired"
}

// AutomationTrigger fires a rule's manual trigger from another service.
//
// Example: graylogic/core/automation/welcome-home/trigger
func (Topics) AutomationTrigger(ruleUID string) string {
	return TopicPrefixCore + "/automation/" + ruleUID + "/trigger"
}

// AllAutomationTriggers matches every AutomationTrigger topic.
//
// Pattern: graylogic/core/automation/+/trigger
func (Topics) AllAutomationTriggers() string {
	return TopicPrefixCore + "/automation/+/trigger"
}

// SystemStatus carries the retained online/offline status of the service.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// RuleUIDFromTriggerTopic extracts the rule UID from an AutomationTrigger
// topic.
func RuleUIDFromTriggerTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, TopicPrefixCore+"/automation/")
	if !ok {
		return "", false
	}
	uid, ok := strings.CutSuffix(rest, "/trigger")
	if !ok || uid == "" || strings.Contains(uid, "/") {
		return "", false
	}
	return uid, true
}
