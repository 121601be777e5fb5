// Package mqtt connects the ephemeris service to the Gray Logic broker.
//
// The service publishes retained calendar facts
// (graylogic/core/ephemeris/today), facade sun exposure
// (graylogic/core/astro/facade/{id}), rule results
// (graylogic/core/automation/{uid}/fired) and device commands issued by rule
// actions (graylogic/command/{protocol}/{device}). It listens on
// graylogic/core/automation/+/trigger so other services can fire rules.
//
// The client reconnects with backoff, restores its subscriptions on every
// reconnect, and keeps graylogic/system/status current through an online
// message and a last-will offline message.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.EphemerisToday(), facts, true)
package mqtt
