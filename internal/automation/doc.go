// Package automation provides the rule engine of the ephemeris service.
//
// A rule wires triggers, conditions and actions together. Each part is a
// Module whose type UID selects a HandlerFactory; the factory builds the
// runtime handler when the rule is activated and releases it when the rule
// is removed.
//
// Architecture:
//
//	┌───────────────────────────────────────────────────────┐
//	│                  Engine (engine.go)                   │
//	│  ┌──────────────┐    ┌────────────────┐               │
//	│  │   Registry   │───▶│   Repository   │               │
//	│  │(registry.go) │    │(repository.go) │               │
//	│  └──────────────┘    └────────────────┘               │
//	│        │                                              │
//	│        ▼                                              │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Handler factories (by module type UID)      │     │
//	│  │    WelcomeHomeFactory (welcomehome.go)       │     │
//	│  │    EphemerisFactory   (ephemeris.go)         │     │
//	│  └──────────────────────────────────────────────┘     │
//	│        │                                              │
//	│        ▼                                              │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Evaluation                                  │     │
//	│  │  1. Trigger fires with outputs               │     │
//	│  │  2. Every condition must be satisfied        │     │
//	│  │  3. Actions run in order, outputs chained    │     │
//	│  │  4. Result published on                      │     │
//	│  │     graylogic/core/automation/{uid}/fired    │     │
//	│  └──────────────────────────────────────────────┘     │
//	└───────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Rule, Module: declarative rule definitions (YAML or API)
//   - HandlerFactory, BaseFactory: build and track module handlers
//   - Engine: activates rules and evaluates them
//   - Registry: thread-safe in-memory cache wrapping a Repository
//
// # Thread Safety
//
// Registry, Engine and the factories are safe for concurrent use.
//
// # Usage
//
//	registry := automation.NewRegistry(automation.NewFileRepository(cfg.Automation.RulesFile))
//	engine := automation.NewEngine(registry, mqttClient, log)
//	_ = engine.RegisterFactory(automation.NewWelcomeHomeFactory(mqttClient, log))
//	_ = engine.RegisterFactory(automation.NewEphemerisFactory(ephemerisService))
//
//	if err := engine.Start(ctx); err != nil {
//	    log.Warn("some rules failed to activate", "error", err)
//	}
//	err := engine.TriggerRule(ctx, "welcome-home", map[string]any{"state": "home"})
package automation
