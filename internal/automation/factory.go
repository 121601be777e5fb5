package automation

import (
	"sync"
)

// HandlerFactory creates module handlers for the module types it lists.
type HandlerFactory interface {
	// Types returns the module type UIDs the factory handles.
	Types() []string

	// Create builds the handler for module m of rule ruleUID.
	Create(m Module, ruleUID string) (ModuleHandler, error)

	// Unget releases a handler created by Create.
	Unget(m Module, ruleUID string, h ModuleHandler)
}

// createFunc is the type-specific part of a factory.
type createFunc func(m Module, ruleUID string) (ModuleHandler, error)

// BaseFactory keeps track of the handlers a factory created so they can be
// looked up and disposed per rule. Concrete factories embed it and supply
// the type dispatch.
type BaseFactory struct {
	mu       sync.Mutex
	handlers map[string]ModuleHandler // handlerKey(ruleUID, moduleID)
	create   createFunc
}

// init prepares an embedded BaseFactory.
func (f *BaseFactory) init(create createFunc) {
	f.handlers = make(map[string]ModuleHandler)
	f.create = create
}

func handlerKey(ruleUID, moduleID string) string {
	return ruleUID + "$" + moduleID
}

// Create builds and records the handler for m.
func (f *BaseFactory) Create(m Module, ruleUID string) (ModuleHandler, error) {
	h, err := f.create(m, ruleUID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if old, ok := f.handlers[handlerKey(ruleUID, m.ID)]; ok {
		old.Dispose()
	}
	f.handlers[handlerKey(ruleUID, m.ID)] = h
	return h, nil
}

// Unget disposes h and forgets it.
func (f *BaseFactory) Unget(m Module, ruleUID string, h ModuleHandler) {
	f.mu.Lock()
	key := handlerKey(ruleUID, m.ID)
	if f.handlers[key] == h {
		delete(f.handlers, key)
	}
	f.mu.Unlock()

	if h != nil {
		h.Dispose()
	}
}

// Handler returns the live handler of a module, if any.
func (f *BaseFactory) Handler(ruleUID, moduleID string) (ModuleHandler, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.handlers[handlerKey(ruleUID, moduleID)]
	return h, ok
}

// Dispose releases every handler the factory still holds.
func (f *BaseFactory) Dispose() {
	f.mu.Lock()
	handlers := f.handlers
	f.handlers = make(map[string]ModuleHandler)
	f.mu.Unlock()

	for _, h := range handlers {
		h.Dispose()
	}
}
