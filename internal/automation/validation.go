package automation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength  = 100
	maxUIDLength   = 64
	maxModules     = 50
	maxConfigKeys  = 20
	uidPattern     = `^[a-z0-9]+(?:[-_.][a-z0-9]+)*$`
	moduleIDLength = 64
)

var uidRegex = regexp.MustCompile(uidPattern)

// ValidateRule checks a rule's structure. It does not check that module
// types are supported; that happens when the engine creates the handlers.
func ValidateRule(r *Rule) error {
	if r == nil {
		return ErrInvalidRule
	}
	if err := ValidateUID(r.UID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRule)
	}
	if len(r.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidRule, maxNameLength)
	}
	if len(r.Triggers) == 0 {
		return fmt.Errorf("%w: at least one trigger is required", ErrInvalidRule)
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("%w: at least one action is required", ErrInvalidRule)
	}

	modules := r.Modules()
	if len(modules) > maxModules {
		return fmt.Errorf("%w: exceeds maximum of %d modules", ErrInvalidRule, maxModules)
	}
	seen := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if err := ValidateModule(m); err != nil {
			return err
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("%w: duplicate module id %q", ErrInvalidModule, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}

// ValidateUID checks the format of a rule UID.
func ValidateUID(uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid cannot be empty", ErrInvalidRule)
	}
	if len(uid) > maxUIDLength {
		return fmt.Errorf("%w: uid exceeds %d characters", ErrInvalidRule, maxUIDLength)
	}
	if !uidRegex.MatchString(uid) {
		return fmt.Errorf("%w: uid must be lowercase alphanumeric with - _ or . separators", ErrInvalidRule)
	}
	return nil
}

// ValidateModule checks a single module.
func ValidateModule(m Module) error {
	if m.ID == "" {
		return fmt.Errorf("%w: %s module id is required", ErrInvalidModule, m.Kind)
	}
	if len(m.ID) > moduleIDLength {
		return fmt.Errorf("%w: module id exceeds %d characters", ErrInvalidModule, moduleIDLength)
	}
	if m.TypeUID == "" {
		return fmt.Errorf("%w: %s: type is required", ErrInvalidModule, m.ID)
	}
	if len(m.Config) > maxConfigKeys {
		return fmt.Errorf("%w: %s: config exceeds %d keys", ErrInvalidModule, m.ID, maxConfigKeys)
	}
	return nil
}

// GenerateUID derives a rule UID from a name: lower case, with spaces and
// other separators turned into hyphens.
func GenerateUID(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}

	uid := b.String()
	if len(uid) > maxUIDLength {
		uid = strings.TrimRight(uid[:maxUIDLength], "-")
	}
	return uid
}

// GenerateID creates a new UUID for a rule evaluation or command.
func GenerateID() string {
	return uuid.New().String()
}

// configString reads an optional string setting.
func configString(m Module, key, def string) (string, error) {
	v, ok := m.Config[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: %s must be a string", ErrInvalidModule, m.ID, key)
	}
	return strings.TrimSpace(s), nil
}

// configNumber reads an optional numeric setting. YAML decodes integers as
// int and JSON as float64; both are accepted.
func configNumber(m Module, key string) (float64, bool, error) {
	v, ok := m.Config[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s: %s must be a number", ErrInvalidModule, m.ID, key)
	}
	return f, true, nil
}

// configInt reads an optional whole-number setting.
func configInt(m Module, key string) (int, bool, error) {
	f, ok, err := configNumber(m, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%w: %s: %s must be a whole number", ErrInvalidModule, m.ID, key)
	}
	return int(f), true, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
