package automation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// testRule returns a minimal valid rule.
func testRule(uid string) *Rule {
	return &Rule{
		UID:      uid,
		Name:     "Rule " + uid,
		Triggers: []Module{{ID: "t1", TypeUID: LightsTriggerType}},
		Actions: []Module{{
			ID:      "a1",
			TypeUID: WelcomeHomeActionType,
			Config:  map[string]any{"device": "hall-lights"},
		}},
	}
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Rule)
		nilRule bool
		wantErr error
	}{
		{name: "valid rule", mutate: func(*Rule) {}},
		{name: "nil rule", nilRule: true, wantErr: ErrInvalidRule},
		{name: "empty uid", mutate: func(r *Rule) { r.UID = "" }, wantErr: ErrInvalidRule},
		{name: "uppercase uid", mutate: func(r *Rule) { r.UID = "Welcome" }, wantErr: ErrInvalidRule},
		{name: "uid too long", mutate: func(r *Rule) { r.UID = strings.Repeat("a", 65) }, wantErr: ErrInvalidRule},
		{name: "whitespace name", mutate: func(r *Rule) { r.Name = "   " }, wantErr: ErrInvalidRule},
		{name: "name too long", mutate: func(r *Rule) { r.Name = strings.Repeat("n", 101) }, wantErr: ErrInvalidRule},
		{name: "no triggers", mutate: func(r *Rule) { r.Triggers = nil }, wantErr: ErrInvalidRule},
		{name: "no actions", mutate: func(r *Rule) { r.Actions = nil }, wantErr: ErrInvalidRule},
		{
			name: "too many modules",
			mutate: func(r *Rule) {
				for i := range 50 {
					r.Conditions = append(r.Conditions, Module{ID: fmt.Sprintf("c%d", i), TypeUID: WeekdayConditionType})
				}
			},
			wantErr: ErrInvalidRule,
		},
		{
			name:    "module without id",
			mutate:  func(r *Rule) { r.Conditions = []Module{{TypeUID: WeekdayConditionType}} },
			wantErr: ErrInvalidModule,
		},
		{
			name:    "module without type",
			mutate:  func(r *Rule) { r.Conditions = []Module{{ID: "c1"}} },
			wantErr: ErrInvalidModule,
		},
		{
			name:    "duplicate module id across kinds",
			mutate:  func(r *Rule) { r.Conditions = []Module{{ID: "a1", TypeUID: WeekdayConditionType}} },
			wantErr: ErrInvalidModule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r *Rule
			if !tt.nilRule {
				r = testRule("welcome-home")
				tt.mutate(r)
			}
			err := ValidateRule(r)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateRule() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUID(t *testing.T) {
	valid := []string{"welcome-home", "rule1", "a.b_c-d", "x"}
	for _, uid := range valid {
		if err := ValidateUID(uid); err != nil {
			t.Errorf("ValidateUID(%q) = %v, want nil", uid, err)
		}
	}

	invalid := []string{"", "-lead", "trail-", "double--dash", "space here", "UPPER"}
	for _, uid := range invalid {
		if err := ValidateUID(uid); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("ValidateUID(%q) = %v, want ErrInvalidRule", uid, err)
		}
	}
}

func TestGenerateUID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple name", "Welcome Home", "welcome-home"},
		{"underscores", "good_morning", "good-morning"},
		{"special characters", "Hello World! #1", "hello-world-1"},
		{"multiple spaces", "all  off", "all-off"},
		{"leading trailing spaces", "  test  ", "test"},
		{"already a uid", "welcome-home", "welcome-home"},
		{
			"long name truncated",
			strings.Repeat("long-name-", 10),
			"long-name-long-name-long-name-long-name-long-name-long-name-long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateUID(tt.input)
			if got != tt.want {
				t.Errorf("GenerateUID(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if err := ValidateUID(got); err != nil {
				t.Errorf("GenerateUID(%q) produced invalid uid %q: %v", tt.input, got, err)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == id2 {
		t.Error("GenerateID returned duplicate IDs")
	}
	// UUID format: 8-4-4-4-12 hex characters
	if len(id1) != 36 {
		t.Errorf("GenerateID length = %d, want 36", len(id1))
	}
}

func TestConfigInt(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantOK  bool
		wantErr bool
	}{
		{"missing", nil, 0, false, false},
		{"yaml int", 3, 3, true, false},
		{"json float", float64(-2), -2, true, false},
		{"fraction", 1.5, 0, false, true},
		{"string", "1", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Module{ID: "c1", Config: map[string]any{}}
			if tt.value != nil {
				m.Config["offset"] = tt.value
			}
			got, ok, err := configInt(m, "offset")
			if (err != nil) != tt.wantErr {
				t.Fatalf("configInt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("configInt() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
