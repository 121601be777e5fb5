package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Repository is the source of rule definitions.
type Repository interface {
	List(ctx context.Context) ([]Rule, error)
}

// rulesFile is the YAML layout of a rules file:
//
//	rules:
//	  - uid: welcome-home
//	    name: Welcome home
//	    triggers:
//	      - {id: lights, type: welcomehome.LightsTrigger}
//	    conditions:
//	      - {id: workday, type: ephemeris.WeekdayCondition}
//	    actions:
//	      - id: greet
//	        type: welcomehome.WelcomeHomeAction
//	        config: {device: hall-lights, command: "on"}
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// FileRepository reads rules from a YAML file. The file is re-read on
// every List so edits are picked up by Registry.RefreshCache.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository for the rules file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// List parses the rules file. A missing file yields no rules. Rules without
// a UID get one derived from their name.
func (r *FileRepository) List(_ context.Context) ([]Rule, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rules document.
func ParseRules(data []byte) ([]Rule, error) {
	var doc rulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Rules))
	for i := range doc.Rules {
		rule := &doc.Rules[i]
		if rule.UID == "" {
			rule.UID = GenerateUID(rule.Name)
		}
		if err := ValidateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, rule.UID, err)
		}
		if _, dup := seen[rule.UID]; dup {
			return nil, fmt.Errorf("rule %d: %w: %s", i+1, ErrRuleExists, rule.UID)
		}
		seen[rule.UID] = struct{}{}
	}
	return doc.Rules, nil
}
