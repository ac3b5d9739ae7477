package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ControlledUseRule configures the three checks applied to one
// controlled-use substance. Substances without a rule are stored without
// evaluation ("unknown substance, no rules" policy).
type ControlledUseRule struct {
	DailyCeiling   float64 `yaml:"daily_ceiling"`
	WorkHoursStart int     `yaml:"work_hours_start"`
	WorkHoursEnd   int     `yaml:"work_hours_end"`
	CooldownHours  int     `yaml:"cooldown_hours"`
	Ruliade        string  `yaml:"ruliade"`
}

// QuotaParams configures weekly quota decay for one addiction-therapy
// substance. Quota tracking is opt-in per substance.
type QuotaParams struct {
	QuotaWeek0  float64 `yaml:"quota_week_0"`
	DecayFactor float64 `yaml:"decay_factor"`
}

// Rules holds the behavioral rule tables. Keys are lowercased substance
// names.
type Rules struct {
	ControlledUse map[string]ControlledUseRule `yaml:"controlled_use"`
	Quotas        map[string]QuotaParams       `yaml:"quotas"`
	Habits        []string                     `yaml:"habits"`
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() *Rules {
	return &Rules{
		ControlledUse: map[string]ControlledUseRule{
			"bcd": {
				DailyCeiling:   4,
				WorkHoursStart: 9,
				WorkHoursEnd:   17,
				CooldownHours:  2,
				Ruliade:        "not during work hours (09-17 CET), 2h cooldown between uses, skip if HALT score > 3",
			},
		},
		Quotas: map[string]QuotaParams{
			"3-cmc": {QuotaWeek0: 10.0, DecayFactor: 0.85},
			"k":     {QuotaWeek0: 5.0, DecayFactor: 0.85},
			"x":     {QuotaWeek0: 2.0, DecayFactor: 0.80},
			"thc":   {QuotaWeek0: 14.0, DecayFactor: 0.90},
		},
		Habits: []string{"exercise", "supplements", "sleep_target", "coding_drill"},
	}
}

// LoadRules reads rule tables from a YAML file, merged over the defaults.
// An empty path returns the defaults unchanged.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	overrides := Rules{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	for name, rule := range overrides.ControlledUse {
		rules.ControlledUse[strings.ToLower(name)] = rule
	}
	for name, params := range overrides.Quotas {
		rules.Quotas[strings.ToLower(name)] = params
	}
	if len(overrides.Habits) > 0 {
		rules.Habits = overrides.Habits
	}

	return rules, nil
}

// ControlledUseRuleFor looks up the rule for a substance, case-insensitively.
func (r *Rules) ControlledUseRuleFor(substance string) (ControlledUseRule, bool) {
	rule, ok := r.ControlledUse[strings.ToLower(substance)]
	return rule, ok
}

// QuotaParamsFor looks up quota decay parameters, case-insensitively.
func (r *Rules) QuotaParamsFor(substance string) (QuotaParams, bool) {
	params, ok := r.Quotas[strings.ToLower(substance)]
	return params, ok
}

// QuotaSubstances lists quota-tracked substances in stable order.
func (r *Rules) QuotaSubstances() []string {
	names := make([]string, 0, len(r.Quotas))
	for name := range r.Quotas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
