package lipsync

import (
	"errors"
	"fmt"
	"slices"
	"unicode"
)

var (
	// ErrEmptyRuleList indicates a letter filed without any rule.
	ErrEmptyRuleList = errors.New("letter has no rules")
	// ErrRuleKeyMismatch indicates a rule filed under a letter it does not start with.
	ErrRuleKeyMismatch = errors.New("rule core does not start with its table letter")
	// ErrMissingFallback indicates a letter whose last rule has a context restriction.
	ErrMissingFallback = errors.New("last rule of letter has context")
)

// RuleTable maps an uppercase letter to its compiled rules, most specific first.
// It is immutable once built and safe for concurrent readers.
type RuleTable struct {
	rules map[rune][]CompiledRule
}

// NewRuleTable compiles raw rules. Any defect fails the whole table: a
// partially valid table would animate silently wrong mouths.
func NewRuleTable(raw map[rune][]string) (*RuleTable, error) {
	table := &RuleTable{rules: make(map[rune][]CompiledRule, len(raw))}

	for letter, rawRules := range raw {
		if len(rawRules) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyRuleList, letter)
		}

		compiled := make([]CompiledRule, 0, len(rawRules))

		for _, rawRule := range rawRules {
			rule, err := CompileRule(rawRule)
			if err != nil {
				return nil, fmt.Errorf("letter %q: %w", letter, err)
			}

			if rule.core[0] != unicode.ToLower(letter) {
				return nil, fmt.Errorf("%w: %q filed under %q", ErrRuleKeyMismatch, rawRule, letter)
			}

			compiled = append(compiled, rule)
		}

		last := compiled[len(compiled)-1]
		if last.HasContext() {
			return nil, fmt.Errorf("%w: %q ends with %q", ErrMissingFallback, letter, last.Raw)
		}

		table.rules[letter] = compiled
	}

	return table, nil
}

// Has reports whether letter has an entry.
func (t *RuleTable) Has(letter rune) bool {
	_, ok := t.rules[letter]

	return ok
}

// Rules returns a copy of the ordered rules for letter.
func (t *RuleTable) Rules(letter rune) []CompiledRule {
	return slices.Clone(t.rules[letter])
}

// Letters returns the letters with an entry, sorted.
func (t *RuleTable) Letters() []rune {
	letters := make([]rune, 0, len(t.rules))
	for letter := range t.rules {
		letters = append(letters, letter)
	}

	slices.Sort(letters)

	return letters
}

// Match returns the first rule filed under letter that accepts the probe at
// cursor. Later rules are not tried once one matches.
func (t *RuleTable) Match(letter rune, probe []rune, cursor int) (*CompiledRule, bool) {
	rules := t.rules[letter]
	for i := range rules {
		if rules[i].Matches(probe, cursor) {
			return &rules[i], true
		}
	}

	return nil, false
}
