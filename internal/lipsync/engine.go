package lipsync

import (
	"errors"
	"fmt"
	"maps"
	"unicode"

	"github.com/book-expert/lipsync-service/internal/lipsync/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidDuration indicates a duration table entry out of range.
var ErrInvalidDuration = errors.New("invalid duration")

// Normalizer prepares raw text before scanning.
type Normalizer interface {
	PreprocessText(input string) string
}

// Config holds the tables an Engine is built from. Nil tables fall back to
// the Italian defaults; a nil Normalizer makes Convert behave like Scan.
type Config struct {
	Rules           map[rune][]string
	VisemeDurations map[Viseme]float64
	PauseDurations  map[rune]float64
	Normalizer      Normalizer
	Language        language.Tag
}

// DefaultConfig returns the Italian tables with the standard text preprocessor.
func DefaultConfig() Config {
	return Config{
		Rules:           ItalianRules,
		VisemeDurations: VisemeDurations,
		PauseDurations:  PauseDurations,
		Normalizer:      text.NewPreprocessor(),
		Language:        language.Italian,
	}
}

// Engine converts text into viseme events. All of its state is built in
// NewEngine and never modified, so one Engine serves concurrent callers.
type Engine struct {
	table           *RuleTable
	visemeDurations map[Viseme]float64
	pauseDurations  map[rune]float64
	normalizer      Normalizer
	lang            language.Tag
}

// NewEngine compiles the rule table and validates the duration tables.
func NewEngine(cfg Config) (*Engine, error) {
	rules := cfg.Rules
	if rules == nil {
		rules = ItalianRules
	}

	visemeDurations := cfg.VisemeDurations
	if visemeDurations == nil {
		visemeDurations = VisemeDurations
	}

	pauseDurations := cfg.PauseDurations
	if pauseDurations == nil {
		pauseDurations = PauseDurations
	}

	lang := cfg.Language
	if lang == language.Und {
		lang = language.Italian
	}

	for viseme, duration := range visemeDurations {
		if duration <= 0 {
			return nil, fmt.Errorf("%w: viseme %q has %v", ErrInvalidDuration, viseme, duration)
		}
	}

	for char, duration := range pauseDurations {
		if duration < 0 {
			return nil, fmt.Errorf("%w: pause %q has %v", ErrInvalidDuration, char, duration)
		}
	}

	table, err := NewRuleTable(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule table: %w", err)
	}

	return &Engine{
		table:           table,
		visemeDurations: maps.Clone(visemeDurations),
		pauseDurations:  maps.Clone(pauseDurations),
		normalizer:      cfg.Normalizer,
		lang:            lang,
	}, nil
}

// MustNewEngine is like NewEngine but panics on a configuration defect.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}

	return engine
}

// Table returns the compiled rule table.
func (e *Engine) Table() *RuleTable {
	return e.table
}

// Normalize runs the configured preprocessor, if any.
func (e *Engine) Normalize(input string) string {
	if e.normalizer == nil {
		return input
	}

	return e.normalizer.PreprocessText(input)
}

// Convert normalizes input and scans it.
func (e *Engine) Convert(input string) *Result {
	return e.Scan(e.Normalize(input))
}

// Scan converts already normalized text. It never fails: characters without
// rules are skipped, consuming their pause duration or nothing.
func (e *Engine) Scan(input string) *Result {
	// A Caser keeps state between calls, so each scan gets its own.
	upper := cases.Upper(e.lang).String(input)
	probe := []rune(upper)
	result := newResult(upper, len(probe))

	clock := 0.0

	for cursor := 0; cursor < len(probe); {
		letter := probe[cursor]

		if !e.table.Has(letter) {
			clock += e.pauseDurations[letter]
			cursor++

			continue
		}

		probe[cursor] = unicode.ToLower(letter)
		rule, ok := e.table.Match(letter, probe, cursor)
		probe[cursor] = letter

		if !ok {
			// Unreachable with a validated table: every letter ends with a fallback.
			cursor++

			continue
		}

		for _, viseme := range rule.Visemes {
			clock = result.emit(viseme, e.baseDuration(viseme), clock)
		}

		cursor += rule.Stride
	}

	result.EndTime = clock

	return result
}

// BaseDuration returns the base duration of v.
func (e *Engine) BaseDuration(v Viseme) float64 {
	return e.baseDuration(v)
}

func (e *Engine) baseDuration(v Viseme) float64 {
	if duration, ok := e.visemeDurations[v]; ok {
		return duration
	}

	return DefaultVisemeDuration
}
