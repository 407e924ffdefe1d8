package lipsync

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

var (
	// ErrMalformedRule indicates a rule string without the left[core]right=visemes shape.
	ErrMalformedRule = errors.New("malformed rule")
	// ErrUnknownViseme indicates a rule emitting an identifier outside the vocabulary.
	ErrUnknownViseme = errors.New("unknown viseme")
)

// contextToken is one compiled element of a left or right context.
type contextToken struct {
	kind    OperatorKind
	literal rune
	class   string
	choices [][]rune
}

// CompiledRule is a rule ready for matching. The matcher is deterministic:
// contexts are evaluated as sets of reachable positions. A class run is walked
// at most once per context token, and the outermost token stops at its first
// step, so a rule whose classes sit at the ends of its contexts matches in
// time bounded by the context length.
type CompiledRule struct {
	// Raw is the rule as written in the table.
	Raw string
	// Stride is the number of code points the rule consumes.
	Stride int
	// Visemes are emitted in order when the rule fires. Empty for silent letters.
	Visemes []Viseme

	left  []contextToken
	core  []rune
	right []contextToken
}

// CompileRule parses a rule of the form left[CORE]right=v1 v2 ...
func CompileRule(raw string) (CompiledRule, error) {
	posL := strings.IndexRune(raw, coreOpenDelimiter)
	posR := strings.IndexRune(raw, coreCloseDelimiter)
	posE := strings.IndexRune(raw, visemeListDelimiter)

	if posL < 0 || posR < 0 || posE < 0 || posL > posR || posR > posE {
		return CompiledRule{}, fmt.Errorf("%w: %q: expected left[core]right=visemes", ErrMalformedRule, raw)
	}

	core := []rune(raw[posL+1 : posR])
	if len(core) == 0 {
		return CompiledRule{}, fmt.Errorf("%w: %q: empty core", ErrMalformedRule, raw)
	}

	// The scanner lowercases the letter under the cursor; the first core
	// letter is the anchor that pins the match to that position.
	core[0] = unicode.ToLower(core[0])

	visemes, err := parseVisemes(raw[posE+1:])
	if err != nil {
		return CompiledRule{}, fmt.Errorf("rule %q: %w", raw, err)
	}

	return CompiledRule{
		Raw:     raw,
		Stride:  len(core),
		Visemes: visemes,
		left:    compileContext(raw[:posL]),
		core:    core,
		right:   compileContext(raw[posR+1 : posE]),
	}, nil
}

// HasContext reports whether the rule restricts its left or right neighbours.
func (r *CompiledRule) HasContext() bool {
	return len(r.left) > 0 || len(r.right) > 0
}

// Letter returns the uppercase letter the rule is filed under.
func (r *CompiledRule) Letter() rune {
	return unicode.ToUpper(r.core[0])
}

// Matches reports whether the rule applies at cursor. The probe is the
// uppercased text with only the code point at cursor lowercased.
func (r *CompiledRule) Matches(probe []rune, cursor int) bool {
	end := cursor + r.Stride
	if cursor < 0 || end > len(probe) {
		return false
	}

	for k, want := range r.core {
		if probe[cursor+k] != want {
			return false
		}
	}

	return matchLeft(r.left, probe, cursor) && matchRight(r.right, probe, end)
}

func (r *CompiledRule) String() string {
	return r.Raw
}

func parseVisemes(list string) ([]Viseme, error) {
	fields := strings.Fields(list)
	visemes := make([]Viseme, 0, len(fields))

	for _, field := range fields {
		viseme := Viseme(field)
		if !viseme.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownViseme, field)
		}

		visemes = append(visemes, viseme)
	}

	return visemes, nil
}

func compileContext(pattern string) []contextToken {
	var tokens []contextToken

	for _, r := range pattern {
		op := LookupOperator(r)

		token := contextToken{kind: op.Kind, literal: r, class: op.Class}
		for _, choice := range op.Choices {
			token.choices = append(token.choices, []rune(choice))
		}

		tokens = append(tokens, token)
	}

	return tokens
}

// matchRight walks the tokens forward from start.
func matchRight(tokens []contextToken, probe []rune, start int) bool {
	positions := positionSet{list: []int{start}}

	for k, token := range tokens {
		next := positionSet{firstOnly: k == len(tokens)-1}
		for _, p := range positions.list {
			token.forward(probe, p, &next)

			if next.firstOnly && len(next.list) > 0 {
				return true
			}
		}

		if len(next.list) == 0 {
			return false
		}

		positions = next
	}

	return true
}

// matchLeft walks the tokens backward from end, last token first.
func matchLeft(tokens []contextToken, probe []rune, end int) bool {
	positions := positionSet{list: []int{end}}

	for k := len(tokens) - 1; k >= 0; k-- {
		next := positionSet{firstOnly: k == 0}
		for _, p := range positions.list {
			tokens[k].backward(probe, p, &next)

			if next.firstOnly && len(next.list) > 0 {
				return true
			}
		}

		if len(next.list) == 0 {
			return false
		}

		positions = next
	}

	return true
}

// linearSetLimit is the size up to which membership is checked by scanning.
const linearSetLimit = 8

// positionSet holds the distinct positions one context token can reach.
// With firstOnly set it accepts a single position, which is all the
// outermost token needs.
type positionSet struct {
	list      []int
	seen      map[int]struct{}
	firstOnly bool
}

// add records p and reports whether it was new. Class runs stop walking on
// a false result: the rest of the run was already covered.
func (s *positionSet) add(p int) bool {
	if s.firstOnly && len(s.list) > 0 {
		return false
	}

	switch {
	case s.seen != nil:
		if _, ok := s.seen[p]; ok {
			return false
		}

		s.seen[p] = struct{}{}
	case slices.Contains(s.list, p):
		return false
	case len(s.list) == linearSetLimit:
		s.seen = make(map[int]struct{}, 2*linearSetLimit)
		for _, q := range s.list {
			s.seen[q] = struct{}{}
		}

		s.seen[p] = struct{}{}
	}

	s.list = append(s.list, p)

	return true
}

// forward adds every position where the token can end when it starts at from.
func (t contextToken) forward(probe []rune, from int, out *positionSet) {
	switch t.kind {
	case KindLiteral:
		if from < len(probe) && probe[from] == t.literal {
			out.add(from + 1)
		}
	case KindClassOne:
		if from < len(probe) && t.inClass(probe[from]) {
			out.add(from + 1)
		}
	case KindClassStar:
		out.add(from)

		fallthrough
	case KindClassPlus:
		for p := from; p < len(probe) && t.inClass(probe[p]); p++ {
			if !out.add(p + 1) {
				break
			}
		}
	case KindChoice:
		for _, choice := range t.choices {
			if from+len(choice) <= len(probe) && slices.Equal(probe[from:from+len(choice)], choice) {
				out.add(from + len(choice))
			}
		}
	case KindBoundary:
		if isWordBoundary(probe, from) {
			out.add(from)
		}
	}
}

// backward adds every position where the token can start when it ends at to.
func (t contextToken) backward(probe []rune, to int, out *positionSet) {
	switch t.kind {
	case KindLiteral:
		if to > 0 && probe[to-1] == t.literal {
			out.add(to - 1)
		}
	case KindClassOne:
		if to > 0 && t.inClass(probe[to-1]) {
			out.add(to - 1)
		}
	case KindClassStar:
		out.add(to)

		fallthrough
	case KindClassPlus:
		for p := to; p > 0 && t.inClass(probe[p-1]); p-- {
			if !out.add(p - 1) {
				break
			}
		}
	case KindChoice:
		for _, choice := range t.choices {
			if to-len(choice) >= 0 && slices.Equal(probe[to-len(choice):to], choice) {
				out.add(to - len(choice))
			}
		}
	case KindBoundary:
		if isWordBoundary(probe, to) {
			out.add(to)
		}
	}
}

func (t contextToken) inClass(r rune) bool {
	return strings.ContainsRune(t.class, r)
}

// isWordBoundary treats only ASCII letters, digits and underscore as word
// characters, so accented letters never count as being inside a word.
func isWordBoundary(probe []rune, p int) bool {
	before := p > 0 && isASCIIWordChar(probe[p-1])
	after := p < len(probe) && isASCIIWordChar(probe[p])

	return before != after
}

func isASCIIWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
