// Package text prepares raw text for viseme conversion.
//
// The preprocessor turns symbols and digit runs into spoken Italian words and
// tidies punctuation and spacing, so that the scanner only ever sees letters,
// spaces and a small set of punctuation marks. Accented letters are kept.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Regex patterns for text preprocessing.
const (
	decimalRegexPattern = `(\d)\.(\d)`
	numberRegexPattern  = `\d+`
	spacesRegexPattern  = ` {2,}`
)

// Replacement templates and literals.
const (
	// DecimalSeparatorWord is spoken between the integer and fractional digits.
	DecimalSeparatorWord = "virgola"
	decimalReplacement   = "${1} " + DecimalSeparatorWord + " ${2}"
	// punctuationLiteral is matched as a plain string, not as a character
	// class, so it only removes its own first literal occurrence.
	punctuationLiteral = `/[#_*'":;]/g`
	// maxRepeatedSymbols is the longest run of one non-alphanumeric character kept.
	maxRepeatedSymbols = 2
)

// Preprocessor provides text preprocessing functionality for viseme conversion.
type Preprocessor struct {
	// Precompiled regex patterns for performance.
	decimalPattern *regexp.Regexp
	numberPattern  *regexp.Regexp
	spacesPattern  *regexp.Regexp
	// Efficient replacer for currency and math symbols.
	symbolReplacer *strings.Replacer
}

// NewPreprocessor creates a new text preprocessor with compiled patterns and replacers.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		decimalPattern: regexp.MustCompile(decimalRegexPattern),
		numberPattern:  regexp.MustCompile(numberRegexPattern),
		spacesPattern:  regexp.MustCompile(spacesRegexPattern),
		symbolReplacer: newSymbolReplacer(SymbolWords),
	}
}

// PreprocessText runs the pipeline in its fixed order. Decimal digits of every
// script are first read as ASCII digits, so the result contains no decimal
// digits and none of the symbols in SymbolWords. Other numeric characters,
// such as ½ or superscripts, pass through unchanged.
func (p *Preprocessor) PreprocessText(text string) string {
	if text == "" {
		return text
	}

	// Compose combining accents so that "a" + U+0300 is scanned as one letter.
	processed := norm.NFC.String(text)

	processed = strings.Map(toASCIIDigit, processed)

	processed = p.removePunctuation(processed)

	processed = p.expandSymbols(processed)

	processed = p.insertDecimalSeparators(processed)

	processed = p.normalizeNumbers(processed)

	processed = collapseRepeatedSymbols(processed)

	processed = p.spacesPattern.ReplaceAllString(processed, " ")

	return strings.TrimSpace(processed)
}

// removePunctuation keeps the long-standing behavior of stripping a literal
// pattern string instead of a punctuation class. Ordinary punctuation passes
// through untouched.
func (p *Preprocessor) removePunctuation(text string) string {
	return strings.Replace(text, punctuationLiteral, "", 1)
}

// expandSymbols replaces currency and math symbols with spoken words.
func (p *Preprocessor) expandSymbols(text string) string {
	return p.symbolReplacer.Replace(text)
}

// insertDecimalSeparators turns 3.5 into 3 virgola 5.
func (p *Preprocessor) insertDecimalSeparators(text string) string {
	return p.decimalPattern.ReplaceAllString(text, decimalReplacement)
}

// normalizeNumbers finds every maximal digit run and spells it out.
func (p *Preprocessor) normalizeNumbers(text string) string {
	return p.numberPattern.ReplaceAllStringFunc(text, NumberToWords)
}

// collapseRepeatedSymbols shortens runs of three or more identical
// non-alphanumeric characters to two.
func collapseRepeatedSymbols(text string) string {
	var (
		result   strings.Builder
		previous rune
		run      int
	)

	result.Grow(len(text))

	for i, char := range text {
		if i > 0 && char == previous && !isAlphanumeric(char) {
			run++
		} else {
			previous = char
			run = 1
		}

		if run <= maxRepeatedSymbols {
			result.WriteRune(char)
		}
	}

	return result.String()
}

// toASCIIDigit maps a decimal digit of any script, such as ３ or ٣, to its
// ASCII form. Each decimal digit range of the Unicode tables starts at a zero.
func toASCIIDigit(char rune) rune {
	if char <= unicode.MaxASCII || !unicode.Is(unicode.Nd, char) {
		return char
	}

	for _, r := range unicode.Nd.R16 {
		lo, hi := rune(r.Lo), rune(r.Hi)
		if char >= lo && char <= hi {
			return '0' + (char-lo)%10
		}
	}

	for _, r := range unicode.Nd.R32 {
		lo, hi := rune(r.Lo), rune(r.Hi)
		if char >= lo && char <= hi {
			return '0' + (char-lo)%10
		}
	}

	return char
}

func isAlphanumeric(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char)
}
