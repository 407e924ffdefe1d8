package text

import (
	"strconv"
	"strings"
)

const (
	// NumberBaseTen represents the base for decimal number system.
	NumberBaseTen = 10
	// NumberBaseTwenty represents the boundary for teen numbers.
	NumberBaseTwenty = 20
	// NumberBaseHundred represents the base for hundreds.
	NumberBaseHundred = 100
	// NumberBaseThousand represents the base for thousands.
	NumberBaseThousand = 1000
	// NumberBaseMillion represents the base for millions.
	NumberBaseMillion = 1000000
	// MaxDigitsForWords is the longest digit run spelled as a number.
	MaxDigitsForWords = 9
)

// NumberRange is an inclusive range of integers.
type NumberRange struct {
	Min int
	Max int
}

// Contains reports whether n lies in the range.
func (r NumberRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// DigitByDigitRanges are read one digit at a time, as postal codes are.
var DigitByDigitRanges = []NumberRange{
	{Min: 10000, Max: 99999},
}

// PairRanges are read as two two-digit groups, as years are. Multiples of a
// hundred are excluded and spelled as numbers.
var PairRanges = []NumberRange{
	{Min: 1101, Max: 1999},
}

type numberConverter struct {
	units []string
	teens []string
	tens  []string
}

func newNumberConverter() *numberConverter {
	return &numberConverter{
		units: []string{
			"zero", "uno", "due", "tre", "quattro",
			"cinque", "sei", "sette", "otto", "nove",
		},
		teens: []string{
			"dieci", "undici", "dodici", "tredici", "quattordici",
			"quindici", "sedici", "diciassette", "diciotto", "diciannove",
		},
		tens: []string{
			"", "", "venti", "trenta", "quaranta", "cinquanta",
			"sessanta", "settanta", "ottanta", "novanta",
		},
	}
}

var italianNumbers = newNumberConverter()

// NumberToWords spells a run of ASCII digits in Italian.
func NumberToWords(digits string) string {
	if digits == "" {
		return digits
	}

	if digits == "0" {
		return italianNumbers.units[0]
	}

	if digits[0] == '0' || len(digits) > MaxDigitsForWords {
		return italianNumbers.digitByDigit(digits)
	}

	number, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}

	if inRanges(DigitByDigitRanges, number) {
		return italianNumbers.digitByDigit(digits)
	}

	if inRanges(PairRanges, number) && number%NumberBaseHundred != 0 {
		return accentFinalThree(italianNumbers.convertPairs(number))
	}

	return accentFinalThree(italianNumbers.convertMillions(number))
}

func inRanges(ranges []NumberRange, n int) bool {
	for _, r := range ranges {
		if r.Contains(n) {
			return true
		}
	}

	return false
}

func (nc *numberConverter) digitByDigit(digits string) string {
	words := make([]string, 0, len(digits))
	for _, digit := range digits {
		words = append(words, nc.units[digit-'0'])
	}

	return strings.Join(words, " ")
}

func (nc *numberConverter) convertPairs(num int) string {
	high := num / NumberBaseHundred
	low := num % NumberBaseHundred

	if low < NumberBaseTen {
		return nc.convertUnderHundred(high) + " " + nc.units[0] + " " + nc.units[low]
	}

	return nc.convertUnderHundred(high) + " " + nc.convertUnderHundred(low)
}

// convertUnderHundred returns "" for zero so that compounds can append it.
func (nc *numberConverter) convertUnderHundred(num int) string {
	switch {
	case num == 0:
		return ""
	case num < NumberBaseTen:
		return nc.units[num]
	case num < NumberBaseTwenty:
		return nc.teens[num-NumberBaseTen]
	}

	tens := nc.tens[num/NumberBaseTen]
	unit := num % NumberBaseTen

	if unit == 0 {
		return tens
	}

	// venti + uno -> ventuno, trenta + otto -> trentotto
	if unit == 1 || unit == 8 {
		tens = tens[:len(tens)-1]
	}

	return tens + nc.units[unit]
}

func (nc *numberConverter) convertHundreds(num int) string {
	hundreds := num / NumberBaseHundred
	remainder := num % NumberBaseHundred

	var prefix string

	switch hundreds {
	case 0:
		return nc.convertUnderHundred(remainder)
	case 1:
		prefix = "cento"
	default:
		prefix = nc.units[hundreds] + "cento"
	}

	// cento + ottanta -> centottanta, cento + otto -> centotto
	if remainder/NumberBaseTen == 8 || remainder == 8 {
		prefix = prefix[:len(prefix)-1]
	}

	return prefix + nc.convertUnderHundred(remainder)
}

func (nc *numberConverter) convertThousands(num int) string {
	thousands := num / NumberBaseThousand
	remainder := num % NumberBaseThousand

	switch thousands {
	case 0:
		return nc.convertHundreds(remainder)
	case 1:
		return "mille" + nc.convertHundreds(remainder)
	default:
		return dropFinalUno(nc.convertHundreds(thousands)) + "mila" + nc.convertHundreds(remainder)
	}
}

func (nc *numberConverter) convertMillions(num int) string {
	millions := num / NumberBaseMillion
	remainder := num % NumberBaseMillion

	var prefix string

	switch millions {
	case 0:
		return nc.convertThousands(remainder)
	case 1:
		prefix = "un milione"
	default:
		prefix = dropFinalUno(nc.convertThousands(millions)) + " milioni"
	}

	if remainder == 0 {
		return prefix
	}

	return prefix + " " + nc.convertThousands(remainder)
}

// dropFinalUno turns ventuno into ventun before mila and milioni.
func dropFinalUno(word string) string {
	if strings.HasSuffix(word, "uno") {
		return strings.TrimSuffix(word, "o")
	}

	return word
}

// accentFinalThree writes ventitré, centotré, but leaves a bare tre alone.
func accentFinalThree(words string) string {
	fields := strings.Split(words, " ")
	for i, word := range fields {
		if word != "tre" && strings.HasSuffix(word, "tre") {
			fields[i] = strings.TrimSuffix(word, "tre") + "tré"
		}
	}

	return strings.Join(fields, " ")
}
