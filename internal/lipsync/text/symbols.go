package text

import "strings"

// SymbolWord pairs a symbol with the words spoken in its place.
type SymbolWord struct {
	Symbol string
	Words  string
}

// SymbolWords lists the currency and math symbols read aloud, in replacement order.
var SymbolWords = []SymbolWord{
	{Symbol: "%", Words: "per cento"},
	{Symbol: "€", Words: "euro"},
	{Symbol: "$", Words: "dollari"},
	{Symbol: "£", Words: "sterline"},
	{Symbol: "&", Words: "e"},
	{Symbol: "+", Words: "più"},
	{Symbol: "=", Words: "uguale"},
	{Symbol: "@", Words: "chiocciola"},
	{Symbol: "°", Words: "gradi"},
	{Symbol: "×", Words: "per"},
	{Symbol: "÷", Words: "diviso"},
}

// newSymbolReplacer pads every spoken form with spaces so it never fuses
// with the neighbouring word; the pipeline collapses the extra spaces later.
func newSymbolReplacer(symbols []SymbolWord) *strings.Replacer {
	pairs := make([]string, 0, 2*len(symbols))
	for _, symbol := range symbols {
		pairs = append(pairs, symbol.Symbol, " "+symbol.Words+" ")
	}

	return strings.NewReplacer(pairs...)
}
