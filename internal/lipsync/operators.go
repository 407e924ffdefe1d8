package lipsync

// OperatorKind describes how a context token consumes characters.
type OperatorKind int

// Operator kinds. Literal is used for every token that is not an operator.
const (
	KindLiteral OperatorKind = iota
	KindClassOne
	KindClassPlus
	KindClassStar
	KindChoice
	KindBoundary
)

// Character classes shared by the operators.
const (
	VowelClass          = "AEIOUÀÈÉÌÍÒÓÙÚ"
	VoicedConsonants    = "BDVGJLMNRWZ"
	Consonants          = "BCDFGHJKLMNPQRSTVWXZ"
	FrontVowels         = "EI"
	ClusterConsonants   = "SCGZXJ"
	ExtendedConsonants  = "TSRDLZNJ"
	coreOpenDelimiter   = '['
	coreCloseDelimiter  = ']'
	visemeListDelimiter = '='
)

// Operator is the expansion of a single-character context token.
type Operator struct {
	Token   rune
	Name    string
	Kind    OperatorKind
	Class   string
	Choices []string
}

// Operators is the operator table used by the rule compiler.
var Operators = map[rune]Operator{
	'#': {Token: '#', Name: "one or more vowels", Kind: KindClassPlus, Class: VowelClass},
	'.': {Token: '.', Name: "one voiced consonant", Kind: KindClassOne, Class: VoicedConsonants},
	'%': {
		Token:   '%',
		Name:    "suffix",
		Kind:    KindChoice,
		Choices: []string{"MENTE", "ZIONE", "ISMO", "ISTA", "ETTO", "ETTA"},
	},
	'&': {
		Token:   '&',
		Name:    "consonant cluster",
		Kind:    KindChoice,
		Choices: choicesOf(ClusterConsonants, "CH", "SH"),
	},
	'@': {
		Token:   '@',
		Name:    "extended consonant cluster",
		Kind:    KindChoice,
		Choices: choicesOf(ExtendedConsonants, "TH", "CH", "SH"),
	},
	'^': {Token: '^', Name: "one consonant", Kind: KindClassOne, Class: Consonants},
	'+': {Token: '+', Name: "E or I", Kind: KindClassOne, Class: FrontVowels},
	':': {Token: ':', Name: "zero or more consonants", Kind: KindClassStar, Class: Consonants},
	' ': {Token: ' ', Name: "word boundary", Kind: KindBoundary},
}

// LookupOperator returns the expansion of token. Tokens that are not operators
// expand to themselves as literals.
func LookupOperator(token rune) Operator {
	if op, ok := Operators[token]; ok {
		return op
	}

	return Operator{Token: token, Name: "literal", Kind: KindLiteral}
}

func choicesOf(singles string, multi ...string) []string {
	choices := make([]string, 0, len(singles)+len(multi))
	for _, r := range singles {
		choices = append(choices, string(r))
	}

	return append(choices, multi...)
}
