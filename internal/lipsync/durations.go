package lipsync

const (
	// DefaultVisemeDuration is used for visemes missing from the duration table.
	DefaultVisemeDuration = 1.0
	// MergeFactor scales the duration added when a viseme repeats.
	MergeFactor = 0.7
)

// VisemeDurations holds base relative durations, 1.0 being an average sound.
var VisemeDurations = map[Viseme]float64{
	VisemeAA:  0.95,
	VisemeE:   0.90,
	VisemeI:   0.92,
	VisemeO:   0.96,
	VisemeU:   0.95,
	VisemePP:  1.08,
	VisemeSS:  1.23,
	VisemeTH:  1,
	VisemeDD:  1.05,
	VisemeFF:  1.00,
	VisemeKK:  1.21,
	VisemeNN:  0.88,
	VisemeRR:  0.88,
	VisemeCH:  1.15,
	VisemeSil: 1,
}

// PauseDurations holds the time consumed by characters that have no rules.
var PauseDurations = map[rune]float64{
	' ':  1,
	',':  3,
	'-':  0.5,
	'\'': 0.5,
}
