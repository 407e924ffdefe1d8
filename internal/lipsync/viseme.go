// Package lipsync converts normalized text into a timed sequence of visemes.
//
// Conversion is driven by an ordered, context-sensitive rule table. Each rule
// names a left context, the letters it consumes and a right context, and
// emits zero or more visemes. The engine scans the text one code point at a
// time and applies the first rule of the current letter whose context matches.
package lipsync

import "slices"

// Viseme identifies a mouth shape in the 15-symbol animation set.
type Viseme string

// The viseme vocabulary understood by the renderer.
const (
	VisemeAA  Viseme = "aa"  // a (father)
	VisemeE   Viseme = "E"   // e (bed)
	VisemeI   Viseme = "I"   // i (sit)
	VisemeO   Viseme = "O"   // o (go)
	VisemeU   Viseme = "U"   // u (boot)
	VisemePP  Viseme = "PP"  // p, b, m
	VisemeSS  Viseme = "SS"  // s, z
	VisemeTH  Viseme = "TH"  // th
	VisemeDD  Viseme = "DD"  // t, d
	VisemeFF  Viseme = "FF"  // f, v
	VisemeKK  Viseme = "kk"  // k, g
	VisemeNN  Viseme = "nn"  // n, l
	VisemeRR  Viseme = "RR"  // r
	VisemeCH  Viseme = "CH"  // ch, j, sh
	VisemeSil Viseme = "sil" // silence
)

// AllVisemes lists the vocabulary in renderer id order.
var AllVisemes = []Viseme{
	VisemeSil, VisemePP, VisemeFF, VisemeTH, VisemeDD,
	VisemeKK, VisemeCH, VisemeSS, VisemeNN, VisemeRR,
	VisemeAA, VisemeE, VisemeI, VisemeO, VisemeU,
}

// IsValid reports whether v belongs to the vocabulary.
func (v Viseme) IsValid() bool {
	return slices.Contains(AllVisemes, v)
}

func (v Viseme) String() string {
	return string(v)
}
