package lipsync

// ItalianRules is the grapheme-to-viseme table for Italian orthography.
//
// Rules read left[CORE]right=visemes. Within a letter the order is the
// priority: the first rule whose context matches wins, so longer and more
// constrained spellings come first and every letter ends with a context-free
// fallback.
var ItalianRules = map[rune][]string{
	'A': {"[A]=aa"},
	'B': {"[B]=PP"},
	'C': {
		"[CH]+=kk",
		"[CI]#=CH",
		"[C]C+=DD",
		"[C]+=CH",
		"[C]=kk",
	},
	'D': {"[D]=DD"},
	'E': {"[E]=E"},
	'F': {"[F]=FF"},
	'G': {
		" [GLI] =nn I",
		"[GLI]#=nn",
		"[GL]I=nn",
		"[GN]=nn",
		"[GH]+=kk",
		"[GI]#=CH",
		"[G]G+=DD",
		"[G]+=CH",
		"[G]=kk",
	},
	'H': {"[H]="},
	'I': {"[I]=I"},
	'J': {"[J]=I"},
	'K': {"[K]=kk"},
	'L': {"[L]=nn"},
	'M': {"[M]=PP"},
	'N': {"[N]=nn"},
	'O': {"[O]=O"},
	'P': {"[P]=PP"},
	'Q': {
		"[QU]=kk U",
		"[Q]=kk",
	},
	'R': {"[R]=RR"},
	'S': {
		"[SCI]#=CH",
		"[SC]+=CH",
		"[SCH]=SS kk",
		"[S]=SS",
	},
	'T': {"[T]=DD"},
	'U': {"[U]=U"},
	'V': {"[V]=FF"},
	'W': {"[W]=U"},
	'X': {"[X]=kk SS"},
	'Y': {"[Y]=I"},
	'Z': {
		"[Z]Z=DD",
		"[Z]=DD SS",
	},
	'À': {"[À]=aa"},
	'È': {"[È]=E"},
	'É': {"[É]=E"},
	'Ì': {"[Ì]=I"},
	'Í': {"[Í]=I"},
	'Ò': {"[Ò]=O"},
	'Ó': {"[Ó]=O"},
	'Ù': {"[Ù]=U"},
	'Ú': {"[Ú]=U"},
}
