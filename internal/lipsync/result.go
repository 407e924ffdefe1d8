package lipsync

// Result is the outcome of one conversion. The three sequences have equal
// length; event k starts at StartTimes[k] and lasts Durations[k].
type Result struct {
	NormalizedText string    `json:"normalizedText" msgpack:"normalizedText"`
	Visemes        []Viseme  `json:"visemes"        msgpack:"visemes"`
	StartTimes     []float64 `json:"times"          msgpack:"times"`
	Durations      []float64 `json:"durations"      msgpack:"durations"`
	// EndTime is the clock after the last character, trailing pauses included.
	EndTime float64 `json:"endTime" msgpack:"endTime"`
}

func newResult(normalized string, capacity int) *Result {
	return &Result{
		NormalizedText: normalized,
		Visemes:        make([]Viseme, 0, capacity),
		StartTimes:     make([]float64, 0, capacity),
		Durations:      make([]float64, 0, capacity),
		EndTime:        0,
	}
}

// Len returns the number of events.
func (r *Result) Len() int {
	return len(r.Visemes)
}

// emit records v at time t and returns the clock after it. A viseme equal to
// the previous event extends that event by MergeFactor of its base duration.
func (r *Result) emit(v Viseme, base, t float64) float64 {
	last := len(r.Visemes) - 1
	if last >= 0 && r.Visemes[last] == v {
		extra := MergeFactor * base
		r.Durations[last] += extra

		return t + extra
	}

	r.Visemes = append(r.Visemes, v)
	r.StartTimes = append(r.StartTimes, t)
	r.Durations = append(r.Durations, base)

	return t + base
}
