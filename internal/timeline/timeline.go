// Package timeline turns a conversion result into a playable lip-sync
// timeline: absolute milliseconds and the 15 Oculus viseme ids used by
// avatar frontends.
package timeline

import (
	"errors"
	"fmt"

	"github.com/book-expert/lipsync-service/internal/lipsync"
)

const (
	// DefaultMsPerUnit maps one relative duration unit to milliseconds.
	DefaultMsPerUnit = 100.0
	// DefaultSilenceUnits is the length of each silence pad in duration units.
	DefaultSilenceUnits = 1.0
)

// ErrInvalidScale is returned for a non-positive time scale or a negative pad.
var ErrInvalidScale = errors.New("invalid timeline scale")

// OculusViseme represents the 15 Oculus lip-sync viseme ids.
type OculusViseme int

const (
	OculusSil OculusViseme = 0  // silence
	OculusPP  OculusViseme = 1  // p, b, m
	OculusFF  OculusViseme = 2  // f, v
	OculusTH  OculusViseme = 3  // th
	OculusDD  OculusViseme = 4  // t, d
	OculusKK  OculusViseme = 5  // k, g
	OculusCH  OculusViseme = 6  // ch, j, sh
	OculusSS  OculusViseme = 7  // s, z
	OculusNN  OculusViseme = 8  // n, l
	OculusRR  OculusViseme = 9  // r
	OculusAA  OculusViseme = 10 // a
	OculusE   OculusViseme = 11 // e
	OculusI   OculusViseme = 12 // i
	OculusO   OculusViseme = 13 // o
	OculusU   OculusViseme = 14 // u
)

var oculusIDs = map[lipsync.Viseme]OculusViseme{
	lipsync.VisemeSil: OculusSil,
	lipsync.VisemePP:  OculusPP,
	lipsync.VisemeFF:  OculusFF,
	lipsync.VisemeTH:  OculusTH,
	lipsync.VisemeDD:  OculusDD,
	lipsync.VisemeKK:  OculusKK,
	lipsync.VisemeCH:  OculusCH,
	lipsync.VisemeSS:  OculusSS,
	lipsync.VisemeNN:  OculusNN,
	lipsync.VisemeRR:  OculusRR,
	lipsync.VisemeAA:  OculusAA,
	lipsync.VisemeE:   OculusE,
	lipsync.VisemeI:   OculusI,
	lipsync.VisemeO:   OculusO,
	lipsync.VisemeU:   OculusU,
}

// OculusID returns the numeric id of v. Unknown visemes map to silence.
func OculusID(v lipsync.Viseme) OculusViseme {
	id, ok := oculusIDs[v]
	if !ok {
		return OculusSil
	}

	return id
}

// Event is one viseme with its timing in milliseconds.
type Event struct {
	Viseme   lipsync.Viseme `json:"viseme"   msgpack:"viseme"`
	VisemeID OculusViseme   `json:"visemeId" msgpack:"visemeId"`
	Time     float64        `json:"time"     msgpack:"time"`
	Duration float64        `json:"duration" msgpack:"duration"`
}

// End returns the time at which the event stops.
func (e Event) End() float64 {
	return e.Time + e.Duration
}

// Timeline is a complete lip-sync animation for one text.
type Timeline struct {
	Text   string  `json:"text"   msgpack:"text"`
	Events []Event `json:"events" msgpack:"events"`
	// Duration is the total length in milliseconds, trailing pauses included.
	Duration float64 `json:"duration" msgpack:"duration"`
}

// Options controls how relative durations become milliseconds.
type Options struct {
	MsPerUnit float64
	// PadSilence adds a silence event before the first and after the last viseme.
	PadSilence   bool
	SilenceUnits float64
}

// DefaultOptions returns the scale used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MsPerUnit:    DefaultMsPerUnit,
		PadSilence:   false,
		SilenceUnits: DefaultSilenceUnits,
	}
}

// Build scales res into a Timeline.
func Build(res *lipsync.Result, opts Options) (*Timeline, error) {
	if opts.MsPerUnit <= 0 {
		return nil, fmt.Errorf("%w: ms per unit %v", ErrInvalidScale, opts.MsPerUnit)
	}

	if opts.SilenceUnits < 0 {
		return nil, fmt.Errorf("%w: silence units %v", ErrInvalidScale, opts.SilenceUnits)
	}

	var offset, pad float64
	if opts.PadSilence {
		pad = opts.SilenceUnits * opts.MsPerUnit
		offset = pad
	}

	timeline := &Timeline{
		Text:     res.NormalizedText,
		Events:   make([]Event, 0, res.Len()+2),
		Duration: res.EndTime*opts.MsPerUnit + 2*pad,
	}

	if opts.PadSilence {
		timeline.Events = append(timeline.Events, silence(0, pad))
	}

	for k, viseme := range res.Visemes {
		timeline.Events = append(timeline.Events, Event{
			Viseme:   viseme,
			VisemeID: OculusID(viseme),
			Time:     offset + res.StartTimes[k]*opts.MsPerUnit,
			Duration: res.Durations[k] * opts.MsPerUnit,
		})
	}

	if opts.PadSilence {
		timeline.Events = append(timeline.Events, silence(offset+res.EndTime*opts.MsPerUnit, pad))
	}

	return timeline, nil
}

func silence(at, duration float64) Event {
	return Event{
		Viseme:   lipsync.VisemeSil,
		VisemeID: OculusSil,
		Time:     at,
		Duration: duration,
	}
}
