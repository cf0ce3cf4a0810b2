package termview

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/blockfall/engine"
)

const sampleRate = beep.SampleRate(44100)

type Tone struct {
	Freq     float64
	Duration time.Duration
}

// ToneFor returns the cue played for an event kind.
func ToneFor(kind engine.EventKind) (Tone, bool) {
	switch kind {
	case engine.EventLand:
		return Tone{Freq: 220, Duration: 40 * time.Millisecond}, true
	case engine.EventRowsCleared:
		return Tone{Freq: 660, Duration: 120 * time.Millisecond}, true
	case engine.EventOverflowReset:
		return Tone{Freq: 110, Duration: 300 * time.Millisecond}, true
	case engine.EventBatchLanded:
		return Tone{Freq: 880, Duration: 15 * time.Millisecond}, true
	case engine.EventPatternDone:
		return Tone{Freq: 523.25, Duration: 250 * time.Millisecond}, true
	default:
		return Tone{}, false
	}
}

// Sound plays short sine cues for simulator events.
type Sound struct{}

func NewSound() (*Sound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Sound{}, nil
}

func (s *Sound) Listener() engine.Listener {
	return func(e engine.Event) {
		tone, ok := ToneFor(e.Kind)
		if !ok {
			return
		}
		sine, err := generators.SineTone(sampleRate, tone.Freq)
		if err != nil {
			return
		}
		speaker.Play(beep.Take(sampleRate.N(tone.Duration), sine))
	}
}

func (s *Sound) Close() {
	speaker.Close()
}
