package sampler

import (
	"fmt"

	"github.com/cwbudde/algo-sampler/pitchdetect"
	"github.com/cwbudde/algo-sampler/tdpsola"
)

// Detection thresholds matching the tonal material this shifter targets:
// enough energy to trust the autocorrelation and a permissive clarity floor
// so decaying drum fundamentals still qualify.
const (
	psolaPowerThreshold   = 5.0
	psolaClarityThreshold = 0.1
)

// PsolaShifter pitch-shifts by pitch-synchronous overlap-add resynthesis.
// Load runs pitch detection and builds one analysis per channel (expensive,
// call off the audio thread); Trigger renders fresh synthesis streams from
// the kept analyses, so retriggering is cheap. Unlike ClassicShifter the
// playback duration is independent of the pitch shift.
type PsolaShifter struct {
	sample       *Sample
	analyses     []*tdpsola.Analysis
	streams      [][]float32
	wavelength   float64
	srCorrection float32
	playbackRate float32
	loaded       bool

	// Logf receives diagnostics for failures with no error return path,
	// like a synthesis rebuild failing at trigger time. Nil disables it.
	Logf func(format string, args ...any)
}

// NewPsolaShifter creates an empty PSOLA shifter.
func NewPsolaShifter() *PsolaShifter {
	return &PsolaShifter{srCorrection: 1, playbackRate: 1}
}

func (p *PsolaShifter) Clear() {
	p.sample = nil
	p.analyses = nil
	p.streams = nil
	p.wavelength = 0
	p.srCorrection = 1
	p.playbackRate = 1
	p.loaded = false
}

// Load analyzes the sample. Detection failure (silence, noise, too little
// power) leaves the shifter not ready and returns the error; no partial
// state survives a failed load.
func (p *PsolaShifter) Load(sample *Sample) error {
	p.Clear()

	pitch, err := pitchdetect.Detect(sample.Mono(), float64(sample.SampleRate), psolaPowerThreshold, psolaClarityThreshold)
	if err != nil {
		return fmt.Errorf("psola load: %w", err)
	}

	wavelength := float64(sample.SampleRate) / pitch.Frequency
	analyses := make([]*tdpsola.Analysis, sample.Channels)
	for ch := range analyses {
		a, err := tdpsola.NewAnalysis(sample.Channel(ch), wavelength)
		if err != nil {
			return fmt.Errorf("psola load channel %d: %w", ch, err)
		}
		analyses[ch] = a
	}

	p.sample = sample
	p.analyses = analyses
	p.wavelength = wavelength
	p.loaded = true
	return nil
}

// Trigger renders synthesis streams for the new note. The analyses are
// reused; only the synthesis pass runs again. A synthesis failure leaves
// the shifter not ready and reports through Logf.
func (p *PsolaShifter) Trigger(srCorrection, semitones float32) {
	if !p.loaded {
		return
	}

	p.playbackRate = SemitonesToRate(semitones)
	p.srCorrection = srCorrection

	streams := make([][]float32, len(p.analyses))
	for ch, a := range p.analyses {
		syn, err := tdpsola.NewSynthesis(a, p.wavelength/float64(p.playbackRate), 1.0)
		if err != nil {
			p.streams = nil
			if p.Logf != nil {
				p.Logf("psola trigger channel %d: %v", ch, err)
			}
			return
		}
		streams[ch] = syn.Render()
	}
	p.streams = streams
}

func (p *PsolaShifter) Ready() bool {
	return p.loaded && p.streams != nil
}

func (p *PsolaShifter) Channels() int {
	if p.sample == nil {
		return 0
	}
	return p.sample.Channels
}

func (p *PsolaShifter) FrameAt(position float32, dst []float32) bool {
	if p.streams == nil {
		return false
	}
	idx := int(position*p.srCorrection + 0.5)
	for ch, stream := range p.streams {
		if idx < 0 || idx >= len(stream) {
			return false
		}
		dst[ch] = stream[idx]
	}
	return true
}

func (p *PsolaShifter) Kind() ShifterKind {
	return KindPsola
}

func (p *PsolaShifter) SourcePosition(position float32) float32 {
	return p.srCorrection * position
}

// DetectedWavelength returns the analysis pitch period in source samples,
// or 0 when nothing is loaded.
func (p *PsolaShifter) DetectedWavelength() float64 {
	return p.wavelength
}
