package sampler

import (
	"fmt"

	"github.com/cwbudde/algo-sampler/wavio"
)

// PreparedSample bundles everything a slot needs to start playing a new
// sample: the decoded buffer, both pre-loaded shifters, the display
// waveform and the per-frame render scratch. Building one is the
// expensive part and happens off the audio thread; installing it is a
// handful of pointer stores.
type PreparedSample struct {
	Sample   *Sample
	Classic  *ClassicShifter
	Psola    *PsolaShifter
	Waveform *Waveform

	frame []float32
}

// NewPreparedSample builds the install payload for a decoded sample. The
// shifters must already be loaded. Never call this on the audio thread:
// the waveform reduction walks the whole sample.
func NewPreparedSample(sample *Sample, classic *ClassicShifter, psola *PsolaShifter) *PreparedSample {
	return &PreparedSample{
		Sample:   sample,
		Classic:  classic,
		Psola:    psola,
		Waveform: NewDisplayWaveform(sample),
		frame:    make([]float32, sample.Channels),
	}
}

// loadResult carries a fully prepared sample from the loader goroutine to
// the audio thread. Everything expensive (decoding, pitch detection,
// PSOLA analysis, the display waveform) already happened; installation is
// a pointer swap.
type loadResult struct {
	slot int
	path string

	prep *PreparedSample

	// psolaErr is non-fatal: the sample still plays in classic mode.
	psolaErr error
	err      error
}

// prepareSample decodes a WAV file and builds the full install payload.
func prepareSample(slot int, path string) loadResult {
	res := loadResult{slot: slot, path: path}

	clip, err := wavio.Decode(path)
	if err != nil {
		res.err = fmt.Errorf("load sample %q: %w", path, err)
		return res
	}
	sample, err := NewSample(clip.Data, clip.Channels, clip.SampleRate)
	if err != nil {
		res.err = fmt.Errorf("load sample %q: %w", path, err)
		return res
	}

	classic := NewClassicShifter()
	if err := classic.Load(sample); err != nil {
		res.err = fmt.Errorf("load sample %q: %w", path, err)
		return res
	}

	psola := NewPsolaShifter()
	if err := psola.Load(sample); err != nil {
		res.psolaErr = fmt.Errorf("analyze sample %q: %w", path, err)
	}

	res.prep = NewPreparedSample(sample, classic, psola)
	return res
}

// LoadSample decodes, analyzes and installs a sample synchronously. Meant
// for offline rendering and startup; running audio callers should use
// LoadSampleAsync instead.
func (e *Engine) LoadSample(slot int, path string) error {
	if slot < 0 || slot >= MaxSlots {
		return fmt.Errorf("load sample: invalid slot %d", slot)
	}
	res := prepareSample(slot, path)
	if res.err != nil {
		return res.err
	}
	if res.psolaErr != nil {
		e.Logf("sampler: %v", res.psolaErr)
	}
	e.install(slot, res.prep)
	e.Params.Slots[slot].SamplePath = res.path
	return nil
}

// LoadSampleAsync decodes and analyzes a sample off the audio thread and
// queues the result for installation at the next block boundary. Load
// errors surface through the engine's log function.
func (e *Engine) LoadSampleAsync(slot int, path string) {
	if slot < 0 || slot >= MaxSlots {
		return
	}
	go func() {
		e.pending <- prepareSample(slot, path)
	}()
}
