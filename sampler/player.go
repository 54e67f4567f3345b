package sampler

// BaseNote is the MIDI note at which a tonal slot plays its sample
// unshifted (C5).
const BaseNote = 72

// SamplePlayer is one voice of the sampler. It owns the loaded sample,
// one shifter per algorithm, the amplitude envelope and the gain
// smoother. All methods run on the audio thread; sample installation
// data is prepared off-thread and handed over via InstallSample.
type SamplePlayer struct {
	params *SlotParams
	shared SharedState

	sample  *Sample
	classic *ClassicShifter
	psola   *PsolaShifter

	env  MultiChannelADSR
	gain *Smoother

	hostRate     float64
	srCorrection float32
	active       ShifterKind

	// Blend window shared across the kit, refreshed by the engine at
	// block boundaries.
	blendCenter float32
	blendWidth  float32

	velocity float32

	// frame is the per-frame scratch for the active shifter, sized to
	// the sample's channel count at install time.
	frame []float32
}

// NewSamplePlayer creates a silent player bound to one slot's parameters.
func NewSamplePlayer(params *SlotParams, hostRate float64) *SamplePlayer {
	p := &SamplePlayer{
		params:   params,
		classic:  NewClassicShifter(),
		psola:    NewPsolaShifter(),
		hostRate: hostRate,
		velocity: 1,
	}
	p.env.SetSampleRate(float32(hostRate))
	p.gain = NewSmoother(float32(hostRate), gainRampTime)
	p.gain.Jump(params.Gain)
	return p
}

// gainRampTime is how long slot gain changes take to settle, in seconds.
const gainRampTime = 0.02

// SetSampleRate updates the host sample rate. Playback state is reset
// since stage progress and rate correction no longer line up.
func (p *SamplePlayer) SetSampleRate(rate float64) {
	p.hostRate = rate
	p.env.SetSampleRate(float32(rate))
	p.gain.SetSampleRate(float32(rate))
	p.env.Reset()
	p.updateCorrection()
}

// InstallSample swaps in a prepared sample. Everything in the payload was
// built off the audio thread, so installing is only pointer stores. A nil
// payload clears the slot, reusing the existing shifters.
func (p *SamplePlayer) InstallSample(prep *PreparedSample) {
	p.env.Reset()
	if prep == nil {
		p.sample = nil
		p.classic.Clear()
		p.psola.Clear()
		p.frame = nil
		p.shared.SetWaveform(nil)
		p.updateCorrection()
		return
	}
	p.sample = prep.Sample
	p.classic = prep.Classic
	p.psola = prep.Psola
	p.frame = prep.frame
	p.shared.SetWaveform(prep.Waveform)
	p.updateCorrection()
}

func (p *SamplePlayer) updateCorrection() {
	if p.sample == nil || p.hostRate <= 0 {
		p.srCorrection = 1.0
		return
	}
	p.srCorrection = float32(float64(p.sample.SampleRate) / p.hostRate)
}

// Shared exposes the GUI-facing state of this slot.
func (p *SamplePlayer) Shared() *SharedState {
	return &p.shared
}

// Sample returns the installed sample, or nil.
func (p *SamplePlayer) Sample() *Sample {
	return p.sample
}

// StartPlaying triggers the voice for a MIDI note. The pitch offset in
// semitones combines the note distance from the base note (tonal slots
// only), the slot's tuning offset and its root note. Velocity scales the
// voice linearly for the whole note.
func (p *SamplePlayer) StartPlaying(note, velocity float32) {
	if p.sample == nil {
		return
	}
	var semitones float32
	if p.params.Tonal {
		semitones = note - BaseNote
	}
	semitones += p.params.SemitoneOffset - p.params.RootNote

	p.active = p.params.Mode
	p.velocity = velocity
	sh := p.activeShifter()
	sh.Trigger(p.srCorrection, semitones)
	if !sh.Ready() {
		// Analysis failed for this sample; the slot stays silent in
		// PSOLA mode rather than switching algorithms behind the
		// user's back.
		p.env.Reset()
		return
	}
	p.env.NoteOn()
}

// StopPlaying releases the envelope. Playback continues through the
// release stage.
func (p *SamplePlayer) StopPlaying() {
	p.env.NoteOff()
}

// Reset silences the voice immediately.
func (p *SamplePlayer) Reset() {
	p.env.Reset()
	p.gain.Jump(p.params.Gain)
}

func (p *SamplePlayer) activeShifter() PitchShifter {
	if p.active == KindPsola {
		return p.psola
	}
	return p.classic
}

// IsSilent reports whether the voice contributes nothing to the output.
func (p *SamplePlayer) IsSilent() bool {
	return p.env.IsIdling() || p.params.Muted || p.sample == nil
}

// ProcessFrame renders one frame into out, mixing additively. elapsed is
// the number of frames since the trigger. Channels beyond the sample's
// own duplicate its last channel. Returns false once the voice has gone
// silent or run out of data.
func (p *SamplePlayer) ProcessFrame(elapsed uint64, out []float32) bool {
	if p.IsSilent() {
		return false
	}

	sh := p.activeShifter()
	if !sh.FrameAt(float32(elapsed), p.frame) {
		// End of sample data: hard cut. The envelope resets so the
		// voice reads as idle immediately.
		p.env.Reset()
		return false
	}

	p.gain.SetTarget(p.params.Gain)
	gain := p.gain.NextValue(true)
	env := p.env.NextValue(p.params.Attack, p.params.Decay, p.params.Sustain, p.params.Release, true)
	blend := BlendGain(p.params.BlendRole,
		float32(float64(elapsed)/p.hostRate),
		p.blendCenter, p.blendWidth)

	scale := gain * env * blend * p.velocity
	last := len(p.frame) - 1
	for c := range out {
		src := c
		if src > last {
			src = last
		}
		out[c] += p.frame[src] * scale
	}
	return true
}

// PublishPosition pushes the current playhead to the shared state. Called
// once per block, not per frame.
func (p *SamplePlayer) PublishPosition(elapsed uint64) {
	playing := !p.IsSilent()
	var pos float32
	if playing {
		pos = p.activeShifter().SourcePosition(float32(elapsed))
	}
	p.shared.PublishPosition(float64(pos), playing)
}

// SetBlendWindow refreshes the kit-wide crossfade window for the next
// block of frames.
func (p *SamplePlayer) SetBlendWindow(center, width float32) {
	p.blendCenter = center
	p.blendWidth = width
}
