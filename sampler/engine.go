package sampler

import "log"

// pendingQueueSize bounds the number of load results waiting for
// installation. Loads are user-driven and rare, so a small queue is
// plenty.
const pendingQueueSize = 16

// Engine is the sampler's audio core: eight sample players mixed through
// a smoothed master gain. Process, NoteOn, NoteOff and the other audio
// methods must be called from a single thread; LoadSampleAsync may be
// called from anywhere.
type Engine struct {
	Params *Params

	players    [MaxSlots]*SamplePlayer
	masterGain *Smoother

	sampleRate float64
	channels   int

	// processCount is the frame index since the last NoteOn, shared by
	// all slots so blended voices stay aligned.
	processCount uint64

	pending chan loadResult

	// Logf receives load failures and diagnostics. Defaults to the
	// standard logger.
	Logf func(format string, args ...any)

	// slotLogf is the bound forwarder handed to each slot's PSOLA
	// shifter. Built once so installing on the audio thread stores a
	// plain value.
	slotLogf func(format string, args ...any)
}

// NewEngine creates an engine for the given host format.
func NewEngine(params *Params, sampleRate float64, channels int) *Engine {
	if params == nil {
		params = NewDefaultParams()
	}
	e := &Engine{
		Params:     params,
		sampleRate: sampleRate,
		channels:   channels,
		pending:    make(chan loadResult, pendingQueueSize),
		Logf:       log.Printf,
	}
	e.masterGain = NewSmoother(float32(sampleRate), gainRampTime)
	e.masterGain.Jump(params.MasterGain)
	e.slotLogf = func(format string, args ...any) {
		if e.Logf != nil {
			e.Logf(format, args...)
		}
	}
	for i := range e.players {
		e.players[i] = NewSamplePlayer(&params.Slots[i], sampleRate)
		e.players[i].psola.Logf = e.slotLogf
	}
	return e
}

// SampleRate returns the host sample rate.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// Channels returns the host channel count.
func (e *Engine) Channels() int {
	return e.channels
}

// ChangeSampleRate reconfigures the engine for a new host rate. All
// voices reset.
func (e *Engine) ChangeSampleRate(rate float64) {
	e.sampleRate = rate
	e.masterGain.SetSampleRate(float32(rate))
	for _, p := range e.players {
		p.SetSampleRate(rate)
	}
	e.processCount = 0
}

// ChangeChannelCount sets the host output channel count.
func (e *Engine) ChangeChannelCount(channels int) {
	if channels < 1 {
		channels = 1
	}
	e.channels = channels
}

// Player returns the voice for a slot.
func (e *Engine) Player(slot int) *SamplePlayer {
	return e.players[slot]
}

// ClearSlot drops a slot's sample.
func (e *Engine) ClearSlot(slot int) {
	if slot < 0 || slot >= MaxSlots {
		return
	}
	e.players[slot].InstallSample(nil)
	e.Params.Slots[slot].SamplePath = ""
}

// install swaps a prepared payload into a slot and points its PSOLA
// shifter at the engine's log hook.
func (e *Engine) install(slot int, prep *PreparedSample) {
	prep.Psola.Logf = e.slotLogf
	e.players[slot].InstallSample(prep)
}

// drainPending installs queued load results. Runs at block start, before
// any frame is rendered, so a swap never lands mid-block.
func (e *Engine) drainPending() {
	for {
		select {
		case res := <-e.pending:
			if res.err != nil {
				e.Logf("sampler: %v", res.err)
				continue
			}
			if res.psolaErr != nil {
				e.Logf("sampler: %v", res.psolaErr)
			}
			e.install(res.slot, res.prep)
			e.Params.Slots[res.slot].SamplePath = res.path
		default:
			return
		}
	}
}

// NoteOn triggers every slot from the start. The shared frame counter
// resets so all voices play the same timeline. Velocity is linear in
// [0, 1].
func (e *Engine) NoteOn(note, velocity float32) {
	e.processCount = 0
	for _, p := range e.players {
		p.StartPlaying(note, velocity)
	}
}

// NoteOff releases every slot.
func (e *Engine) NoteOff() {
	for _, p := range e.players {
		p.StopPlaying()
	}
}

// Reset silences all voices immediately.
func (e *Engine) Reset() {
	e.processCount = 0
	for _, p := range e.players {
		p.Reset()
	}
}

// Active reports whether any voice is currently audible.
func (e *Engine) Active() bool {
	for _, p := range e.players {
		if !p.IsSilent() {
			return true
		}
	}
	return false
}

// Process renders frames into buffer, which holds interleaved output for
// the engine's channel count. The buffer is overwritten, not mixed into.
func (e *Engine) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
	e.drainPending()

	channels := e.channels
	frames := len(buffer) / channels
	if frames == 0 {
		return
	}

	e.masterGain.SetTarget(e.Params.MasterGain)

	// Filter to the voices that can make sound this block and hand them
	// the current blend window.
	var active [MaxSlots]*SamplePlayer
	n := 0
	for _, p := range e.players {
		if p.IsSilent() {
			continue
		}
		p.SetBlendWindow(e.Params.BlendCenterTime, e.Params.BlendWidth)
		active[n] = p
		n++
	}

	for f := 0; f < frames; f++ {
		out := buffer[f*channels : (f+1)*channels]
		master := e.masterGain.NextValue(true)
		if n == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			active[i].ProcessFrame(e.processCount, out)
		}
		for c := range out {
			out[c] *= master
		}
		e.processCount++
	}

	for i := 0; i < n; i++ {
		active[i].PublishPosition(e.processCount)
	}
}
