package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/algo-sampler/wavio"
	"gitlab.com/gomidi/midi/v2/smf"
)

const blockFrames = 128

func main() {
	note := flag.Int("note", 72, "MIDI note number (72 = C5 = unshifted)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	gate := flag.Float64("gate", 0.5, "Send NoteOff after this many seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	outRate := flag.Int("out-rate", 0, "Resample the output to this rate (0 = keep render rate)")
	presetPath := flag.String("preset", "assets/presets/default.json", "Kit preset JSON file path")
	midiPath := flag.String("midi", "", "Render a standard MIDI file instead of a single note (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	const numChannels = 2

	params, err := preset.LoadJSON(*presetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
		os.Exit(1)
	}

	eng := sampler.NewEngine(params, float64(*sampleRate), numChannels)
	loaded := 0
	for slot := 0; slot < sampler.MaxSlots; slot++ {
		path := params.Slots[slot].SamplePath
		if path == "" {
			continue
		}
		if err := eng.LoadSample(slot, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading slot %d: %v\n", slot, err)
			os.Exit(1)
		}
		loaded++
	}
	if loaded == 0 {
		fmt.Fprintln(os.Stderr, "Preset contains no samples, nothing to render")
		os.Exit(1)
	}

	var samples []float32
	if *midiPath != "" {
		fmt.Printf("Rendering %s at %d Hz (preset: %s)...\n", *midiPath, *sampleRate, *presetPath)
		samples, err = renderMIDI(eng, *midiPath, *sampleRate, numChannels)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering MIDI: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("Rendering note %d for %.2f seconds at %d Hz (preset: %s)...\n", *note, *duration, *sampleRate, *presetPath)
		samples = renderNote(eng, noteOpts{
			note:        *note,
			velocity:    *velocity,
			duration:    *duration,
			gate:        *gate,
			decayDBFS:   *decayDBFS,
			holdBlocks:  *decayHoldBlocks,
			minDuration: *minDuration,
			maxDuration: *maxDuration,
			sampleRate:  *sampleRate,
			channels:    numChannels,
		})
	}

	fileRate := *sampleRate
	if *outRate > 0 && *outRate != *sampleRate {
		samples, err = wavio.Resample(samples, numChannels, *sampleRate, *outRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling output: %v\n", err)
			os.Exit(1)
		}
		fileRate = *outRate
	}

	if err := wavio.Encode(*output, samples, numChannels, fileRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames at %d Hz)\n", *output, len(samples)/numChannels, fileRate)
}

type noteOpts struct {
	note        int
	velocity    int
	duration    float64
	gate        float64
	decayDBFS   float64
	holdBlocks  int
	minDuration float64
	maxDuration float64
	sampleRate  int
	channels    int
}

func renderNote(eng *sampler.Engine, o noteOpts) []float32 {
	eng.NoteOn(float32(o.note), float32(o.velocity)/127)

	autoStop := !math.IsInf(o.decayDBFS, 1)
	block := make([]float32, blockFrames*o.channels)

	totalFrames := int(float64(o.sampleRate) * o.duration)
	if autoStop {
		totalFrames = int(float64(o.sampleRate) * o.maxDuration)
	}
	if totalFrames < 1 {
		totalFrames = 1
	}
	minFrames := int(float64(o.sampleRate) * o.minDuration)
	gateFrame := int(float64(o.sampleRate) * o.gate)
	if gateFrame < 0 {
		gateFrame = 0
	}
	if o.holdBlocks < 1 {
		o.holdBlocks = 1
	}
	thresholdLin := math.Pow(10.0, o.decayDBFS/20.0)

	samples := make([]float32, 0, totalFrames*o.channels)
	released := false
	belowCount := 0
	framesRendered := 0
	for framesRendered < totalFrames {
		frames := blockFrames
		if framesRendered+frames > totalFrames {
			frames = totalFrames - framesRendered
		}

		if !released && framesRendered >= gateFrame {
			eng.NoteOff()
			released = true
		}

		buf := block[:frames*o.channels]
		eng.Process(buf)
		samples = append(samples, buf...)
		framesRendered += frames

		if autoStop && framesRendered >= minFrames {
			if blockRMS(buf) < thresholdLin {
				belowCount++
				if belowCount >= o.holdBlocks {
					fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n",
						framesRendered, float64(framesRendered)/float64(o.sampleRate), o.decayDBFS)
					break
				}
			} else {
				belowCount = 0
			}
		}
	}
	return samples
}

type midiEvent struct {
	frame    int
	on       bool
	note     uint8
	velocity uint8
}

// renderMIDI plays back the note events of a standard MIDI file through the
// engine. The engine retriggers the whole kit on every NoteOn, matching its
// live behavior.
func renderMIDI(eng *sampler.Engine, path string, sampleRate, channels int) ([]float32, error) {
	var events []midiEvent
	rd := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		var ch, key, vel uint8
		switch {
		case te.Message.GetNoteStart(&ch, &key, &vel):
			events = append(events, midiEvent{
				frame:    int(float64(te.AbsMicroSeconds) / 1e6 * float64(sampleRate)),
				on:       true,
				note:     key,
				velocity: vel,
			})
		case te.Message.GetNoteEnd(&ch, &key):
			events = append(events, midiEvent{
				frame: int(float64(te.AbsMicroSeconds) / 1e6 * float64(sampleRate)),
				on:    false,
				note:  key,
			})
		}
	})
	if err := rd.Error(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no note events in %s", path)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].frame < events[j].frame })

	// Render a second past the last event so releases can play out.
	totalFrames := events[len(events)-1].frame + sampleRate

	samples := make([]float32, 0, totalFrames*channels)
	block := make([]float32, blockFrames*channels)
	next := 0
	for framesRendered := 0; framesRendered < totalFrames; {
		frames := blockFrames
		if framesRendered+frames > totalFrames {
			frames = totalFrames - framesRendered
		}
		// Events land at block granularity, close enough for rendering.
		for next < len(events) && events[next].frame <= framesRendered {
			if events[next].on {
				eng.NoteOn(float32(events[next].note), float32(events[next].velocity)/127)
			} else {
				eng.NoteOff()
			}
			next++
		}

		buf := block[:frames*channels]
		eng.Process(buf)
		samples = append(samples, buf...)
		framesRendered += frames
	}
	return samples, nil
}

func blockRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}
	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(interleaved)))
}
