package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/ebitengine/oto/v3"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	presetPath := flag.String("preset", "assets/presets/default.json", "Kit preset JSON file path")
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	portName := flag.String("port", "", "MIDI input port name (substring match). Empty plays a single note")
	listPorts := flag.Bool("list", false, "List MIDI input ports and exit")
	note := flag.Int("note", 72, "MIDI note to play when no port is given")
	flag.Parse()
	defer midi.CloseDriver()

	if *listPorts {
		for _, in := range midi.GetInPorts() {
			fmt.Println(in)
		}
		return
	}

	params, err := preset.LoadJSON(*presetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
		os.Exit(1)
	}

	const numChannels = 2
	eng := sampler.NewEngine(params, float64(*sampleRate), numChannels)
	for slot := 0; slot < sampler.MaxSlots; slot++ {
		if path := params.Slots[slot].SamplePath; path != "" {
			if err := eng.LoadSample(slot, path); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading slot %d: %v\n", slot, err)
				os.Exit(1)
			}
		}
	}

	src := &engineReader{eng: eng, channels: numChannels}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: numChannels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio output: %v\n", err)
		os.Exit(1)
	}
	<-ready
	player := ctx.NewPlayer(src)
	player.Play()
	defer player.Close()

	if *portName == "" {
		playOnce(src, float32(*note))
		return
	}

	in, err := midi.FindInPort(*portName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "MIDI port %q not found: %v\n", *portName, err)
		os.Exit(1)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			src.NoteOn(float32(key), float32(vel)/127)
		case msg.GetNoteEnd(&ch, &key):
			src.NoteOff()
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listening to %q: %v\n", in, err)
		os.Exit(1)
	}
	defer stop()

	fmt.Printf("Listening on %q, Ctrl-C to quit\n", in)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}

// playOnce triggers one note and waits for the kit to decay to silence.
func playOnce(src *engineReader, note float32) {
	src.NoteOn(note, 1)
	time.Sleep(500 * time.Millisecond)
	src.NoteOff()

	deadline := time.Now().Add(20 * time.Second)
	for src.Active() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	// Let the output buffer drain.
	time.Sleep(200 * time.Millisecond)
}

// engineReader adapts the engine to oto's pull model. MIDI callbacks and the
// audio pull arrive on different threads, so every engine access goes through
// one mutex; the engine itself stays single-threaded.
type engineReader struct {
	mu       sync.Mutex
	eng      *sampler.Engine
	channels int
	buf      []float32
}

func (r *engineReader) NoteOn(note, velocity float32) {
	r.mu.Lock()
	r.eng.NoteOn(note, velocity)
	r.mu.Unlock()
}

func (r *engineReader) NoteOff() {
	r.mu.Lock()
	r.eng.NoteOff()
	r.mu.Unlock()
}

func (r *engineReader) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eng.Active()
}

func (r *engineReader) Read(p []byte) (int, error) {
	samples := len(p) / 4
	samples -= samples % r.channels
	if samples == 0 {
		return 0, nil
	}
	if len(r.buf) < samples {
		r.buf = make([]float32, samples)
	}
	buf := r.buf[:samples]

	r.mu.Lock()
	r.eng.Process(buf)
	r.mu.Unlock()

	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return samples * 4, nil
}
