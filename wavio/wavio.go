// Package wavio decodes and encodes WAV files as normalized interleaved
// float32 samples. It is the only file format the sampler loads; anything
// else is rejected up front.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Clip is decoded audio: interleaved float32 in [-1, 1].
type Clip struct {
	Data       []float32
	Channels   int
	SampleRate int
}

// Frames returns the frame count of the clip.
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// Decode reads a WAV file into a Clip. Integer PCM is normalized by the
// decoder; float WAVs pass through.
func Decode(path string) (*Clip, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".wav" {
		return nil, fmt.Errorf("wavio: unsupported file format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wavio: invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("wavio: invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("wavio: invalid sample rate %d: %s", buf.Format.SampleRate, path)
	}
	if len(buf.Data) == 0 {
		return nil, fmt.Errorf("wavio: empty wav data: %s", path)
	}

	data := make([]float32, len(buf.Data))
	copy(data, buf.Data)

	return &Clip{
		Data:       data,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// Encode writes interleaved float32 samples as a 16-bit WAV file, creating
// parent directories as needed.
func Encode(path string, samples []float32, channels, sampleRate int) error {
	if channels < 1 {
		return fmt.Errorf("wavio: invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("wavio: sample count %d not a multiple of %d channels", len(samples), channels)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}
