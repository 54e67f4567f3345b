package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-sampler/sampler"
)

// File is the JSON schema for sampler kit presets.
type File struct {
	MasterGain      *float32               `json:"master_gain"`
	BlendCenterTime *float32               `json:"blend_center_time"`
	BlendWidth      *float32               `json:"blend_width"`
	Slots           map[string]SlotSetting `json:"slots"`
}

// SlotSetting is a partial slot override entry in a preset file.
type SlotSetting struct {
	SamplePath     string   `json:"sample_path"`
	Muted          *bool    `json:"muted"`
	Gain           *float32 `json:"gain"`
	Attack         *float32 `json:"attack"`
	Decay          *float32 `json:"decay"`
	Sustain        *float32 `json:"sustain"`
	Release        *float32 `json:"release"`
	Tonal          *bool    `json:"tonal"`
	RootNote       *float32 `json:"root_note"`
	SemitoneOffset *float32 `json:"semitone_offset"`
	Mode           string   `json:"mode"`
	BlendRole      string   `json:"blend_role"`
}

// LoadJSON loads a kit preset file and applies it on top of default params.
// Relative sample paths resolve against the preset file's directory.
func LoadJSON(path string) (*sampler.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := sampler.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range p.Slots {
		sp := p.Slots[i].SamplePath
		if sp != "" && !filepath.IsAbs(sp) {
			p.Slots[i].SamplePath = filepath.Clean(filepath.Join(base, sp))
		}
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *sampler.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.MasterGain != nil {
		if *f.MasterGain < 0 {
			return fmt.Errorf("master_gain must be >= 0")
		}
		dst.MasterGain = *f.MasterGain
	}
	if f.BlendCenterTime != nil {
		if *f.BlendCenterTime < 0 {
			return fmt.Errorf("blend_center_time must be >= 0")
		}
		dst.BlendCenterTime = *f.BlendCenterTime
	}
	if f.BlendWidth != nil {
		if *f.BlendWidth < 0 {
			return fmt.Errorf("blend_width must be >= 0")
		}
		dst.BlendWidth = *f.BlendWidth
	}

	if len(f.Slots) == 0 {
		return nil
	}

	keys := make([]string, 0, len(f.Slots))
	for k := range f.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		slot, err := strconv.Atoi(k)
		if err != nil || slot < 0 || slot >= sampler.MaxSlots {
			return fmt.Errorf("invalid slot key %q (expected 0..%d)", k, sampler.MaxSlots-1)
		}
		override := f.Slots[k]
		sp := &dst.Slots[slot]

		if override.SamplePath != "" {
			sp.SamplePath = strings.TrimSpace(override.SamplePath)
		}
		if override.Muted != nil {
			sp.Muted = *override.Muted
		}
		if override.Gain != nil {
			if *override.Gain < 0 {
				return fmt.Errorf("slots[%d].gain must be >= 0", slot)
			}
			sp.Gain = *override.Gain
		}
		if override.Attack != nil {
			if *override.Attack < 0 {
				return fmt.Errorf("slots[%d].attack must be >= 0", slot)
			}
			sp.Attack = *override.Attack
		}
		if override.Decay != nil {
			if *override.Decay < 0 {
				return fmt.Errorf("slots[%d].decay must be >= 0", slot)
			}
			sp.Decay = *override.Decay
		}
		if override.Sustain != nil {
			sp.Sustain = *override.Sustain
		}
		if override.Release != nil {
			if *override.Release < 0 {
				return fmt.Errorf("slots[%d].release must be >= 0", slot)
			}
			sp.Release = *override.Release
		}
		if override.Tonal != nil {
			sp.Tonal = *override.Tonal
		}
		if override.RootNote != nil {
			sp.RootNote = *override.RootNote
		}
		if override.SemitoneOffset != nil {
			sp.SemitoneOffset = *override.SemitoneOffset
		}
		if override.Mode != "" {
			mode, err := parseMode(override.Mode)
			if err != nil {
				return fmt.Errorf("slots[%d]: %w", slot, err)
			}
			sp.Mode = mode
		}
		if override.BlendRole != "" {
			role, err := parseBlendRole(override.BlendRole)
			if err != nil {
				return fmt.Errorf("slots[%d]: %w", slot, err)
			}
			sp.BlendRole = role
		}
	}
	return nil
}

// SaveJSON writes the full parameter set as a preset file.
func SaveJSON(path string, p *sampler.Params) error {
	if p == nil {
		return fmt.Errorf("nil params")
	}

	f := File{
		MasterGain:      &p.MasterGain,
		BlendCenterTime: &p.BlendCenterTime,
		BlendWidth:      &p.BlendWidth,
		Slots:           make(map[string]SlotSetting, len(p.Slots)),
	}
	for i := range p.Slots {
		sp := p.Slots[i]
		f.Slots[strconv.Itoa(i)] = SlotSetting{
			SamplePath:     sp.SamplePath,
			Muted:          &sp.Muted,
			Gain:           &sp.Gain,
			Attack:         &sp.Attack,
			Decay:          &sp.Decay,
			Sustain:        &sp.Sustain,
			Release:        &sp.Release,
			Tonal:          &sp.Tonal,
			RootNote:       &sp.RootNote,
			SemitoneOffset: &sp.SemitoneOffset,
			Mode:           sp.Mode.String(),
			BlendRole:      sp.BlendRole.String(),
		}
	}

	b, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func parseMode(s string) (sampler.ShifterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic":
		return sampler.KindClassic, nil
	case "psola":
		return sampler.KindPsola, nil
	}
	return 0, fmt.Errorf("invalid mode %q (expected classic or psola)", s)
}

func parseBlendRole(s string) (sampler.BlendRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return sampler.BlendNone, nil
	case "start":
		return sampler.BlendStart, nil
	case "end":
		return sampler.BlendEnd, nil
	}
	return 0, fmt.Errorf("invalid blend_role %q (expected none, start or end)", s)
}
