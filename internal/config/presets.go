package config

import (
	"sort"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/fade"
)

// FadePreset is a named LED fade animation.
type FadePreset struct {
	Min        uint8        `yaml:"min"`
	Max        uint8        `yaml:"max"`
	StepIn     uint8        `yaml:"step_in"`
	StepOut    uint8        `yaml:"step_out"`
	FadeIn     clock.Millis `yaml:"fade_in_ms"`
	FadeOut    clock.Millis `yaml:"fade_out_ms"`
	Hold       clock.Millis `yaml:"hold_ms"`
	Loop       bool         `yaml:"loop"`
	StartDelay clock.Millis `yaml:"start_delay_ms"`
}

func (p FadePreset) Params() fade.Params {
	return fade.Params{
		Min: p.Min, Max: p.Max,
		StepIn: p.StepIn, StepOut: p.StepOut,
		FadeIn: p.FadeIn, FadeOut: p.FadeOut,
		Hold:       p.Hold,
		Loop:       p.Loop,
		StartDelay: p.StartDelay,
	}
}

var Presets = map[string]FadePreset{
	"planted-pulse": {
		Min: 0, Max: 255, StepIn: 5, StepOut: 5,
		FadeIn: 1000, FadeOut: 1000, Loop: true,
	},
	"defuse-glow": {
		Min: 20, Max: 200, StepIn: 2, StepOut: 4,
		FadeIn: 2000, FadeOut: 500, Hold: 250, Loop: true,
	},
	"armed-heartbeat": {
		Min: 0, Max: 255, StepIn: 51, StepOut: 17,
		FadeIn: 100, FadeOut: 300, Hold: 50, Loop: true, StartDelay: 500,
	},
	"steady": {
		Min: 180, Max: 180,
	},
}

func GetPreset(name string) *FadePreset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
