// Package config holds the prop's wiring and tuning: pins, timings, sound
// track numbers and LED fade presets. It loads from YAML and can be
// overridden from BOMBPROP_* environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/sound"
)

const EnvPrefix = "BOMBPROP_"

const (
	DefaultBombTimer     = 40
	DefaultTick          = 5
	DefaultBuzzerFreq    = 2000
	DefaultBuzzerHigh    = 3000
	DefaultBuzzerMillis  = 125
	DefaultDebounce      = 50
	DefaultDisplayAddr   = 0x27
	DefaultDisplayCols   = 16
	DefaultDisplayLines  = 2
	DefaultKeypadQueue   = 10
	DefaultVolume        = 25
	DefaultSoundDir      = "sounds"
	DefaultPlantedPreset = "planted-pulse"
)

type Config struct {
	// BombTimer is the time from planting to explosion, in seconds.
	BombTimer int    `yaml:"bomb_timer" env:"BOMB_TIMER"`
	Seed      uint64 `yaml:"seed" env:"SEED"`

	Buzzer  BuzzerConfig  `yaml:"buzzer" envPrefix:"BUZZER_"`
	LED     LEDConfig     `yaml:"led" envPrefix:"LED_"`
	Switch  SwitchConfig  `yaml:"switch" envPrefix:"SWITCH_"`
	Display DisplayConfig `yaml:"display" envPrefix:"DISPLAY_"`
	Keypad  KeypadConfig  `yaml:"keypad" envPrefix:"KEYPAD_"`
	MP3     MP3Config     `yaml:"mp3" envPrefix:"MP3_"`
	Loop    LoopConfig    `yaml:"loop" envPrefix:"LOOP_"`

	// Presets adds to or replaces the built-in LED fade presets.
	Presets map[string]FadePreset `yaml:"presets,omitempty"`
}

type BuzzerConfig struct {
	Pin           int          `yaml:"pin" env:"PIN"`
	Frequency     uint16       `yaml:"frequency" env:"FREQUENCY"`
	FrequencyHigh uint16       `yaml:"frequency_high" env:"FREQUENCY_HIGH"`
	Duration      clock.Millis `yaml:"duration_ms" env:"DURATION_MS"`
}

type LEDConfig struct {
	YellowPin int  `yaml:"yellow_pin" env:"YELLOW_PIN"`
	RedPin    int  `yaml:"red_pin" env:"RED_PIN"`
	BlinkRed  bool `yaml:"blink_red_with_buzzer" env:"BLINK_RED"`
	// Preset is the fade played while the bomb is planted.
	Preset string `yaml:"preset" env:"PRESET"`
}

type SwitchConfig struct {
	Pin       int          `yaml:"pin" env:"PIN"`
	ActiveLow bool         `yaml:"active_low" env:"ACTIVE_LOW"`
	Debounce  clock.Millis `yaml:"debounce_ms" env:"DEBOUNCE_MS"`
}

type DisplayConfig struct {
	Address   int  `yaml:"address" env:"ADDRESS"`
	Columns   int  `yaml:"columns" env:"COLUMNS"`
	Lines     int  `yaml:"lines" env:"LINES"`
	Backlight bool `yaml:"backlight" env:"BACKLIGHT"`
}

type KeypadConfig struct {
	RowPins   []int    `yaml:"row_pins" env:"ROW_PINS"`
	ColPins   []int    `yaml:"col_pins" env:"COL_PINS"`
	Layout    []string `yaml:"layout" env:"LAYOUT"`
	QueueSize int      `yaml:"queue_size" env:"QUEUE_SIZE"`
}

type MP3Config struct {
	RXPin  int    `yaml:"rx_pin" env:"RX_PIN"`
	TXPin  int    `yaml:"tx_pin" env:"TX_PIN"`
	Volume uint8  `yaml:"volume" env:"VOLUME"`
	Dir    string `yaml:"dir" env:"DIR"`
	// Sounds maps cue names to track numbers.
	Sounds map[string]uint8 `yaml:"sounds"`
}

type LoopConfig struct {
	Tick clock.Millis `yaml:"tick_ms" env:"TICK_MS"`
}

func DefaultConfig() *Config {
	return &Config{
		BombTimer: DefaultBombTimer,
		Seed:      1,
		Buzzer: BuzzerConfig{
			Pin:           8,
			Frequency:     DefaultBuzzerFreq,
			FrequencyHigh: DefaultBuzzerHigh,
			Duration:      DefaultBuzzerMillis,
		},
		LED: LEDConfig{
			YellowPin: 6,
			RedPin:    7,
			BlinkRed:  true,
			Preset:    DefaultPlantedPreset,
		},
		Switch: SwitchConfig{
			Pin:       5,
			ActiveLow: true,
			Debounce:  DefaultDebounce,
		},
		Display: DisplayConfig{
			Address:   DefaultDisplayAddr,
			Columns:   DefaultDisplayCols,
			Lines:     DefaultDisplayLines,
			Backlight: true,
		},
		Keypad: KeypadConfig{
			RowPins:   []int{9, 10, 11, 12},
			ColPins:   []int{A0, A1, A2, A3},
			Layout:    []string{"123A", "456B", "789C", "*0#D"},
			QueueSize: DefaultKeypadQueue,
		},
		MP3: MP3Config{
			RXPin:  2,
			TXPin:  3,
			Volume: DefaultVolume,
			Dir:    DefaultSoundDir,
			Sounds: map[string]uint8{
				sound.CueInit.String():                 1,
				sound.CueRadioBombPlanted.String():     2,
				sound.CueRadioBombTickingDown.String(): 3,
				sound.CueBeforeExplosion.String():      4,
				sound.CueExplosionTerWin.String():      5,
				sound.CueDisarmStart.String():          6,
				sound.CueBombDefusedCTWin.String():     7,
				sound.CueSilence.String():              8,
			},
		},
		Loop: LoopConfig{Tick: DefaultTick},
	}
}

// Analog pin numbers on the Nano, usable as digital pins.
const (
	A0 = 14 + iota
	A1
	A2
	A3
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides cfg with any BOMBPROP_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// BombDuration is the bomb timer as a clock duration.
func (c *Config) BombDuration() clock.Millis {
	return clock.Millis(c.BombTimer) * 1000
}

// Cues resolves the configured track numbers. Unknown cue names are skipped.
func (c *Config) Cues() sound.Cues {
	cues := make(sound.Cues, len(c.MP3.Sounds))
	for name, id := range c.MP3.Sounds {
		if cue, ok := sound.ParseCue(name); ok {
			cues[cue] = id
		}
	}
	return cues
}

// Preset resolves a fade preset, preferring the ones defined in c.
func (c *Config) Preset(name string) (FadePreset, bool) {
	if p, ok := c.Presets[name]; ok {
		return p, true
	}
	if p := GetPreset(name); p != nil {
		return *p, true
	}
	return FadePreset{}, false
}

const summaryPadding = 35

// LogSummary prints the configuration, one padded line per setting.
func (c *Config) LogSummary(l *log.Logger) {
	line := func(key string, value any) {
		pad := summaryPadding - len(key)
		if pad < 0 {
			pad = 0
		}
		l.Printf("%s%s: %v", key, strings.Repeat(" ", pad), value)
	}
	yesNo := map[bool]string{true: "YES", false: "NO"}

	l.Println(strings.Repeat("-", 80))
	l.Println("CURRENT CONFIGURATION")
	l.Println(strings.Repeat("-", 80))
	line("Bomb Timer (sec)", c.BombTimer)
	line("Buzzer Pin", c.Buzzer.Pin)
	line("Buzzer Freq", c.Buzzer.Frequency)
	line("Buzzer Freq High", c.Buzzer.FrequencyHigh)
	line("Buzzer Duration", c.Buzzer.Duration)
	line("LED Yellow Pin", c.LED.YellowPin)
	line("LED Red Pin", c.LED.RedPin)
	line("Blink Red LED to Buzzer", yesNo[c.LED.BlinkRed])
	line("Switch Pin", c.Switch.Pin)
	line("Switch Active Low", yesNo[c.Switch.ActiveLow])
	line("Switch Debounce Time", c.Switch.Debounce)
	line("Display Address", fmt.Sprintf("0x%X", c.Display.Address))
	line("Display Chars/Line", c.Display.Columns)
	line("Display Lines", c.Display.Lines)
	line("Display Backlight", map[bool]string{true: "ON", false: "OFF"}[c.Display.Backlight])
	line("Keypad Queue Size", c.Keypad.QueueSize)
	line("Keypad Rows Pins", c.Keypad.RowPins)
	line("Keypad Columns Pins", c.Keypad.ColPins)
	line("Keypad Keys", c.Keypad.Layout)
	line("Mp3 Module RX Pin", c.MP3.RXPin)
	line("Mp3 Module TX Pin", c.MP3.TXPin)
	line("Mp3 Module Volume", c.MP3.Volume)
	for cue := sound.CueInit; cue <= sound.CueSilence; cue++ {
		if id, ok := c.MP3.Sounds[cue.String()]; ok {
			line("Sound ID "+cue.String(), id)
		}
	}
	l.Println(strings.Repeat("-", 80))
}
