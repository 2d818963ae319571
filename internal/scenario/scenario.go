// Package scenario runs scripted, headless sessions against a simulated prop.
//
// A scenario is a YAML file listing timed commands (start the planted
// animation, press keys, flip the switch, play a cue) and optionally the
// state expected at the end. It runs on a manual clock, so a 40 second
// countdown finishes in milliseconds and always produces the same trace.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
)

var (
	ErrUnknownCommand = errors.New("scenario: unknown command")
	ErrBadArgument    = errors.New("scenario: bad argument")
	ErrNoDuration     = errors.New("scenario: duration must be positive")
	ErrExpectation    = errors.New("scenario: expectation not met")
)

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Duration    clock.Millis `yaml:"duration_ms"`
	// Tick overrides the configured loop tick.
	Tick   clock.Millis `yaml:"tick_ms"`
	Steps  []Step       `yaml:"steps"`
	Expect *Expect      `yaml:"expect"`
}

// Step issues one command at a point in time, relative to the start.
type Step struct {
	At      clock.Millis `yaml:"at_ms"`
	Command string       `yaml:"command"`
	Arg     string       `yaml:"arg"`
	// LED holds explicit fade parameters for led.start without a preset.
	LED *config.FadePreset `yaml:"led"`
}

// Expect describes the end state. Unset fields are not checked.
type Expect struct {
	Display []string `yaml:"display"`
	Code    *string  `yaml:"code"`
	Armed   *bool    `yaml:"armed"`
	Level   *uint8   `yaml:"level"`
	Track   *int     `yaml:"track"`
	Playing *bool    `yaml:"playing"`
	RedLED  *bool    `yaml:"red_led"`
	Keys    *int     `yaml:"buffered_keys"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario. Steps are ordered by time, keeping
// the file order for steps at the same time.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].At < sc.Steps[j].At })
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Duration == 0 {
		return ErrNoDuration
	}
	for i, st := range sc.Steps {
		cmd, ok := commands[st.Command]
		if !ok {
			return fmt.Errorf("step %d: %w %q", i+1, ErrUnknownCommand, st.Command)
		}
		if cmd.check != nil {
			if err := cmd.check(st); err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, st.Command, err)
			}
		}
	}
	return nil
}

// Commands lists the supported command names.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: want on or off, got %q", ErrBadArgument, arg)
}

func parseTrack(arg string) (uint8, error) {
	n, err := strconv.ParseUint(arg, 10, 8)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: track %q", ErrBadArgument, arg)
	}
	return uint8(n), nil
}
