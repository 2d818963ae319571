package scenario

import (
	"fmt"

	"github.com/san-kum/bombprop/internal/sound"
)

type command struct {
	check func(Step) error
	apply func(*runner, Step) error
}

var commands = map[string]command{
	"code.start": {apply: func(r *runner, _ Step) error {
		r.p.Display.StartCodeEntry()
		return nil
	}},
	"code.feed": {check: needArg, apply: func(r *runner, st Step) error {
		for i := 0; i < len(st.Arg); i++ {
			r.p.Display.FeedCharacter(st.Arg[i])
		}
		return nil
	}},
	"code.clear": {apply: func(r *runner, _ Step) error {
		r.p.Display.ClearCode()
		return nil
	}},
	"keys.press": {check: needArg, apply: func(r *runner, st Step) error {
		if !r.p.Keypad.EnqueueAllowed() {
			// the matrix is not scanned, so a momentary press is never seen
			return nil
		}
		for _, c := range st.Arg {
			if !r.sim.Press(r.p.Layout, c) {
				return fmt.Errorf("%w: no key %q on the keypad", ErrBadArgument, c)
			}
		}
		return nil
	}},
	"planted.start": {apply: func(r *runner, _ Step) error {
		r.p.Display.StartPlanted()
		return nil
	}},
	"defuse.start": {check: optionalOnOff, apply: func(r *runner, st Step) error {
		kit := false
		if st.Arg != "" {
			kit, _ = parseOnOff(st.Arg)
		}
		r.p.Display.StartDefusing(kit)
		return nil
	}},
	"display.stop": {apply: func(r *runner, _ Step) error {
		r.p.Display.Stop()
		return nil
	}},
	"display.backlight": {check: onOffArg, apply: func(r *runner, st Step) error {
		on, _ := parseOnOff(st.Arg)
		r.p.Display.SetBacklight(on)
		return nil
	}},
	"led.start": {check: checkLED, apply: func(r *runner, st Step) error {
		if st.LED != nil {
			r.p.LED.Activate(st.LED.Params())
			return nil
		}
		if st.Arg == "" {
			return r.p.StartPlantedLED()
		}
		return r.p.StartLED(st.Arg)
	}},
	"led.stop": {apply: func(r *runner, _ Step) error {
		r.p.LED.Stop()
		return nil
	}},
	"sound.play": {check: checkSound, apply: func(r *runner, st Step) error {
		if cue, ok := sound.ParseCue(st.Arg); ok {
			r.p.Sound.PlayCue(cue)
			return nil
		}
		id, err := parseTrack(st.Arg)
		if err != nil {
			return err
		}
		r.p.Sound.Play(id)
		return nil
	}},
	"sound.stop": {apply: func(r *runner, _ Step) error {
		r.p.Sound.Stop()
		return nil
	}},
	"buzzer.beep": {check: checkBeep, apply: func(r *runner, st Step) error {
		r.p.Buzzer.Beep(st.Arg == "high")
		return nil
	}},
	"keypad.allow": {check: onOffArg, apply: func(r *runner, st Step) error {
		on, _ := parseOnOff(st.Arg)
		r.p.Keypad.SetEnqueueAllowed(on)
		return nil
	}},
	"keypad.reset": {apply: func(r *runner, _ Step) error {
		r.p.Keypad.Reset()
		return nil
	}},
	"switch.set": {check: onOffArg, apply: func(r *runner, st Step) error {
		on, _ := parseOnOff(st.Arg)
		r.sim.SetArmed(r.p.Config(), on)
		return nil
	}},
	"switch.allow": {check: onOffArg, apply: func(r *runner, st Step) error {
		on, _ := parseOnOff(st.Arg)
		r.p.Switch.SetUpdateAllowed(on)
		return nil
	}},
}

func needArg(st Step) error {
	if st.Arg == "" {
		return fmt.Errorf("%w: missing arg", ErrBadArgument)
	}
	return nil
}

func onOffArg(st Step) error {
	_, err := parseOnOff(st.Arg)
	return err
}

func optionalOnOff(st Step) error {
	if st.Arg == "" {
		return nil
	}
	return onOffArg(st)
}

func checkLED(st Step) error {
	if st.LED != nil && st.Arg != "" {
		return fmt.Errorf("%w: give a preset or led parameters, not both", ErrBadArgument)
	}
	if st.LED != nil && st.LED.Max < st.LED.Min {
		return fmt.Errorf("%w: led max below min", ErrBadArgument)
	}
	return nil
}

func checkSound(st Step) error {
	if _, ok := sound.ParseCue(st.Arg); ok {
		return nil
	}
	_, err := parseTrack(st.Arg)
	return err
}

func checkBeep(st Step) error {
	if st.Arg != "" && st.Arg != "high" && st.Arg != "normal" {
		return fmt.Errorf("%w: beep pitch %q", ErrBadArgument, st.Arg)
	}
	return nil
}
