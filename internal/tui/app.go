// Package tui is a terminal simulator of the prop. It shows the LCD, the
// yellow and red LEDs, the arming switch and the sound module, and maps the
// keyboard to the keypad. Lower-case hot keys start and stop the animations
// by hand; there are no game rules.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/display"
	"github.com/san-kum/bombprop/internal/prop"
	"github.com/san-kum/bombprop/internal/sound"
	"github.com/san-kum/bombprop/internal/viz"
)

const (
	frameInterval = 16 * time.Millisecond
	historyLen    = 48
)

// Options adds real outputs next to the on-screen ones.
type Options struct {
	// MP3 and Buzzer, when set, also receive every sound command.
	MP3    sound.Device
	Buzzer sound.ToneSink
	// Logs receives the components' debug output.
	Logs io.Writer
}

type model struct {
	cfg  *config.Config
	clk  clock.Clock
	sim  *prop.Sim
	prop *prop.Prop

	presets  []string
	preset   int
	lastCue  string
	lastKey  string
	history  []uint8
	err      error
	quitting bool
}

func newModel(clk clock.Clock, cfg *config.Config, opts Options) (*model, error) {
	sim := prop.NewSim(clk, cfg)
	hw := sim.Hardware()
	if opts.MP3 != nil {
		hw.MP3 = teeDevice{sim.Recorder, opts.MP3}
	}
	if opts.Buzzer != nil {
		hw.Buzzer = teeTone{sim.Recorder, opts.Buzzer}
	}

	p, err := prop.New(clk, cfg, hw, opts.Logs)
	if err != nil {
		return nil, err
	}

	presets := config.ListPresets()
	for name := range cfg.Presets {
		if config.GetPreset(name) == nil {
			presets = append(presets, name)
		}
	}
	m := &model{cfg: cfg, clk: clk, sim: sim, prop: p, presets: presets, lastCue: sound.CueInit.String()}
	for i, name := range presets {
		if name == cfg.LED.Preset {
			m.preset = i
		}
	}
	return m, nil
}

// Run starts the simulator on the terminal and blocks until the user quits.
func Run(cfg *config.Config, opts Options) error {
	m, err := newModel(clock.NewSystem(), cfg, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *model) Init() tea.Cmd { return frame() }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case frameMsg:
		m.step()
		return m, frame()
	}
	return m, nil
}

// step runs one loop iteration and feeds typed keys to the code while the
// display is in code entry.
func (m *model) step() {
	m.prop.Step()
	if m.prop.Display.Mode() == display.ModeCodeEntry {
		for m.prop.Keypad.HasKey() {
			m.prop.Display.FeedCharacter(byte(m.prop.Keypad.Key()))
		}
	}
	m.history = append(m.history, m.sim.Recorder.Level())
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit
	case " ", "space":
		m.sim.Switch.Toggle()
	case "c":
		m.prop.Display.StartCodeEntry()
	case "p":
		m.prop.Display.StartPlanted()
		m.playCue(sound.CueRadioBombPlanted)
	case "d", "k":
		m.prop.Display.StartDefusing(key == "k")
		m.playCue(sound.CueDisarmStart)
	case "s":
		m.prop.Display.Stop()
	case "x":
		m.prop.Display.ClearCode()
	case "l":
		m.err = m.prop.StartLED(m.presets[m.preset])
	case "tab":
		m.preset = (m.preset + 1) % len(m.presets)
	case "o":
		m.prop.LED.Stop()
	case "b", "h":
		m.prop.Buzzer.Beep(key == "h")
	case "w":
		m.playCue(sound.CueBombDefusedCTWin)
	case "e":
		m.playCue(sound.CueExplosionTerWin)
	case "m":
		m.prop.Sound.Stop()
		m.lastCue = "stopped"
	case "f":
		m.prop.Switch.SetUpdateAllowed(!m.prop.Switch.UpdateAllowed())
	case "i":
		m.prop.Keypad.SetEnqueueAllowed(!m.prop.Keypad.EnqueueAllowed())
	default:
		if len(msg.Runes) == 1 && m.prop.Keypad.EnqueueAllowed() && m.sim.Press(m.prop.Layout, msg.Runes[0]) {
			m.lastKey = key
		}
	}
	return nil
}

func (m *model) playCue(c sound.Cue) {
	m.prop.Sound.PlayCue(c)
	m.lastCue = c.String()
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	rec := m.sim.Recorder

	var b strings.Builder
	b.WriteString(viz.Title.Render("CS BOMB PROP") + "\n\n")

	lcd := viz.LCD
	if !rec.Backlight() {
		lcd = viz.LCDOff
	}
	b.WriteString(lcd.Render(strings.Join(rec.Grid(), "\n")) + "\n\n")

	armed := viz.Safe.Render("SAFE")
	if m.prop.Armed() {
		armed = viz.Armed.Render("ARMED")
	}
	if !m.prop.Switch.UpdateAllowed() {
		armed += viz.KeyHint.Render(" (frozen)")
	}
	track, playing := rec.Track()
	cue := fmt.Sprintf("%s (track %d)", m.lastCue, track)
	if !playing {
		cue = "-"
	}
	if !m.prop.Sound.Initialized() {
		cue = "no mp3 module"
	}
	keys := fmt.Sprintf("%d buffered", m.prop.Keypad.Buffered())
	if !m.prop.Keypad.EnqueueAllowed() {
		keys += " (input off)"
	}

	rows := []struct{ label, value string }{
		{"switch", armed},
		{"mode", fmt.Sprintf("%s %s", m.prop.Display.Mode(), m.defuseInfo())},
		{"code", m.prop.Display.Code()},
		{"keys", keys + " " + m.lastKey},
		{"yellow", fmt.Sprintf("%s %s %3d %s", viz.LED(rec.Level() > 0, viz.YellowOn), viz.LevelBar(rec.Level(), 24), rec.Level(), m.prop.LED.Phase())},
		{"", viz.Sparkline(m.history, historyLen)},
		{"preset", m.presets[m.preset]},
		{"red", viz.LED(rec.RedLED(), viz.RedOn)},
		{"sound", cue},
	}
	var panel strings.Builder
	for i, r := range rows {
		if i > 0 {
			panel.WriteString("\n")
		}
		panel.WriteString(viz.Label.Render(fmt.Sprintf("%-7s", r.label)) + " " + viz.Value.Render(r.value))
	}
	b.WriteString(viz.Panel.Render(panel.String()) + "\n")

	if m.err != nil {
		b.WriteString(viz.Armed.Render(m.err.Error()) + "\n")
	}
	b.WriteString(viz.KeyHint.Render("0-9 A-D * # keypad   space switch   c code   p planted   d/k defuse (kit)   s stop   x clear code") + "\n")
	b.WriteString(viz.KeyHint.Render("l LED   tab preset   o LED off   b/h beep   w/e win cues   m mute   f freeze switch   i keypad input   q quit"))
	return b.String()
}

func (m *model) defuseInfo() string {
	if m.prop.Display.Mode() != display.ModeDefusing {
		return ""
	}
	return fmt.Sprintf("(%s, %d/%d)", m.prop.Display.DefusePhase(), m.prop.Display.Revealed(), display.CodeLength)
}

type teeDevice [2]sound.Device

func (t teeDevice) Begin() error {
	if err := t[0].Begin(); err != nil {
		return err
	}
	return t[1].Begin()
}

func (t teeDevice) SetVolume(v uint8) { t[0].SetVolume(v); t[1].SetVolume(v) }
func (t teeDevice) Play(id uint8)     { t[0].Play(id); t[1].Play(id) }
func (t teeDevice) Stop()             { t[0].Stop(); t[1].Stop() }

type teeTone [2]sound.ToneSink

func (t teeTone) Tone(freqHz uint16, d clock.Millis) {
	t[0].Tone(freqHz, d)
	t[1].Tone(freqHz, d)
}
