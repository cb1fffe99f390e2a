// FILE: main.go
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nightveil/lumendrift/audio"
	"github.com/nightveil/lumendrift/config"
	"github.com/nightveil/lumendrift/core"
)

const configFile = "lumendrift.yaml"

// Demo is the interactive driver: a terminal surface that maps keys to
// the audio controller so the whole engine can be exercised by hand.
type Demo struct {
	screen tcell.Screen
	ctrl   *audio.Controller
	tuning *config.Config

	started   bool // first keypress ran Init
	intensity float64
	level     int
	inverted  bool
	under     bool
	crackers  int
	suction   float64
	pull      float64
	masterDB  float64

	status string
}

func NewDemo() (*Demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	// defaults already applied on load error; nothing fatal
	tuning, _ := config.LoadConfig(configFile)

	engineCfg := audio.LoadConfig()
	engineCfg.MasterVolumeDB = tuning.Audio.MasterDB
	engineCfg.StartMuted = tuning.Audio.StartMuted
	if tuning.Audio.Tempo > 0 {
		engineCfg.Tempo = tuning.Audio.Tempo
	}

	return &Demo{
		screen:    screen,
		ctrl:      audio.NewController(engineCfg),
		tuning:    tuning,
		intensity: tuning.Soundbed.Intensity,
		level:     tuning.Soundbed.Level,
		masterDB:  tuning.Audio.MasterDB,
		status:    "press any key to start audio",
	}, nil
}

// start runs engine init on the first user gesture; some backends
// refuse output before one
func (d *Demo) start() {
	if d.started {
		return
	}
	d.started = true
	if err := d.ctrl.Init(); err != nil {
		d.status = fmt.Sprintf("audio init failed: %v", err)
		return
	}
	d.ctrl.SetReverbMix(d.tuning.Audio.ReverbMix)
	d.ctrl.SetDelayMix(d.tuning.Audio.DelayMix)
	d.ctrl.SetIntensity(d.intensity)
	d.ctrl.SetGameLevel(d.level)
	if d.tuning.Soundbed.AutoStart {
		d.ctrl.StartSoundscape()
	}
	d.status = "audio running"
}

func (d *Demo) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}

	wasStarted := d.started
	d.start()
	if !wasStarted {
		return true // first key only unlocks
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'm':
		d.ctrl.ToggleMute()
	case 's':
		if d.ctrl.GetState().Active {
			d.ctrl.StopSoundscape()
		} else {
			d.ctrl.StartSoundscape()
		}
	case 'v':
		d.inverted = !d.inverted
		d.ctrl.SetInvertedMode(d.inverted)
	case 'u':
		d.under = !d.under
		d.ctrl.SetUnderwaterMode(d.under)
	case 'w':
		d.ctrl.Swell(time.Duration(d.tuning.Responses.SwellSeconds * float64(time.Second)))
	case '[':
		d.intensity -= 0.1
		if d.intensity < 0 {
			d.intensity = 0
		}
		d.ctrl.SetIntensity(d.intensity)
	case ']':
		d.intensity += 0.1
		if d.intensity > 1 {
			d.intensity = 1
		}
		d.ctrl.SetIntensity(d.intensity)
	case '1', '2', '3', '4', '5', '6', '7':
		d.level = int(ev.Rune() - '0')
		d.ctrl.SetGameLevel(d.level)
	case '-':
		d.masterDB -= 3
		d.ctrl.SetMasterVolume(d.masterDB)
	case '=':
		d.masterDB += 3
		d.ctrl.SetMasterVolume(d.masterDB)

	case 'c':
		d.ctrl.PlayCollect(audio.CollectParams{Velocity: d.tuning.Responses.CollectVelocity})
	case 'S':
		d.ctrl.PlaySuperStarCollect()
	case 'h':
		d.ctrl.PlayRedHeartCapture()
	case 'p':
		d.ctrl.PlayCapture()
	case 'd':
		d.ctrl.PlayDischarge(d.level)
	case 'l':
		d.ctrl.PlayLevelUp(d.level)
	case 'x':
		d.ctrl.PlayMaxStack()
	case 'o':
		d.ctrl.PlayModalEnter()
	case 'O':
		d.ctrl.PlayModalClose()
	case 'k':
		d.ctrl.PlayChamberCapture(d.crackers + 1)
	case 'b':
		d.ctrl.PlayBridgeSpawn()
	case 'n':
		d.ctrl.PlayCollectionComplete()
	case 'r':
		d.ctrl.PlayRejectDischarge()
	case 'z':
		d.ctrl.PlaySpiralSpawn()
	case 'Z':
		d.ctrl.PlaySpiralDefeat()
	case 'g':
		d.ctrl.PlaySpiralDamage()
	case 'y':
		d.ctrl.PlayYouDied()

	case 'K':
		d.crackers = (d.crackers + 1) % 6
		d.ctrl.SetChamberCrackling(d.crackers)
	case 'G':
		d.suction += 0.25
		if d.suction > 1 {
			d.suction = 0
		}
		d.ctrl.SetSpiralSuction(d.suction)
	case 'B':
		d.pull += 0.25
		if d.pull > 1 {
			d.pull = 0
		}
		d.ctrl.SetBridgeAttraction(d.pull)
	}
	return true
}

func (d *Demo) draw() {
	d.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	st := d.ctrl.GetState()
	layers := make([]string, 0, int(core.LayerCount))
	for l := core.LayerType(0); l < core.LayerCount; l++ {
		if d.ctrl.LayerActive(l) {
			layers = append(layers, l.String())
		}
	}
	textures := make([]string, 0, int(core.TextureCount))
	for tx := core.TextureType(0); tx < core.TextureCount; tx++ {
		if d.ctrl.TextureActive(tx) {
			textures = append(textures, tx.String())
		}
	}
	lines := []struct {
		text  string
		style tcell.Style
	}{
		{"lumendrift - generative audio demo", style},
		{"", style},
		{fmt.Sprintf("state: init=%v muted=%v bed=%v master=%.0fdB tempo=%.2f", st.Initialized, st.Muted, st.Active, st.MasterDB, st.Tempo), style},
		{fmt.Sprintf("intensity=%.1f level=%d inverted=%v underwater=%v", d.intensity, d.level, d.inverted, d.under), style},
		{fmt.Sprintf("textures: crackle=%d suction=%.2f pull=%.2f", d.crackers, d.suction, d.pull), style},
		{fmt.Sprintf("sounding: layers=[%s] textures=[%s]", strings.Join(layers, " "), strings.Join(textures, " ")), style},
		{d.status, dim},
		{"", style},
		{"s bed  m mute  v invert  u underwater  w swell  [/] intensity  1-7 level  -/= volume", dim},
		{"c collect  S star  h heart  p capture  d discharge  l levelup  x maxstack", dim},
		{"o/O modal  k chamber  b bridge  n complete  r reject  z/Z/g spiral  y death", dim},
		{"K crackle  G suction  B pull  q quit", dim},
	}

	for row, line := range lines {
		for col, r := range line.text {
			d.screen.SetContent(col+2, row+1, r, nil, line.style)
		}
	}
	d.screen.Show()
}

func (d *Demo) run() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- d.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !d.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				d.screen.Sync()
			}

		case <-ticker.C:
			d.draw()
		}
	}
}

func (d *Demo) cleanup() {
	d.ctrl.Dispose()
	d.screen.Fini()
}

func main() {
	demo, err := NewDemo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer demo.cleanup()

	demo.run()
}
