package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/config"
	"github.com/lixenwraith/gridpath/logging"
	"github.com/lixenwraith/gridpath/mapfile"
	"github.com/lixenwraith/gridpath/maze"
	"github.com/lixenwraith/gridpath/navigation"
)

var (
	configPath   = flag.String("config", "", "TOML config file (default: built-in)")
	scenarioPath = flag.String("scenario", "", "Scenario YAML to open")
	gridPath     = flag.String("grid", "", "Grid file to open (.grid.zst or text)")
	savePath     = flag.String("save", "gridview.grid.zst", "Where 'w' writes the grid")
	logPath      = flag.String("log", "gridview.log", "Log file")
	width        = flag.Int("w", 0, "Width of a generated grid (default: terminal width)")
	height       = flag.Int("h", 0, "Height of a generated grid (default: terminal height - 2)")
	sound        = flag.Bool("sound", false, "Play a tone when a route is found or lost")
)

const sampleRate = beep.SampleRate(44100)

// Viewer draws an Editor on a tcell screen
type Viewer struct {
	screen        tcell.Screen
	width, height int
	editor        *Editor
	tick          time.Duration
	savePath      string
	message       string
	log           *zap.Logger

	// Overlay lookups rebuilt each frame
	rawPoints    map[navigation.Position]bool
	smoothPoints map[navigation.Position]bool
	traceCells   map[navigation.Position]bool
	trailLevels  map[navigation.Position]float64

	// Audio
	audioInit bool
}

func NewViewer(screen tcell.Screen, editor *Editor, tick time.Duration, log *zap.Logger) *Viewer {
	v := &Viewer{
		screen: screen,
		editor: editor,
		tick:   tick,
		log:    log,
	}
	v.width, v.height = screen.Size()
	return v
}

func (v *Viewer) initAudio() error {
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		v.audioInit = true
	}
	return err
}

// playTone sounds 880Hz when a route exists and 220Hz when it does not
func (v *Viewer) playTone(status navigation.Status) {
	if !v.audioInit {
		return
	}
	freq := 880.0
	if status != navigation.StatusFound {
		freq = 220.0
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(60*time.Millisecond), sine))
}

// changed reports a status transition audibly
func (v *Viewer) changed(before, after navigation.Status) {
	if before != after {
		v.playTone(after)
	}
}

func (v *Viewer) handleResize() {
	v.width, v.height = v.screen.Size()
	v.screen.Sync()
}

var (
	styleFloor  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleRaw    = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleSmooth = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleStart  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleGoal   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// cellAt picks the rune and style for one grid cell, topmost layer first
func (v *Viewer) cellAt(p navigation.Position) (rune, tcell.Style) {
	e := v.editor
	switch {
	case p == e.start:
		return 'S', styleStart
	case p == e.goal:
		return 'G', styleGoal
	case v.smoothPoints[p]:
		return '*', styleSmooth.Bold(true)
	case e.showRaw && v.rawPoints[p]:
		return 'o', styleRaw
	}
	if level, ok := v.trailLevels[p]; ok {
		l := int32(80 + level*175)
		return '●', tcell.StyleDefault.Foreground(tcell.NewRGBColor(l/3, l, l))
	}
	switch {
	case v.traceCells[p]:
		return '•', styleSmooth
	case !e.grid.Walkable(p):
		return '█', styleWall
	}
	return '·', styleFloor
}

// index rebuilds the per-cell overlay lookups from the editor state
func (v *Viewer) index() {
	e := v.editor
	v.rawPoints = make(map[navigation.Position]bool, len(e.result.Raw))
	for _, p := range e.result.Raw {
		v.rawPoints[p] = true
	}
	v.smoothPoints = make(map[navigation.Position]bool, len(e.result.Smooth))
	for _, p := range e.result.Smooth {
		v.smoothPoints[p] = true
	}
	v.traceCells = make(map[navigation.Position]bool)
	for _, p := range e.result.Smooth.Cells() {
		v.traceCells[p] = true
	}
	v.trailLevels = make(map[navigation.Position]float64, len(e.trails))
	for _, t := range e.trails {
		if t.intensity < 1.0 {
			v.trailLevels[navigation.Pos(t.x, t.y)] = t.intensity
		}
	}
}

func (v *Viewer) draw() {
	v.screen.Clear()
	v.index()
	e := v.editor
	g := e.grid

	for y := 0; y < min(g.Height(), v.height-2); y++ {
		for x := 0; x < min(g.Width(), v.width); x++ {
			p := navigation.Pos(x, y)
			r, style := v.cellAt(p)
			if p == e.cursor() {
				style = style.Reverse(true)
			}
			v.screen.SetContent(x, y, r, nil, style)
		}
	}

	r := e.result
	status := fmt.Sprintf(" %s  cost %d  expanded %d  raw %d  smooth %d  cursor %v ",
		r.Status, r.Cost, r.Expanded, len(r.Raw), len(r.Smooth), e.cursor())
	v.text(0, v.height-2, status, styleStatus)
	help := "arrows/hjkl move  space wall  s start  g goal  c clear  m maze  r scatter  o raw  w save  q quit"
	if v.message != "" {
		help = v.message
	}
	v.text(0, v.height-1, help, styleFloor)

	v.screen.Show()
}

func (v *Viewer) text(x, y int, s string, style tcell.Style) {
	if y < 0 {
		return
	}
	for _, r := range s {
		if x >= v.width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (v *Viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev.Key(), ev.Rune(), time.Now())

	case *tcell.EventResize:
		v.handleResize()
	}
	return true
}

// handleKey applies one key press, returning false to quit
func (v *Viewer) handleKey(key tcell.Key, r rune, now time.Time) bool {
	e := v.editor
	before := e.result.Status
	v.message = ""

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		e.Move(0, -1)
	case tcell.KeyDown:
		e.Move(0, 1)
	case tcell.KeyLeft:
		e.Move(-1, 0)
	case tcell.KeyRight:
		e.Move(1, 0)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'k':
			e.Move(0, -1)
		case 'j':
			e.Move(0, 1)
		case 'h':
			e.Move(-1, 0)
		case 'l':
			e.Move(1, 0)
		case ' ':
			e.Toggle(now)
		case 's':
			e.SetStart(now)
		case 'g':
			e.SetGoal(now)
		case 'c':
			e.Clear(now)
		case 'm':
			e.Regenerate(maze.KindMaze, now)
		case 'r':
			e.Regenerate(maze.KindScatter, now)
		case 'o':
			e.showRaw = !e.showRaw
		case 'w':
			if err := mapfile.WriteGrid(v.savePath, e.grid); err != nil {
				v.message = "save failed: " + err.Error()
				v.log.Error("save grid", zap.String("path", v.savePath), zap.Error(err))
			} else {
				v.message = "saved " + v.savePath
			}
		}
	}
	v.changed(before, e.result.Status)
	return true
}

func (v *Viewer) run() {
	ticker := time.NewTicker(v.tick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	goSafe(func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	})

	v.draw()
	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !v.handleInput(ev) {
				return
			}
			v.draw()

		case now := <-ticker.C:
			if len(v.editor.trails) > 0 {
				v.editor.updateTrails(now)
				v.draw()
			}
		}
	}
}

func (v *Viewer) cleanup() {
	if v.audioInit {
		speaker.Close()
	}
	v.screen.Fini()
}

// openGrid picks the grid and endpoints from flags, falling back to a maze that fills the terminal
func openGrid(termW, termH int, log *zap.Logger) (*navigation.Grid, navigation.Position, navigation.Position, error) {
	switch {
	case *scenarioPath != "":
		sc, err := mapfile.LoadScenario(*scenarioPath)
		if err != nil {
			return nil, navigation.Position{}, navigation.Position{}, err
		}
		g, err := sc.LoadGrid(log)
		if err != nil {
			return nil, navigation.Position{}, navigation.Position{}, err
		}
		start, goal := navigation.Pos(0, 0), navigation.Pos(g.Width()-1, g.Height()-1)
		if len(sc.Queries) > 0 {
			start, goal = sc.Queries[0].Start.Position(), sc.Queries[0].Goal.Position()
		}
		return g, start, goal, nil

	case *gridPath != "":
		var (
			g   *navigation.Grid
			err error
		)
		if strings.HasSuffix(*gridPath, ".zst") {
			g, err = mapfile.ReadGrid(*gridPath)
		} else {
			var f *os.File
			if f, err = os.Open(*gridPath); err == nil {
				g, err = mapfile.ParseText(f)
				f.Close()
			}
		}
		if err != nil {
			return nil, navigation.Position{}, navigation.Position{}, err
		}
		return g, navigation.Pos(0, 0), navigation.Pos(g.Width()-1, g.Height()-1), nil
	}

	w, h := *width, *height
	if w <= 0 {
		w = termW
	}
	if h <= 0 {
		h = termH - 2
	}
	res := maze.Generate(maze.Config{Width: w, Height: h, Braiding: 0.3, Seed: 1})
	return res.Grid, res.Start, res.End, nil
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "gridview: %v\n", err)
			os.Exit(1)
		}
	}
	log, err := logging.ToFile(cfg.Logging, *logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridview: logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	crashScreen = screen
	defer func() {
		if r := recover(); r != nil {
			handleCrash(r)
		}
	}()

	termW, termH := screen.Size()
	g, start, goal, err := openGrid(termW, termH, log)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "gridview: %v\n", err)
		os.Exit(1)
	}

	var opts []navigation.Option
	opts = append(opts, navigation.WithLogger(log))
	if cfg.Search.MaxExpansions > 0 {
		opts = append(opts, navigation.WithMaxExpansions(cfg.Search.MaxExpansions))
	}
	editor := NewEditor(g, start, goal, navigation.NewRouteCache(cfg.Search.CacheSize), log, opts...)

	viewer := NewViewer(screen, editor, cfg.Viewer.TickRate, log)
	viewer.savePath = *savePath
	if *sound || cfg.Viewer.Sound {
		if err := viewer.initAudio(); err != nil {
			// Non-fatal, viewer runs without sound
			log.Warn("audio initialization failed", zap.Error(err))
		}
	}
	defer viewer.cleanup()

	viewer.run()
}
