package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/typematic"
	"github.com/dshills/typematic/internal/config"
	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/loop"
	"github.com/dshills/typematic/source"
)

// DemoCommand visualizes the repeater in the terminal. Terminals
// deliver no release events, so each keystroke toggles a held key:
// type j to hold j, type it again to let go. Tab repeats only once,
// Escape releases everything and q quits. Editing the config file
// retunes the repeater live.
type DemoCommand struct{}

// Execute implements the demo subcommand.
func (command *DemoCommand) Execute(args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	screen.Clear()

	ctx, cancel := signalContext()
	defer cancel()

	// An edited config file retunes the next repeater; flag overrides
	// keep outranking the file, exactly as at startup.
	retune := make(chan config.Settings, 1)
	if w, err := config.Watch(configPath(), func(cfg *config.Config) {
		if err := applyFlags(cfg); err != nil {
			return
		}
		s, err := cfg.Resolve()
		if err != nil {
			return
		}
		select {
		case <-retune:
		default:
		}
		retune <- s
	}); err == nil {
		defer w.Close()
	}

	model := newDemoModel(settings)
	metrics := loop.NewMetrics()

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for {
		src := newDemoSource(screen)
		rep := typematic.New[key.Code, typematic.Count](settings.Timeout, settings.Interval)
		runner := loop.New(rep, src, model.handle, loop.WithMetrics(metrics))

		runDone := make(chan error, 1)
		go func() { runDone <- runner.Run(ctx) }()

		var (
			runErr  error
			retuned bool
		)
	render:
		for {
			select {
			case runErr = <-runDone:
				break render
			case next := <-retune:
				// Ends this runner; a fresh one picks up the new
				// timing below. Held keys start over.
				retuned = true
				settings = next
				src.Close()
			case <-ticker.C:
				model.render(screen, metrics)
			}
		}

		if retuned && runErr == nil {
			model.setSettings(settings)
			continue
		}

		screen.Fini()
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		snap := metrics.Snapshot()
		fmt.Printf("%d presses, %d repeats delivered across %d ticks\n",
			snap.PressesTotal, snap.DeliveriesTotal, snap.TicksTotal)
		return nil
	}
}

// demoSource turns tcell keystrokes into press/release toggles.
type demoSource struct {
	screen tcell.Screen
	ch     chan source.Event[key.Code]
	done   chan struct{}
	once   sync.Once
	held   map[key.Code]bool
}

func newDemoSource(screen tcell.Screen) *demoSource {
	s := &demoSource{
		screen: screen,
		ch:     make(chan source.Event[key.Code]),
		done:   make(chan struct{}),
		held:   make(map[key.Code]bool),
	}
	go s.poll()
	return s
}

func (s *demoSource) poll() {
	defer close(s.ch)
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
		switch tev := ev.(type) {
		case *tcell.EventKey:
			if s.handleKey(tev) {
				return
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

// handleKey reports true when the demo should quit.
func (s *demoSource) handleKey(ev *tcell.EventKey) bool {
	now := time.Now()
	switch ev.Key() {
	case tcell.KeyCtrlC:
		s.releaseAll(now)
		return true
	case tcell.KeyEscape:
		s.releaseAll(now)
	case tcell.KeyEnter:
		s.toggle(key.Enter, now)
	case tcell.KeyTab:
		s.toggle(key.Tab, now)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.toggle(key.Backspace, now)
	case tcell.KeyUp:
		s.toggle(key.Up, now)
	case tcell.KeyDown:
		s.toggle(key.Down, now)
	case tcell.KeyLeft:
		s.toggle(key.Left, now)
	case tcell.KeyRight:
		s.toggle(key.Right, now)
	case tcell.KeyRune:
		r := ev.Rune()
		if r == 'q' {
			s.releaseAll(now)
			return true
		}
		if r == ' ' {
			s.toggle(key.Space, now)
			break
		}
		if code, ok := key.FromName(strings.ToUpper(string(r))); ok {
			s.toggle(code, now)
		}
	}
	return false
}

func (s *demoSource) toggle(code key.Code, at time.Time) {
	pressed := !s.held[code]
	if pressed {
		s.held[code] = true
	} else {
		delete(s.held, code)
	}
	s.emit(source.Event[key.Code]{Time: at, Key: code, Pressed: pressed})
}

func (s *demoSource) releaseAll(at time.Time) {
	for code := range s.held {
		s.emit(source.Event[key.Code]{Time: at, Key: code, Pressed: false})
	}
	clear(s.held)
}

func (s *demoSource) emit(ev source.Event[key.Code]) {
	select {
	case s.ch <- ev:
	case <-s.done:
	}
}

// Events returns the toggle event channel.
func (s *demoSource) Events() <-chan source.Event[key.Code] {
	return s.ch
}

// Close stops the source. The interrupt knocks poll out of its
// blocking PollEvent so the event channel actually ends.
func (s *demoSource) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	return nil
}

// keyStat is one key's delivery history.
type keyStat struct {
	count    int
	lastFire time.Time
}

// demoModel is the shared state between the handler and the renderer.
type demoModel struct {
	mu       sync.Mutex
	stats    map[key.Code]*keyStat
	order    []key.Code
	settings config.Settings
}

func newDemoModel(settings config.Settings) *demoModel {
	return &demoModel{
		stats:    make(map[key.Code]*keyStat),
		settings: settings,
	}
}

// handle is the repeat handler; it runs on the runner's goroutine.
// Tab and modifiers deliver once and opt out of repeat.
func (m *demoModel) handle(k key.Code, repeat *typematic.Repeat) typematic.Count {
	if k == key.Tab || k.IsModifier() {
		repeat.Disable()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stats[k]
	if st == nil {
		st = &keyStat{}
		m.stats[k] = st
		m.order = append(m.order, k)
	}
	st.count++
	st.lastFire = time.Now()
	return 1
}

// setSettings swaps the timing shown in the header after a retune.
func (m *demoModel) setSettings(s config.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
}

// Heat fades from hot to cold as a key's last repeat recedes.
var (
	heatHot  = mustHex("#ff5f5f")
	heatCold = mustHex("#3a7bd5")
)

func mustHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Sprintf("bad heat color %q: %v", hex, err))
	}
	return c
}

func heatStyle(since time.Duration) tcell.Style {
	t := float64(since) / float64(2*time.Second)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return tcell.StyleDefault.Foreground(toTcellColor(heatHot.BlendHcl(heatCold, t)))
}

func toTcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewHexColor(int32(uint32(r)<<16 | uint32(g)<<8 | uint32(b)))
}

func (m *demoModel) render(screen tcell.Screen, metrics *loop.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	screen.Clear()
	width, _ := screen.Size()
	now := time.Now()

	bold := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Dim(true)

	drawString(screen, 0, 0, bold, fmt.Sprintf("typematic  timeout %v  interval %v", m.settings.Timeout, m.settings.Interval))
	drawString(screen, 0, 1, dim, "type to toggle holds · tab fires once · esc releases all · q quits")

	row := 3
	for _, code := range m.order {
		st := m.stats[code]
		style := heatStyle(now.Sub(st.lastFire))

		label := fmt.Sprintf("%-10s", code.String())
		drawString(screen, 0, row, style, label)

		barWidth := st.count
		if limit := width - len(label) - 8; barWidth > limit {
			barWidth = limit
		}
		for i := 0; i < barWidth; i++ {
			screen.SetContent(len(label)+i, row, '█', nil, style)
		}
		drawString(screen, len(label)+barWidth+1, row, style, fmt.Sprintf("%d", st.count))
		row++
	}

	snap := metrics.Snapshot()
	footer := fmt.Sprintf("presses %d · repeats %d · ticks %d · peak handler %v",
		snap.PressesTotal, snap.DeliveriesTotal, snap.TicksTotal, snap.PeakHandlerLatency)
	drawString(screen, 0, row+1, dim, footer)

	screen.Show()
}

func drawString(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
