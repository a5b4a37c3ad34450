package main

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/rayge/engine/timestep"
)

// maxUpdatesPerTick bounds catch-up work after a slow frame.
const maxUpdatesPerTick = 5

type frameRenderer interface {
	NeedsResizing()
	Resize() (bool, error)
	Render() (bool, error)
}

// App owns the main loop state: input, window status and the two steppers
// that pace simulation updates and presentation.
type App struct {
	log      logrus.FieldLogger
	cfg      Config
	renderer frameRenderer
	input    *Input

	running         bool
	minimized       bool
	resizeRequested bool

	update  *timestep.Stepper
	present *timestep.Stepper

	updates uint64
	frames  uint64
}

func NewApp(cfg Config, r frameRenderer, log logrus.FieldLogger) *App {
	a := &App{
		log:      log,
		cfg:      cfg,
		renderer: r,
		input:    NewInput(),
		running:  true,
		update:   timestep.New(timestep.FromFrequency(cfg.UpdateRate), timestep.WithMaxSteps(maxUpdatesPerTick)),
	}
	if cfg.FrameCap > 0 {
		a.present = timestep.New(timestep.FromFrequency(cfg.FrameCap))
	}
	return a
}

func (a *App) Running() bool   { return a.running }
func (a *App) Input() *Input   { return a.input }
func (a *App) Updates() uint64 { return a.updates }
func (a *App) Frames() uint64  { return a.frames }

// HandleEvent reacts to a single window system event.
func (a *App) HandleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		a.running = false
	case *sdl.KeyboardEvent:
		if e.Keysym.Sym == sdl.K_ESCAPE && e.State == sdl.PRESSED {
			a.running = false
			return
		}
		a.input.Handle(e)
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			a.resizeRequested = true
		case sdl.WINDOWEVENT_MINIMIZED:
			a.minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			a.minimized = false
			a.resizeRequested = true
		case sdl.WINDOWEVENT_CLOSE:
			a.running = false
		}
	default:
		a.input.Handle(event)
	}
}

// Tick advances the loop by elapsed wall-clock time: it runs the due
// updates and presents a frame when one is due.
func (a *App) Tick(elapsed time.Duration) error {
	elapsed = min(elapsed, a.cfg.MaxFrameDelta)

	a.update.Add(elapsed)
	for step := range a.update.Steps() {
		if err := a.step(step); err != nil {
			return err
		}
	}

	if !a.frameDue(elapsed) || a.minimized {
		return nil
	}

	if _, err := a.renderer.Render(); err != nil {
		return errors.Wrap(err, "render")
	}
	a.frames++
	return nil
}

func (a *App) step(step timestep.Step) error {
	a.updates++

	if a.resizeRequested && !a.minimized {
		a.renderer.NeedsResizing()
		rebuilt, err := a.renderer.Resize()
		if err != nil {
			return errors.Wrap(err, "resize")
		}
		a.resizeRequested = false
		if !rebuilt {
			a.log.WithField("at", step.Now).Debug("resize waiting for a usable extent")
		}
	}
	return nil
}

// frameDue drains the presentation stepper. Without a frame cap every tick
// presents.
func (a *App) frameDue(elapsed time.Duration) bool {
	if a.present == nil {
		return true
	}
	a.present.Add(elapsed)
	due := false
	for range a.present.Steps() {
		due = true
	}
	return due
}
