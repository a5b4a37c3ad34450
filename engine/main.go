package main

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/rayge/engine/renderer"
	"github.com/rayge/engine/renderer/gfx"
	"github.com/rayge/engine/renderer/vkdriver"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		logrus.Fatalf("config: %+v", err)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	log := logger.WithField("session", uuid.New().String())

	if err := run(cfg, log); err != nil {
		log.Errorf("%+v", err)
		os.Exit(1)
	}
}

func run(cfg Config, log logrus.FieldLogger) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl")
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return errors.Wrap(err, "window")
	}
	defer window.Destroy()

	r, err := renderer.New(vkdriver.Loader{}, vkdriver.Window{Window: window}, renderer.Options{
		Options: gfx.Options{
			Logger:              log,
			ApplicationName:     cfg.Title,
			Validation:          cfg.Validation,
			ExactFormat:         cfg.ExactFormat,
			PreferredImageCount: cfg.ImageCount,
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.WithError(err).Warn("renderer close")
		}
	}()

	app := NewApp(cfg, r, log)
	width, height := window.GetSize()
	log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
		"update": cfg.UpdateRate,
		"cap":    cfg.FrameCap,
	}).Info("engine started")

	last := hrtime.Now()
	for app.Running() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			app.HandleEvent(event)
		}

		now := hrtime.Now()
		if err := app.Tick(now - last); err != nil {
			return err
		}
		last = now
	}

	log.WithFields(logrus.Fields{
		"updates":  app.Updates(),
		"frames":   app.Frames(),
		"rebuilds": r.Rebuilds(),
	}).Info("engine stopped")
	return nil
}
