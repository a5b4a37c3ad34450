// Package renderer drives presentation: it owns the swapchain, runs the
// frame protocol and rebuilds the chain when the surface changes.
package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/rayge/engine/renderer/gfx"
)

// Recorder produces the command buffers for a frame.
type Recorder interface {
	Record(frame Frame) ([]gfx.CommandBuffer, error)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(frame Frame) ([]gfx.CommandBuffer, error)

func (f RecorderFunc) Record(frame Frame) ([]gfx.CommandBuffer, error) { return f(frame) }

type nopRecorder struct{}

func (nopRecorder) Record(Frame) ([]gfx.CommandBuffer, error) { return nil, nil }

// Options configures a Renderer.
type Options struct {
	gfx.Options

	// Recorder fills each frame. The default records nothing, which still
	// cycles the swapchain.
	Recorder Recorder
}

// Renderer ties a graphics context to its swapchain.
type Renderer struct {
	log      logrus.FieldLogger
	ctx      *gfx.Context
	chain    *Swapchain
	recorder Recorder

	needsResize bool
	rebuilds    int
	frames      uint64
}

// New brings up a context for window and builds the first swapchain.
func New(loader gfx.Loader, window gfx.Window, opts Options) (*Renderer, error) {
	ctx, err := gfx.NewContext(loader, window, opts.Options)
	if err != nil {
		return nil, errors.Wrap(err, "renderer")
	}

	chain, err := NewSwapchain(ctx)
	if err != nil {
		ctx.Close()
		return nil, errors.Wrap(err, "renderer: swapchain")
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Renderer{
		log:      ctx.Logger(),
		ctx:      ctx,
		chain:    chain,
		recorder: recorder,
	}, nil
}

func (r *Renderer) Context() *gfx.Context { return r.ctx }
func (r *Renderer) Swapchain() *Swapchain { return r.chain }

// Rebuilds returns how many times the swapchain has been rebuilt.
func (r *Renderer) Rebuilds() int { return r.rebuilds }

// NeedsResizing marks the swapchain for a rebuild on the next Render or
// Resize call.
func (r *Renderer) NeedsResizing() { r.needsResize = true }

// ResizePending reports whether a rebuild is still outstanding.
func (r *Renderer) ResizePending() bool { return r.needsResize }

// Resize refreshes the surface capabilities and rebuilds the swapchain when
// the surface has a usable extent. A zero extent, as with a minimised
// window, leaves the current swapchain in place and returns false.
func (r *Renderer) Resize() (bool, error) {
	ok, err := r.ctx.RefreshSurfaceCapabilities()
	if err != nil {
		return false, err
	}
	if !ok {
		r.log.WithField("extent", r.ctx.Surface().Config().Extent).Debug("resize deferred")
		return false, nil
	}

	if err := r.ctx.WaitIdle(); err != nil {
		return false, err
	}

	// A failed rebuild leaves no chain behind; the next attempt starts clean.
	if r.chain != nil {
		r.chain.Release(r.ctx.Device())
		r.chain = nil
	}

	chain, err := NewSwapchain(r.ctx)
	if err != nil {
		return false, err
	}
	r.chain = chain
	r.needsResize = false
	r.rebuilds++

	r.log.WithFields(logrus.Fields{
		"extent":   chain.Extent(),
		"rebuilds": r.rebuilds,
	}).Info("swapchain rebuilt")
	return true, nil
}

// Render draws one frame. A pending resize is attempted first. It returns
// true while a resize is still pending, for instance because the window is
// minimised or the swapchain reported itself out of date.
func (r *Renderer) Render() (bool, error) {
	if r.needsResize {
		if _, err := r.Resize(); err != nil {
			return true, err
		}
	}
	if r.chain == nil {
		return r.needsResize, errors.Mark(errors.New("no swapchain"), gfx.ErrSwapchainCreate)
	}

	if err := r.frame(); err != nil {
		if errors.Is(err, gfx.ErrNeedsRecreating) {
			r.log.Debug("swapchain needs recreating")
			r.needsResize = true
			return true, nil
		}
		return r.needsResize, err
	}
	return r.needsResize, nil
}

func (r *Renderer) frame() error {
	dev := r.ctx.Device()

	frame, err := r.chain.Acquire(dev)
	if err != nil {
		return err
	}

	cmds, err := r.recorder.Record(frame)
	if err != nil {
		return errors.Wrap(err, "record")
	}

	if err := r.chain.Submit(dev, frame, cmds); err != nil {
		return err
	}
	if err := r.chain.Present(dev, frame); err != nil {
		return err
	}

	r.frames++
	r.log.WithFields(logrus.Fields{
		"frame": r.frames,
		"slot":  frame.Slot,
		"image": frame.ImageIndex,
	}).Trace("frame presented")

	if frame.Suboptimal {
		return errors.WithStack(gfx.ErrNeedsRecreating)
	}
	return nil
}

// Close waits for the device, then releases the swapchain and the context.
func (r *Renderer) Close() error {
	if r.ctx == nil {
		return nil
	}
	err := r.ctx.WaitIdle()
	if r.chain != nil {
		r.chain.Release(r.ctx.Device())
		r.chain = nil
	}
	r.ctx.Close()
	r.ctx = nil
	return err
}
