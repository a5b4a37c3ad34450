package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Context owns every long-lived graphics object. Parts are created in
// dependency order and released in reverse.
type Context struct {
	log logrus.FieldLogger

	instance *Instance
	surface  *Surface
	physical *PhysicalDevice
	device   *Device
}

// NewContext brings up the instance, surface, adapter and device for window.
func NewContext(loader Loader, window Window, opts Options) (ctx *Context, err error) {
	opts = opts.withDefaults()
	ctx = &Context{log: opts.Logger}

	defer func() {
		if err != nil {
			ctx.Close()
			ctx = nil
			err = errors.Wrap(err, "context")
		}
	}()

	if ctx.instance, err = NewInstance(loader, window, opts); err != nil {
		return ctx, errors.Wrap(err, "instance")
	}

	handle, err := NewSurfaceHandle(ctx.instance, window, opts)
	if err != nil {
		return ctx, errors.Wrap(err, "surface")
	}

	physical, config, err := SelectPhysicalDevice(ctx.instance, handle, opts.Requirements, opts.Logger)
	if err != nil {
		handle.Release()
		return ctx, errors.Wrap(err, "physical device")
	}
	ctx.physical = physical
	ctx.surface = NewSurface(handle, physical.adapter, config)

	if ctx.device, err = NewDevice(ctx.instance, physical, handle, opts.Requirements, opts.Logger); err != nil {
		return ctx, errors.Wrap(err, "device")
	}

	return ctx, nil
}

func (c *Context) Instance() *Instance             { return c.instance }
func (c *Context) Surface() *Surface               { return c.surface }
func (c *Context) PhysicalDevice() *PhysicalDevice { return c.physical }
func (c *Context) Device() *Device                 { return c.device }
func (c *Context) Logger() logrus.FieldLogger      { return c.log }

// RefreshSurfaceCapabilities updates the surface extent. It returns false
// when the surface is currently zero sized.
func (c *Context) RefreshSurfaceCapabilities() (bool, error) {
	return c.surface.RefreshCapabilities()
}

// WaitIdle waits for the device to finish all submitted work.
func (c *Context) WaitIdle() error {
	return c.device.WaitIdle()
}

// Close releases the device, the surface and the instance, in that order.
func (c *Context) Close() {
	if c == nil {
		return
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
