// Package vkdriver implements the gfx driver interfaces on top of vkngwrapper
// with SDL2 windows.
package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"

	"github.com/rayge/engine/renderer/gfx"
)

// Loader resolves vkGetInstanceProcAddr through SDL. SDL must be initialised
// with video support and a Vulkan window created first.
type Loader struct{}

func (Loader) Load() (gfx.Entry, error) {
	driver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "vkGetInstanceProcAddr")
	}
	return &entry{driver: driver}, nil
}

// Window adapts an SDL window created with sdl.WINDOW_VULKAN.
type Window struct {
	*sdl.Window
}

func (w Window) DrawableSize() (int, int) {
	width, height := w.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w Window) InstanceExtensions() ([]string, error) {
	return w.VulkanGetInstanceExtensions(), nil
}
