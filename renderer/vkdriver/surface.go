package vkdriver

import (
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/rayge/engine/renderer/gfx"
)

type surface struct {
	ext    khr_surface.ExtensionDriver
	handle khr_surface.Surface
}

func (s *surface) Capabilities(a gfx.Adapter) (gfx.SurfaceCapabilities, error) {
	caps, _, err := s.ext.GetPhysicalDeviceSurfaceCapabilities(s.handle, a.(*adapter).device)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	return surfaceCapabilities(caps), nil
}

func (s *surface) Formats(a gfx.Adapter) ([]gfx.SurfaceFormat, error) {
	formats, _, err := s.ext.GetPhysicalDeviceSurfaceFormats(s.handle, a.(*adapter).device)
	if err != nil {
		return nil, err
	}

	out := make([]gfx.SurfaceFormat, len(formats))
	for i, f := range formats {
		out[i] = gfx.SurfaceFormat{Format: gfx.Format(f.Format), ColorSpace: gfx.ColorSpace(f.ColorSpace)}
	}
	return out, nil
}

func (s *surface) PresentModes(a gfx.Adapter) ([]gfx.PresentMode, error) {
	modes, _, err := s.ext.GetPhysicalDeviceSurfacePresentModes(s.handle, a.(*adapter).device)
	if err != nil {
		return nil, err
	}

	out := make([]gfx.PresentMode, len(modes))
	for i, m := range modes {
		out[i] = gfx.PresentMode(m)
	}
	return out, nil
}

func (s *surface) SupportsPresent(a gfx.Adapter, family int) (bool, error) {
	supported, _, err := s.ext.GetPhysicalDeviceSurfaceSupport(s.handle, a.(*adapter).device, family)
	return supported, err
}

func (s *surface) Destroy() {
	s.ext.DestroySurface(s.handle, nil)
}
