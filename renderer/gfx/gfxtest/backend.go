package gfxtest

import (
	"github.com/rayge/engine/renderer/gfx"
)

// Backend wires a complete fake driver.
type Backend struct {
	Log      *Log
	Window   *Window
	Loader   *Loader
	Entry    *Entry
	Instance *Instance
	Surface  *Surface
	Device   *Device
}

// NewBackend returns a driver exposing one adapter that satisfies the
// default requirements and a 640x480 window.
func NewBackend() *Backend {
	log := &Log{}

	device := &Device{
		log:    log,
		Live:   make(map[string]int),
		images: make(map[*Handle][]gfx.Image),
		Names:  make(map[*Handle]string),
	}
	surface := &Surface{
		log: log,
		Caps: gfx.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  4,
			CurrentExtent:  gfx.Extent2D{Width: 640, Height: 480},
			MinImageExtent: gfx.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: gfx.Extent2D{Width: 4096, Height: 4096},
		},
		FormatList: []gfx.SurfaceFormat{
			{Format: gfx.FormatB8G8R8A8Unorm, ColorSpace: gfx.ColorSpaceSRGBNonlinear},
			{Format: gfx.FormatB8G8R8A8SRGB, ColorSpace: gfx.ColorSpaceSRGBNonlinear},
		},
		ModeList: []gfx.PresentMode{gfx.PresentModeFIFO, gfx.PresentModeMailbox},
	}
	instance := &Instance{
		log:      log,
		Adapters: []*Adapter{NewAdapter("fake discrete")},
		Surface:  surface,
		Device:   device,
	}
	entry := &Entry{
		Extensions: set(gfx.ExtSurface, "VK_KHR_xlib_surface", gfx.ExtPortabilityEnumeration, gfx.ExtDebugUtils),
		Layers:     set(gfx.LayerValidation),
		Instance:   instance,
	}

	return &Backend{
		Log:      log,
		Window:   &Window{Width: 640, Height: 480, Extensions: []string{gfx.ExtSurface, "VK_KHR_xlib_surface"}},
		Loader:   &Loader{Entry: entry},
		Entry:    entry,
		Instance: instance,
		Surface:  surface,
		Device:   device,
	}
}

// NewAdapter returns a discrete adapter with every default extension and
// feature and the usual graphics, compute and transfer families.
func NewAdapter(name string) *Adapter {
	reqs := gfx.DefaultRequirements()

	features := gfx.FeatureSet{}
	for _, f := range reqs.Features {
		features[f] = true
	}

	return &Adapter{
		Props: gfx.AdapterProperties{
			Name:       name,
			Type:       gfx.AdapterTypeDiscreteGPU,
			APIVersion: gfx.APIVersion1_3,
		},
		Exts:       set(reqs.DeviceExtensions...),
		FeatureSet: features,
		Families: []gfx.QueueFamilyProperties{
			{Flags: gfx.QueueGraphics | gfx.QueueCompute | gfx.QueueTransfer, QueueCount: 16},
			{Flags: gfx.QueueTransfer, QueueCount: 2},
			{Flags: gfx.QueueCompute | gfx.QueueTransfer, QueueCount: 8},
		},
		Memory: gfx.MemoryProperties{
			Types: []gfx.MemoryType{
				{PropertyFlags: gfx.MemoryDeviceLocal, HeapIndex: 0},
				{PropertyFlags: gfx.MemoryHostVisible | gfx.MemoryHostCoherent, HeapIndex: 1},
				{PropertyFlags: gfx.MemoryHostVisible | gfx.MemoryHostCoherent | gfx.MemoryHostCached, HeapIndex: 1},
				{PropertyFlags: gfx.MemoryDeviceLocal | gfx.MemoryHostVisible | gfx.MemoryHostCoherent, HeapIndex: 0},
			},
			Heaps: []gfx.MemoryHeap{
				{Size: 8 << 30, DeviceLocal: true},
				{Size: 16 << 30},
			},
		},
	}
}

func set(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}
