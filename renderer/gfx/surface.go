package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// SurfaceConfig is the negotiated swapchain configuration for one surface
// and adapter.
type SurfaceConfig struct {
	Format      SurfaceFormat
	PresentMode PresentMode
	Extent      Extent2D
	ImageCount  uint32
}

// SurfaceHandle is a created surface before an adapter has been chosen.
type SurfaceHandle struct {
	log    logrus.FieldLogger
	driver SurfaceDriver
	window Window

	exactFormat    bool
	preferredCount uint32
}

// NewSurfaceHandle creates a presentation surface for window.
func NewSurfaceHandle(instance *Instance, window Window, opts Options) (*SurfaceHandle, error) {
	opts = opts.withDefaults()

	driver, err := instance.Driver().CreateSurface(window)
	if err != nil {
		if errors.Is(err, ErrUnsupportedPlatform) {
			return nil, err
		}
		return nil, fail(err, ErrSurfaceCreate, "create")
	}

	return &SurfaceHandle{
		log:            opts.Logger,
		driver:         driver,
		window:         window,
		exactFormat:    opts.ExactFormat,
		preferredCount: opts.PreferredImageCount,
	}, nil
}

// Driver returns the underlying surface driver.
func (h *SurfaceHandle) Driver() SurfaceDriver { return h.driver }

// Config negotiates a swapchain configuration for adapter. The boolean is
// false when the adapter cannot present to the surface in a usable way.
func (h *SurfaceHandle) Config(adapter Adapter) (SurfaceConfig, bool, error) {
	caps, err := h.driver.Capabilities(adapter)
	if err != nil {
		return SurfaceConfig{}, false, err
	}
	formats, err := h.driver.Formats(adapter)
	if err != nil {
		return SurfaceConfig{}, false, err
	}
	modes, err := h.driver.PresentModes(adapter)
	if err != nil {
		return SurfaceConfig{}, false, err
	}
	if len(formats) == 0 || len(modes) == 0 {
		return SurfaceConfig{}, false, nil
	}

	format, ok := ChooseSurfaceFormat(formats, h.exactFormat)
	if !ok {
		return SurfaceConfig{}, false, nil
	}

	return SurfaceConfig{
		Format:      format,
		PresentMode: ChoosePresentMode(modes),
		Extent:      ChooseExtent(caps, h.drawableExtent()),
		ImageCount:  ChooseImageCount(caps, h.preferredCount),
	}, true, nil
}

// SupportsPresent reports whether family of adapter can present here.
func (h *SurfaceHandle) SupportsPresent(adapter Adapter, family int) (bool, error) {
	return h.driver.SupportsPresent(adapter, family)
}

func (h *SurfaceHandle) drawableExtent() Extent2D {
	w, ht := h.window.DrawableSize()
	if w < 0 {
		w = 0
	}
	if ht < 0 {
		ht = 0
	}
	return Extent2D{Width: uint32(w), Height: uint32(ht)}
}

// Release destroys the surface.
func (h *SurfaceHandle) Release() {
	if h == nil || h.driver == nil {
		return
	}
	h.driver.Destroy()
	h.driver = nil
}

// Surface is a surface paired with the configuration negotiated for the
// selected adapter.
type Surface struct {
	handle  *SurfaceHandle
	adapter Adapter
	config  SurfaceConfig
}

// NewSurface binds handle to the configuration negotiated for adapter.
func NewSurface(handle *SurfaceHandle, adapter Adapter, config SurfaceConfig) *Surface {
	return &Surface{handle: handle, adapter: adapter, config: config}
}

func (s *Surface) Handle() *SurfaceHandle { return s.handle }
func (s *Surface) Config() SurfaceConfig  { return s.config }

// RefreshCapabilities re-reads the surface capabilities and updates the
// configured extent. Nothing else in the configuration changes. It returns
// true when the new extent can back a swapchain.
func (s *Surface) RefreshCapabilities() (bool, error) {
	caps, err := s.handle.driver.Capabilities(s.adapter)
	if err != nil {
		return false, fail(err, ErrSurfaceCreate, "capabilities")
	}

	s.config.Extent = ChooseExtent(caps, s.handle.drawableExtent())
	return !s.config.Extent.IsZero(), nil
}

// Release destroys the underlying surface.
func (s *Surface) Release() {
	if s == nil {
		return
	}
	s.handle.Release()
}

// ChooseSurfaceFormat prefers B8G8R8A8_SRGB with the sRGB non-linear colour
// space. Without it the first reported format is used, unless exact is set.
func ChooseSurfaceFormat(formats []SurfaceFormat, exact bool) (SurfaceFormat, bool) {
	preferred := SurfaceFormat{Format: FormatB8G8R8A8SRGB, ColorSpace: ColorSpaceSRGBNonlinear}
	for _, f := range formats {
		if f == preferred {
			return f, true
		}
	}
	if exact || len(formats) == 0 {
		return SurfaceFormat{}, false
	}
	return formats[0], true
}

// ChoosePresentMode prefers relaxed FIFO and falls back to FIFO, which every
// driver must support.
func ChoosePresentMode(modes []PresentMode) PresentMode {
	for _, m := range modes {
		if m == PresentModeFIFORelaxed {
			return m
		}
	}
	return PresentModeFIFO
}

// ChooseExtent returns the current extent, or the requested one clamped to
// the surface bounds when the window system leaves the choice to the client.
func ChooseExtent(caps SurfaceCapabilities, requested Extent2D) Extent2D {
	if caps.CurrentExtent.Width != UndefinedExtent {
		return caps.CurrentExtent
	}

	return Extent2D{
		Width:  clamp(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for at least preferred images, bounded by the
// surface. A maximum of zero means no limit, and a maximum below the minimum
// is ignored.
func ChooseImageCount(caps SurfaceCapabilities, preferred uint32) uint32 {
	count := max(caps.MinImageCount, preferred)
	if caps.MaxImageCount > 0 && caps.MaxImageCount >= caps.MinImageCount && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		v = lo
	}
	if hi >= lo && v > hi {
		v = hi
	}
	return v
}
