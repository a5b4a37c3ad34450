// Package gfxtest provides an in-memory driver for exercising the graphics
// layer without a GPU.
package gfxtest

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/rayge/engine/renderer/gfx"
)

// Handle is the opaque object handed out by the fake driver.
type Handle struct {
	Kind string
	ID   int
	Name string
}

func (h *Handle) String() string { return fmt.Sprintf("%s#%d", h.Kind, h.ID) }

// Log records driver calls in order.
type Log struct {
	Calls []string
}

func (l *Log) add(format string, args ...interface{}) {
	l.Calls = append(l.Calls, fmt.Sprintf(format, args...))
}

// Count returns how many recorded calls equal call.
func (l *Log) Count(call string) int {
	n := 0
	for _, c := range l.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// Window is a fake window with a settable drawable size.
type Window struct {
	Width, Height int
	Extensions    []string
}

func (w *Window) DrawableSize() (int, int)              { return w.Width, w.Height }
func (w *Window) InstanceExtensions() ([]string, error) { return w.Extensions, nil }

// Loader hands out Entry, or LoadErr.
type Loader struct {
	Entry   *Entry
	LoadErr error
}

func (l *Loader) Load() (gfx.Entry, error) {
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	return l.Entry, nil
}

type Entry struct {
	Extensions map[string]struct{}
	Layers     map[string]struct{}
	Instance   *Instance
	CreateErr  error

	// Info is the last create info received.
	Info gfx.InstanceCreateInfo
}

func (e *Entry) InstanceExtensions() (map[string]struct{}, error) { return e.Extensions, nil }
func (e *Entry) InstanceLayers() (map[string]struct{}, error)     { return e.Layers, nil }

func (e *Entry) CreateInstance(info gfx.InstanceCreateInfo) (gfx.InstanceDriver, error) {
	e.Info = info
	if e.CreateErr != nil {
		return nil, e.CreateErr
	}
	e.Instance.log.add("create instance")
	return e.Instance, nil
}

type Instance struct {
	log *Log

	Adapters     []*Adapter
	EnumerateErr error

	Surface    *Surface
	SurfaceErr error

	Device    *Device
	DeviceErr error
	// DeviceInfo is the last device create info received.
	DeviceInfo gfx.DeviceCreateInfo

	Destroyed bool
}

func (i *Instance) EnumerateAdapters() ([]gfx.Adapter, error) {
	if i.EnumerateErr != nil {
		return nil, i.EnumerateErr
	}
	adapters := make([]gfx.Adapter, len(i.Adapters))
	for idx, a := range i.Adapters {
		adapters[idx] = a
	}
	return adapters, nil
}

func (i *Instance) CreateSurface(gfx.Window) (gfx.SurfaceDriver, error) {
	if i.SurfaceErr != nil {
		return nil, i.SurfaceErr
	}
	i.log.add("create surface")
	return i.Surface, nil
}

func (i *Instance) CreateDevice(adapter gfx.Adapter, info gfx.DeviceCreateInfo) (gfx.DeviceDriver, error) {
	i.DeviceInfo = info
	if i.DeviceErr != nil {
		return nil, i.DeviceErr
	}
	i.log.add("create device %s", adapter.(*Adapter).Props.Name)
	return i.Device, nil
}

func (i *Instance) Destroy() {
	i.Destroyed = true
	i.log.add("destroy instance")
}

type Adapter struct {
	Props       gfx.AdapterProperties
	Exts        map[string]struct{}
	FeatureSet  gfx.FeatureSet
	Families    []gfx.QueueFamilyProperties
	Memory      gfx.MemoryProperties
	PropertyErr error
}

func (a *Adapter) Properties() (gfx.AdapterProperties, error) { return a.Props, a.PropertyErr }
func (a *Adapter) Extensions() (map[string]struct{}, error)   { return a.Exts, nil }
func (a *Adapter) Features() (gfx.FeatureSet, error)          { return a.FeatureSet, nil }
func (a *Adapter) QueueFamilies() []gfx.QueueFamilyProperties { return a.Families }
func (a *Adapter) MemoryProperties() gfx.MemoryProperties     { return a.Memory }

type Surface struct {
	log *Log

	Caps       gfx.SurfaceCapabilities
	FormatList []gfx.SurfaceFormat
	ModeList   []gfx.PresentMode
	// NoPresent lists queue families that cannot present.
	NoPresent map[int]bool
	CapsErr   error

	CapsQueries int
	Destroyed   bool
}

func (s *Surface) Capabilities(gfx.Adapter) (gfx.SurfaceCapabilities, error) {
	s.CapsQueries++
	return s.Caps, s.CapsErr
}

func (s *Surface) Formats(gfx.Adapter) ([]gfx.SurfaceFormat, error)    { return s.FormatList, nil }
func (s *Surface) PresentModes(gfx.Adapter) ([]gfx.PresentMode, error) { return s.ModeList, nil }

func (s *Surface) SupportsPresent(_ gfx.Adapter, family int) (bool, error) {
	return !s.NoPresent[family], nil
}

func (s *Surface) Destroy() {
	s.Destroyed = true
	s.log.add("destroy surface")
}

// ErrDeviceLost is a stand-in driver failure.
var ErrDeviceLost = errors.New("device lost")
