package gfx

import "fmt"

// Version is a packed Vulkan API version.
type Version uint32

// MakeVersion packs a major.minor.patch triple.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<22 | minor<<12 | patch)
}

func (v Version) Major() uint32 { return uint32(v) >> 22 }
func (v Version) Minor() uint32 { return (uint32(v) >> 12) & 0x3ff }
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

var (
	APIVersion1_0 = MakeVersion(1, 0, 0)
	APIVersion1_1 = MakeVersion(1, 1, 0)
	APIVersion1_2 = MakeVersion(1, 2, 0)
	APIVersion1_3 = MakeVersion(1, 3, 0)
)

// UndefinedExtent is reported as the current width when the window system
// lets the client pick the surface size.
const UndefinedExtent = 0xFFFFFFFF

// Extent2D is a width/height pair in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero, as with a minimised window.
func (e Extent2D) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent2D) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Format mirrors VkFormat.
type Format uint32

// ColorSpace mirrors VkColorSpaceKHR.
type ColorSpace uint32

const (
	FormatUndefined     Format = 0
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50

	ColorSpaceSRGBNonlinear ColorSpace = 0
)

// SurfaceFormat is a format and colour space pair supported by a surface.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode mirrors VkPresentModeKHR.
type PresentMode uint32

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFIFO
	PresentModeFIFORelaxed
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFIFO:
		return "fifo"
	case PresentModeFIFORelaxed:
		return "fifo_relaxed"
	}
	return fmt.Sprintf("present_mode(%d)", uint32(m))
}

// SurfaceCapabilities is the subset of VkSurfaceCapabilitiesKHR the
// swapchain negotiation reads.
type SurfaceCapabilities struct {
	MinImageCount  uint32
	MaxImageCount  uint32
	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D
}

// QueueFlags mirrors VkQueueFlags.
type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x01
	QueueCompute       QueueFlags = 0x02
	QueueTransfer      QueueFlags = 0x04
	QueueSparseBinding QueueFlags = 0x08
	QueueProtected     QueueFlags = 0x10
	QueueVideoDecode   QueueFlags = 0x20
	QueueVideoEncode   QueueFlags = 0x40
)

func (f QueueFlags) Has(bits QueueFlags) bool { return f&bits == bits }

// QueueFamilyProperties describes one queue family of an adapter.
type QueueFamilyProperties struct {
	Flags      QueueFlags
	QueueCount uint32
}

// AdapterType mirrors VkPhysicalDeviceType.
type AdapterType uint32

const (
	AdapterTypeOther AdapterType = iota
	AdapterTypeIntegratedGPU
	AdapterTypeDiscreteGPU
	AdapterTypeVirtualGPU
	AdapterTypeCPU
)

func (t AdapterType) String() string {
	switch t {
	case AdapterTypeIntegratedGPU:
		return "integrated"
	case AdapterTypeDiscreteGPU:
		return "discrete"
	case AdapterTypeVirtualGPU:
		return "virtual"
	case AdapterTypeCPU:
		return "cpu"
	}
	return "other"
}

// Limits holds the device limits the renderer consults.
type Limits struct {
	MaxImageDimension2D  uint32
	MaxSamplerAnisotropy float32
}

// AdapterProperties are queried once per adapter and cached.
type AdapterProperties struct {
	Name          string
	Type          AdapterType
	APIVersion    Version
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
	Limits        Limits
}

// MemoryPropertyFlags mirrors VkMemoryPropertyFlags.
type MemoryPropertyFlags uint32

const (
	MemoryDeviceLocal     MemoryPropertyFlags = 0x01
	MemoryHostVisible     MemoryPropertyFlags = 0x02
	MemoryHostCoherent    MemoryPropertyFlags = 0x04
	MemoryHostCached      MemoryPropertyFlags = 0x08
	MemoryLazilyAllocated MemoryPropertyFlags = 0x10
)

type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     int
}

type MemoryHeap struct {
	Size        uint64
	DeviceLocal bool
}

// MemoryProperties lists the memory types and heaps of an adapter.
type MemoryProperties struct {
	Types []MemoryType
	Heaps []MemoryHeap
}
