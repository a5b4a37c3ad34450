package gfx

// Opaque driver handles. The driver that produced a handle is the only one
// that can interpret it.
type (
	Queue           any
	Semaphore       any
	Fence           any
	Image           any
	Buffer          any
	ImageView       any
	SwapchainHandle any
	CommandBuffer   any
	DeviceMemory    any
)

// Window is the windowing side of surface creation.
type Window interface {
	// DrawableSize returns the size of the drawable area in pixels.
	DrawableSize() (width, height int)
	// InstanceExtensions lists the instance extensions the window system
	// needs to create a surface.
	InstanceExtensions() ([]string, error)
}

// Loader resolves the driver entry point.
type Loader interface {
	Load() (Entry, error)
}

// Entry is the global, pre-instance level of a driver.
type Entry interface {
	InstanceExtensions() (map[string]struct{}, error)
	InstanceLayers() (map[string]struct{}, error)
	CreateInstance(info InstanceCreateInfo) (InstanceDriver, error)
}

// DebugSeverity classifies a validation message.
type DebugSeverity int

const (
	DebugVerbose DebugSeverity = iota
	DebugInfo
	DebugWarning
	DebugError
)

// DebugCallback receives validation messages.
type DebugCallback func(severity DebugSeverity, message string)

type InstanceCreateInfo struct {
	ApplicationName string
	EngineName      string
	APIVersion      Version

	Extensions []string
	Layers     []string

	// EnumeratePortability sets the portability enumeration instance flag.
	EnumeratePortability bool
	// Debug installs a debug messenger when non-nil.
	Debug DebugCallback
}

// InstanceDriver is a created instance.
type InstanceDriver interface {
	EnumerateAdapters() ([]Adapter, error)
	CreateSurface(window Window) (SurfaceDriver, error)
	CreateDevice(adapter Adapter, info DeviceCreateInfo) (DeviceDriver, error)
	Destroy()
}

// Adapter is a physical device as reported by the driver.
type Adapter interface {
	Properties() (AdapterProperties, error)
	Extensions() (map[string]struct{}, error)
	Features() (FeatureSet, error)
	QueueFamilies() []QueueFamilyProperties
	MemoryProperties() MemoryProperties
}

// SurfaceDriver is a created presentation surface.
type SurfaceDriver interface {
	Capabilities(adapter Adapter) (SurfaceCapabilities, error)
	Formats(adapter Adapter) ([]SurfaceFormat, error)
	PresentModes(adapter Adapter) ([]PresentMode, error)
	SupportsPresent(adapter Adapter, family int) (bool, error)
	Destroy()
}

type QueueCreateInfo struct {
	Family     int
	Priorities []float32
}

type DeviceCreateInfo struct {
	Queues     []QueueCreateInfo
	Extensions []string
	Features   []Feature
}

type SwapchainCreateInfo struct {
	Surface     SurfaceDriver
	ImageCount  uint32
	Format      SurfaceFormat
	Extent      Extent2D
	PresentMode PresentMode
}

type SubmitInfo struct {
	Wait           []Semaphore
	CommandBuffers []CommandBuffer
	Signal         []Semaphore
}

type PresentInfo struct {
	Wait       []Semaphore
	Swapchain  SwapchainHandle
	ImageIndex int
}

type MemoryAllocateInfo struct {
	Size      uint64
	TypeIndex int

	DeviceAddress bool
	// Priority is forwarded only when UsePriority is set.
	Priority    float32
	UsePriority bool

	// At most one of DedicatedImage and DedicatedBuffer is set.
	DedicatedImage  Image
	DedicatedBuffer Buffer
}

// DeviceDriver is a created logical device.
//
// AcquireNextImage returns ErrNeedsRecreating when the swapchain is out of
// date. A suboptimal acquire still returns the image, with its semaphore
// signaled, and reports suboptimal. QueuePresent returns ErrNeedsRecreating
// when the swapchain is out of date or suboptimal.
type DeviceDriver interface {
	Queue(family, index int) Queue
	WaitIdle() error

	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	WaitForFences(fences ...Fence) error
	ResetFences(fences ...Fence) error

	CreateSwapchain(info SwapchainCreateInfo) (SwapchainHandle, error)
	SwapchainImages(sc SwapchainHandle) ([]Image, error)
	DestroySwapchain(sc SwapchainHandle)
	CreateImageView(image Image, format Format) (ImageView, error)
	DestroyImageView(v ImageView)

	AcquireNextImage(sc SwapchainHandle, signal Semaphore) (idx int, suboptimal bool, err error)
	QueueSubmit(q Queue, info SubmitInfo, fence Fence) error
	QueuePresent(q Queue, info PresentInfo) error

	AllocateMemory(info MemoryAllocateInfo) (DeviceMemory, error)
	FreeMemory(m DeviceMemory)

	SetDebugName(object any, name string) error
	Destroy()
}
