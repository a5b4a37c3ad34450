package gfx

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// AllocatorFlags select the optional allocation paths the allocator uses.
type AllocatorFlags uint32

const (
	AllocatorDedicatedAllocation AllocatorFlags = 1 << iota
	// AllocatorBindMemory2 only gates the version check. Resources are bound
	// by their owners.
	AllocatorBindMemory2
	AllocatorBufferDeviceAddress
	AllocatorMemoryPriority
)

// DefaultAllocatorFlags is what the device enables.
const DefaultAllocatorFlags = AllocatorDedicatedAllocation | AllocatorBindMemory2 |
	AllocatorBufferDeviceAddress | AllocatorMemoryPriority

// ErrNoMemoryType is returned when no memory type satisfies a request.
var ErrNoMemoryType = errors.New("suitable memory type not found")

// MemoryRequirements mirrors VkMemoryRequirements.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// AllocationCreateInfo describes how a block should be placed.
type AllocationCreateInfo struct {
	Required  MemoryPropertyFlags
	Preferred MemoryPropertyFlags
	// Priority in [0, 1]; only forwarded when memory priority is enabled.
	Priority float32

	// DedicatedImage or DedicatedBuffer ties the block to a single resource
	// when dedicated allocation is enabled. Set at most one.
	DedicatedImage  Image
	DedicatedBuffer Buffer
}

// Allocation is one block of device memory.
type Allocation struct {
	memory    DeviceMemory
	size      uint64
	typeIndex int
}

func (a *Allocation) Memory() DeviceMemory { return a.memory }
func (a *Allocation) Size() uint64         { return a.size }
func (a *Allocation) TypeIndex() int       { return a.typeIndex }

// Allocator hands out device memory, one block per allocation.
type Allocator struct {
	log    logrus.FieldLogger
	driver DeviceDriver
	memory MemoryProperties
	flags  AllocatorFlags

	live  map[*Allocation]struct{}
	bytes uint64
}

func newAllocator(driver DeviceDriver, physical *PhysicalDevice, apiVersion Version, extensions []string, flags AllocatorFlags, log logrus.FieldLogger) (*Allocator, error) {
	if len(physical.memory.Types) == 0 {
		return nil, errors.New("adapter reports no memory types")
	}

	deviceVersion := min(apiVersion, physical.properties.APIVersion)
	if flags&(AllocatorDedicatedAllocation|AllocatorBindMemory2) != 0 && deviceVersion < APIVersion1_1 {
		return nil, errors.Newf("dedicated allocation and bind memory 2 need Vulkan 1.1, device offers %s", deviceVersion)
	}
	if flags&AllocatorBufferDeviceAddress != 0 && deviceVersion < APIVersion1_2 {
		return nil, errors.Newf("buffer device address needs Vulkan 1.2, device offers %s", deviceVersion)
	}
	if flags&AllocatorMemoryPriority != 0 && !slices.Contains(extensions, ExtMemoryPriority) {
		return nil, errors.Newf("memory priority needs %s", ExtMemoryPriority)
	}

	return &Allocator{
		log:    log,
		driver: driver,
		memory: physical.memory,
		flags:  flags,
		live:   make(map[*Allocation]struct{}),
	}, nil
}

// Flags returns the enabled allocation paths.
func (a *Allocator) Flags() AllocatorFlags { return a.flags }

// FindMemoryType returns the first type allowed by typeBits that has every
// required flag, preferring one that also has the preferred flags.
func (a *Allocator) FindMemoryType(typeBits uint32, required, preferred MemoryPropertyFlags) (int, error) {
	fallback := -1
	for idx, mt := range a.memory.Types {
		if typeBits&(1<<uint(idx)) == 0 || mt.PropertyFlags&required != required {
			continue
		}
		if mt.PropertyFlags&(required|preferred) == required|preferred {
			return idx, nil
		}
		if fallback < 0 {
			fallback = idx
		}
	}
	if fallback < 0 {
		return 0, errors.WithStack(ErrNoMemoryType)
	}
	return fallback, nil
}

// Allocate reserves a block that satisfies req.
func (a *Allocator) Allocate(req MemoryRequirements, info AllocationCreateInfo) (*Allocation, error) {
	if info.DedicatedImage != nil && info.DedicatedBuffer != nil {
		return nil, errors.New("dedicated allocation names both an image and a buffer")
	}

	typeIndex, err := a.FindMemoryType(req.MemoryTypeBits, info.Required, info.Preferred)
	if err != nil {
		return nil, err
	}

	allocInfo := MemoryAllocateInfo{
		Size:          req.Size,
		TypeIndex:     typeIndex,
		DeviceAddress: a.flags&AllocatorBufferDeviceAddress != 0,
		Priority:      info.Priority,
		UsePriority:   a.flags&AllocatorMemoryPriority != 0,
	}
	if a.flags&AllocatorDedicatedAllocation != 0 {
		allocInfo.DedicatedImage = info.DedicatedImage
		allocInfo.DedicatedBuffer = info.DedicatedBuffer
	}

	memory, err := a.driver.AllocateMemory(allocInfo)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d bytes from type %d", req.Size, typeIndex)
	}

	alloc := &Allocation{memory: memory, size: req.Size, typeIndex: typeIndex}
	a.live[alloc] = struct{}{}
	a.bytes += req.Size
	return alloc, nil
}

// Free returns alloc to the device. Freeing twice is a no-op.
func (a *Allocator) Free(alloc *Allocation) {
	if _, ok := a.live[alloc]; !ok {
		return
	}
	delete(a.live, alloc)
	a.bytes -= alloc.size
	a.driver.FreeMemory(alloc.memory)
}

// Live returns the number of outstanding allocations and their total size.
func (a *Allocator) Live() (int, uint64) {
	return len(a.live), a.bytes
}

func (a *Allocator) release() {
	if n := len(a.live); n > 0 {
		a.log.WithFields(logrus.Fields{"allocations": n, "bytes": a.bytes}).Warn("freeing leaked allocations")
		for alloc := range a.live {
			a.Free(alloc)
		}
	}
}
