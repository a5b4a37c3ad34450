package gfx_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayge/engine/renderer/gfx"
	"github.com/rayge/engine/renderer/gfx/gfxtest"
)

func newAllocator(t *testing.T) (*gfx.Allocator, *gfxtest.Backend, func()) {
	backend := gfxtest.NewBackend()
	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	require.NoError(t, err)
	return ctx.Device().Allocator(), backend, ctx.Close
}

func TestAllocator_Flags(t *testing.T) {
	alloc, _, done := newAllocator(t)
	defer done()

	assert.Equal(t, gfx.DefaultAllocatorFlags, alloc.Flags())
}

func TestAllocator_FindMemoryType(t *testing.T) {
	assert := assert.New(t)
	alloc, _, done := newAllocator(t)
	defer done()

	idx, err := alloc.FindMemoryType(0xF, gfx.MemoryDeviceLocal, 0)
	assert.NoError(err)
	assert.Equal(0, idx)

	idx, err = alloc.FindMemoryType(0xF, gfx.MemoryHostVisible, gfx.MemoryHostCached)
	assert.NoError(err)
	assert.Equal(2, idx)

	idx, err = alloc.FindMemoryType(0xF, gfx.MemoryHostVisible, gfx.MemoryLazilyAllocated)
	assert.NoError(err)
	assert.Equal(1, idx, "falls back to the first type with the required flags")

	idx, err = alloc.FindMemoryType(1<<3, gfx.MemoryDeviceLocal|gfx.MemoryHostVisible, 0)
	assert.NoError(err)
	assert.Equal(3, idx)

	_, err = alloc.FindMemoryType(1<<1, gfx.MemoryDeviceLocal, 0)
	assert.True(errors.Is(err, gfx.ErrNoMemoryType))
}

func TestAllocator_AllocateAndFree(t *testing.T) {
	assert := assert.New(t)
	alloc, backend, done := newAllocator(t)

	a, err := alloc.Allocate(gfx.MemoryRequirements{Size: 4096, Alignment: 256, MemoryTypeBits: 0xF}, gfx.AllocationCreateInfo{
		Required: gfx.MemoryDeviceLocal,
		Priority: 0.75,
	})
	require.NoError(t, err)
	assert.Equal(uint64(4096), a.Size())
	assert.Equal(0, a.TypeIndex())

	info := backend.Device.Allocated[0]
	assert.True(info.DeviceAddress)
	assert.True(info.UsePriority)
	assert.Equal(float32(0.75), info.Priority)

	_, err = alloc.Allocate(gfx.MemoryRequirements{Size: 64, MemoryTypeBits: 0x2}, gfx.AllocationCreateInfo{Required: gfx.MemoryHostVisible})
	require.NoError(t, err)

	n, bytes := alloc.Live()
	assert.Equal(2, n)
	assert.Equal(uint64(4160), bytes)

	alloc.Free(a)
	alloc.Free(a)
	n, bytes = alloc.Live()
	assert.Equal(1, n)
	assert.Equal(uint64(64), bytes)
	assert.Equal(1, backend.Device.Live["memory"])

	done()
	assert.Equal(0, backend.Device.Live["memory"])
}

func TestAllocator_WithoutMemoryPriority(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()

	reqs := gfx.DefaultRequirements()
	reqs.DeviceExtensions = []string{gfx.ExtSwapchain}
	reqs.Features = nil

	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{Requirements: reqs})
	require.NoError(t, err)
	defer ctx.Close()

	alloc := ctx.Device().Allocator()
	assert.Zero(alloc.Flags() & gfx.AllocatorMemoryPriority)

	_, err = alloc.Allocate(gfx.MemoryRequirements{Size: 16, MemoryTypeBits: 0x1}, gfx.AllocationCreateInfo{Priority: 1})
	require.NoError(t, err)
	assert.False(backend.Device.Allocated[0].UsePriority)
}

func TestAllocator_Dedicated(t *testing.T) {
	assert := assert.New(t)
	alloc, backend, done := newAllocator(t)
	defer done()

	image := &gfxtest.Handle{Kind: "image", ID: 99}
	_, err := alloc.Allocate(gfx.MemoryRequirements{Size: 1 << 20, MemoryTypeBits: 0x1}, gfx.AllocationCreateInfo{
		Required:       gfx.MemoryDeviceLocal,
		DedicatedImage: image,
	})
	require.NoError(t, err)
	assert.Same(image, backend.Device.Allocated[0].DedicatedImage)
	assert.Nil(backend.Device.Allocated[0].DedicatedBuffer)

	_, err = alloc.Allocate(gfx.MemoryRequirements{Size: 16, MemoryTypeBits: 0x1}, gfx.AllocationCreateInfo{
		DedicatedImage:  image,
		DedicatedBuffer: &gfxtest.Handle{Kind: "buffer", ID: 100},
	})
	assert.Error(err)
	assert.Len(backend.Device.Allocated, 1)
}
