package renderer_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayge/engine/renderer"
	"github.com/rayge/engine/renderer/gfx"
	"github.com/rayge/engine/renderer/gfx/gfxtest"
)

func newRenderer(t *testing.T, opts renderer.Options) (*renderer.Renderer, *gfxtest.Backend) {
	t.Helper()
	backend := gfxtest.NewBackend()
	r, err := renderer.New(backend.Loader, backend.Window, opts)
	require.NoError(t, err)
	return r, backend
}

func TestNew(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})

	chain := r.Swapchain()
	assert.Equal(gfx.Extent2D{Width: 640, Height: 480}, chain.Extent())
	assert.Len(chain.Images(), 3)
	assert.Equal(uint32(3), backend.Device.LastSwapchain.ImageCount)
	assert.Equal(gfx.FormatB8G8R8A8SRGB, backend.Device.LastSwapchain.Format.Format)
	assert.Same(backend.Surface, backend.Device.LastSwapchain.Surface)

	assert.Equal(1, backend.Device.Live["swapchain"])
	assert.Equal(3, backend.Device.Live["view"])
	assert.Equal(2*renderer.FramesInFlight, backend.Device.Live["semaphore"])
	assert.Equal(renderer.FramesInFlight, backend.Device.Live["fence"])

	view := chain.Images()[1].View.(*gfxtest.Handle)
	assert.Equal("swapchain_image1_image_view", backend.Device.Names[view])

	require.NoError(t, r.Close())
	assert.Zero(backend.Device.LiveObjects())
}

func TestRender_CyclesSlots(t *testing.T) {
	assert := assert.New(t)

	var frames []renderer.Frame
	r, backend := newRenderer(t, renderer.Options{
		Recorder: renderer.RecorderFunc(func(f renderer.Frame) ([]gfx.CommandBuffer, error) {
			frames = append(frames, f)
			return []gfx.CommandBuffer{"cmd"}, nil
		}),
	})
	defer r.Close()

	start := len(backend.Log.Calls)
	for i := 0; i < 3; i++ {
		pending, err := r.Render()
		require.NoError(t, err)
		assert.False(pending)
	}

	require.Len(t, frames, 3)
	assert.Equal([]int{0, 1, 0}, []int{frames[0].Slot, frames[1].Slot, frames[2].Slot})
	assert.Equal([]int{0, 1, 2}, []int{frames[0].ImageIndex, frames[1].ImageIndex, frames[2].ImageIndex})
	assert.Same(frames[0].Sync, frames[2].Sync)
	assert.NotSame(frames[0].Sync, frames[1].Sync)

	submit := backend.Device.Submits[1]
	assert.Equal([]gfx.Semaphore{frames[1].Sync.ImageAvailable}, submit.Wait)
	assert.Equal([]gfx.Semaphore{frames[1].Sync.RenderComplete}, submit.Signal)
	assert.Equal([]gfx.CommandBuffer{"cmd"}, submit.CommandBuffers)

	present := backend.Device.Presents[1]
	assert.Equal([]gfx.Semaphore{frames[1].Sync.RenderComplete}, present.Wait)
	assert.Equal(1, present.ImageIndex)

	assert.Equal([]string{"wait fence", "acquire", "reset fence", "submit", "present"}, backend.Log.Calls[start:start+5])
}

func TestResize_ZeroExtentThenValid(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})
	defer r.Close()

	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{}
	r.NeedsResizing()

	for i := 0; i < 3; i++ {
		rebuilt, err := r.Resize()
		assert.NoError(err)
		assert.False(rebuilt)

		pending, err := r.Render()
		assert.NoError(err)
		assert.True(pending)
	}
	assert.Equal(1, backend.Device.SwapchainsCreated)
	assert.Equal(0, backend.Log.Count("destroy swapchain"))
	assert.Len(backend.Device.Presents, 3, "the previous chain keeps presenting")

	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{Width: 800, Height: 600}
	rebuilt, err := r.Resize()
	assert.NoError(err)
	assert.True(rebuilt)
	assert.False(r.ResizePending())

	pending, err := r.Render()
	assert.NoError(err)
	assert.False(pending)

	assert.Equal(2, backend.Device.SwapchainsCreated)
	assert.Equal(1, r.Rebuilds())
	assert.Equal(gfx.Extent2D{Width: 800, Height: 600}, r.Swapchain().Extent())
	assert.Equal(1, backend.Device.Live["swapchain"])
	assert.Equal(3, backend.Device.Live["view"])
}

func TestResize_WaitsIdleBeforeDestroying(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})
	defer r.Close()

	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{Width: 1024, Height: 768}
	start := len(backend.Log.Calls)
	rebuilt, err := r.Resize()
	require.NoError(t, err)
	assert.True(rebuilt)

	assert.Equal([]string{
		"wait idle",
		"destroy swapchain",
		"create swapchain 1024x768",
	}, backend.Log.Calls[start:])
}

func TestResize_RetryAfterFailedRebuild(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})

	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{Width: 800, Height: 600}
	backend.Device.SwapchainErr = gfxtest.ErrDeviceLost
	r.NeedsResizing()

	rebuilt, err := r.Resize()
	assert.True(errors.Is(err, gfx.ErrSwapchainCreate))
	assert.False(rebuilt)
	assert.Nil(r.Swapchain())
	assert.True(r.ResizePending())
	assert.Zero(backend.Device.Live["swapchain"])
	assert.Zero(backend.Device.Live["view"])

	pending, err := r.Render()
	assert.True(errors.Is(err, gfx.ErrSwapchainCreate))
	assert.True(pending)

	backend.Device.SwapchainErr = nil
	pending, err = r.Render()
	require.NoError(t, err)
	assert.False(pending)
	assert.Equal(1, r.Rebuilds())
	assert.Equal(gfx.Extent2D{Width: 800, Height: 600}, r.Swapchain().Extent())
	assert.Len(backend.Device.Presents, 1)

	require.NoError(t, r.Close())
	assert.Zero(backend.Device.LiveObjects())
}

func TestRender_OutOfDateAtAcquire(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})
	defer r.Close()

	backend.Device.AcquireErrs = []error{errors.WithStack(gfx.ErrNeedsRecreating)}
	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{Width: 1280, Height: 720}

	pending, err := r.Render()
	assert.NoError(err)
	assert.True(pending)
	assert.Empty(backend.Device.Submits)
	assert.Equal(0, backend.Log.Count("reset fence"), "fence stays signaled when acquire fails")

	pending, err = r.Render()
	assert.NoError(err)
	assert.False(pending)
	assert.Equal(1, r.Rebuilds())
	assert.Len(backend.Device.Presents, 1)
}

func TestRender_SuboptimalAtPresent(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})
	defer r.Close()

	backend.Device.PresentErrs = []error{gfx.ErrNeedsRecreating}

	pending, err := r.Render()
	assert.NoError(err)
	assert.True(pending)
	assert.Equal(1, r.Swapchain().Slot())

	pending, err = r.Render()
	assert.NoError(err)
	assert.False(pending)
	assert.Equal(1, r.Rebuilds())
}

func TestRender_SuboptimalAtAcquire(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})
	defer r.Close()

	backend.Device.SuboptimalAcquires = 1
	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{}

	pending, err := r.Render()
	assert.NoError(err)
	assert.True(pending)
	require.Len(t, backend.Device.Submits, 1, "a suboptimal image is still rendered")
	assert.Len(backend.Device.Presents, 1)
	first := backend.Device.Submits[0].Wait[0]

	// The rebuild is deferred, so the old chain keeps cycling its slots.
	for i := 0; i < 2; i++ {
		pending, err = r.Render()
		assert.NoError(err)
		assert.True(pending)
	}
	require.Len(t, backend.Device.Submits, 3)
	assert.Same(first, backend.Device.Submits[2].Wait[0], "slot 0 semaphore was waited on before reuse")
	assert.Equal(0, r.Rebuilds())

	backend.Surface.Caps.CurrentExtent = gfx.Extent2D{Width: 800, Height: 600}
	pending, err = r.Render()
	assert.NoError(err)
	assert.False(pending)
	assert.Equal(1, r.Rebuilds())
}

func TestRender_DriverFailure(t *testing.T) {
	r, backend := newRenderer(t, renderer.Options{})
	defer r.Close()

	backend.Device.AcquireErrs = []error{gfxtest.ErrDeviceLost}

	_, err := r.Render()
	assert.True(t, errors.Is(err, gfx.ErrAcquire))
	assert.True(t, errors.Is(err, gfxtest.ErrDeviceLost))
}

func TestRender_RecorderFailure(t *testing.T) {
	assert := assert.New(t)
	boom := errors.New("boom")
	r, backend := newRenderer(t, renderer.Options{
		Recorder: renderer.RecorderFunc(func(renderer.Frame) ([]gfx.CommandBuffer, error) {
			return nil, boom
		}),
	})
	defer r.Close()

	_, err := r.Render()
	assert.True(errors.Is(err, boom))
	assert.Empty(backend.Device.Submits)
}

func TestNew_ImageViewFailureReleasesPartialChain(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()
	backend.Device.ViewErrAfter = 2

	_, err := renderer.New(backend.Loader, backend.Window, renderer.Options{})
	assert.True(errors.Is(err, gfx.ErrImageViewCreate))
	assert.Zero(backend.Device.LiveObjects())
	assert.True(backend.Device.Destroyed)
	assert.True(backend.Instance.Destroyed)
}

func TestNew_SwapchainFailure(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Device.SwapchainErr = gfxtest.ErrDeviceLost

	_, err := renderer.New(backend.Loader, backend.Window, renderer.Options{})
	assert.True(t, errors.Is(err, gfx.ErrSwapchainCreate))
	assert.True(t, backend.Instance.Destroyed)
}

func TestNew_MissingFeature(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Instance.Adapters[0].FeatureSet[gfx.FeatureRayTracingPipeline] = false

	_, err := renderer.New(backend.Loader, backend.Window, renderer.Options{})
	assert.True(t, errors.Is(err, gfx.ErrNoSuitableCandidate))
}

func TestClose_Order(t *testing.T) {
	assert := assert.New(t)
	r, backend := newRenderer(t, renderer.Options{})

	_, err := r.Render()
	require.NoError(t, err)

	start := len(backend.Log.Calls)
	require.NoError(t, r.Close())
	assert.Equal([]string{
		"wait idle",
		"destroy swapchain",
		"destroy device",
		"destroy surface",
		"destroy instance",
	}, backend.Log.Calls[start:])
	assert.Zero(backend.Device.LiveObjects())
	assert.NoError(r.Close())
}
