package gfx_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayge/engine/renderer/gfx"
	"github.com/rayge/engine/renderer/gfx/gfxtest"
)

func TestNewContext(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()

	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	require.NoError(t, err)

	config := ctx.Surface().Config()
	assert.Equal(gfx.Extent2D{Width: 640, Height: 480}, config.Extent)
	assert.Equal(gfx.FormatB8G8R8A8SRGB, config.Format.Format)
	assert.Equal(gfx.PresentModeFIFO, config.PresentMode)
	assert.Equal(uint32(3), config.ImageCount)
	assert.Equal("fake discrete", ctx.PhysicalDevice().Properties().Name)

	assert.Equal(gfx.DefaultApplicationName, backend.Entry.Info.ApplicationName)
	assert.Equal(gfx.APIVersion1_3, backend.Entry.Info.APIVersion)
	assert.True(backend.Entry.Info.EnumeratePortability)
	assert.Contains(backend.Entry.Info.Extensions, gfx.ExtPortabilityEnumeration)
	assert.Contains(backend.Entry.Info.Extensions, "VK_KHR_xlib_surface")
	assert.Empty(backend.Entry.Info.Layers)
	assert.Nil(backend.Entry.Info.Debug)

	info := backend.Instance.DeviceInfo
	assert.Len(info.Queues, 3)
	assert.ElementsMatch(gfx.DefaultRequirements().DeviceExtensions, info.Extensions)
	assert.Equal(gfx.DefaultRequirements().Features, info.Features)
	assert.Equal(gfx.QueueFamilies{Graphics: 0, Compute: 2, Transfer: 1}, ctx.Device().QueueFamilies())

	ctx.Close()
	assert.Equal([]string{
		"create instance",
		"create surface",
		"create device fake discrete",
		"destroy device",
		"destroy surface",
		"destroy instance",
	}, backend.Log.Calls)
}

func TestNewContext_FirstFit(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()

	noExt := gfxtest.NewAdapter("no ray tracing")
	delete(noExt.Exts, gfx.ExtRayTracingPipeline)
	noFeature := gfxtest.NewAdapter("no memory model")
	noFeature.FeatureSet[gfx.FeatureVulkanMemoryModel] = false
	backend.Instance.Adapters = []*gfxtest.Adapter{noExt, noFeature, gfxtest.NewAdapter("first"), gfxtest.NewAdapter("second")}

	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal("first", ctx.PhysicalDevice().Properties().Name)
}

func TestNewContext_NoSuitableCandidate(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()
	backend.Instance.Adapters[0].FeatureSet[gfx.FeatureSynchronization2] = false

	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.Nil(ctx)
	assert.True(errors.Is(err, gfx.ErrNoSuitableCandidate))
	assert.Contains(err.Error(), "physical device")

	assert.True(backend.Surface.Destroyed)
	assert.True(backend.Instance.Destroyed)
}

func TestNewContext_ExactFormatRejectsAdapter(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Surface.FormatList = backend.Surface.FormatList[:1]

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{ExactFormat: true})
	assert.True(t, errors.Is(err, gfx.ErrNoSuitableCandidate))
}

func TestNewContext_NoPresentModes(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Surface.ModeList = nil

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(t, errors.Is(err, gfx.ErrNoSuitableCandidate))
}

func TestNewContext_EntryPointLoad(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Loader.LoadErr = errors.New("libvulkan.so.1: cannot open shared object file")

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(t, errors.Is(err, gfx.ErrEntryPointLoad))
}

func TestNewContext_MissingInstanceExtension(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()
	backend.Window.Extensions = append(backend.Window.Extensions, "VK_KHR_wayland_surface")

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(errors.Is(err, gfx.ErrInstanceCreate))

	var missing *gfx.MissingError
	if assert.True(errors.As(err, &missing)) {
		assert.Equal([]string{"VK_KHR_wayland_surface"}, missing.Names)
	}
}

func TestNewContext_Validation(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()

	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{Validation: true})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal([]string{gfx.LayerValidation}, backend.Entry.Info.Layers)
	assert.Contains(backend.Entry.Info.Extensions, gfx.ExtDebugUtils)
	assert.NotNil(backend.Entry.Info.Debug)
	backend.Entry.Info.Debug(gfx.DebugWarning, "vkCreateDevice: something odd")
}

func TestNewContext_MissingValidationLayer(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Entry.Layers = nil

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{Validation: true})
	assert.True(t, errors.Is(err, gfx.ErrInstanceCreate))
}

func TestNewContext_UnsupportedPlatform(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()
	backend.Instance.SurfaceErr = errors.WithStack(gfx.ErrUnsupportedPlatform)

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(errors.Is(err, gfx.ErrUnsupportedPlatform))
	assert.False(errors.Is(err, gfx.ErrSurfaceCreate))
	assert.True(backend.Instance.Destroyed)
}

func TestNewContext_SurfaceCreate(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Instance.SurfaceErr = gfxtest.ErrDeviceLost

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(t, errors.Is(err, gfx.ErrSurfaceCreate))
}

func TestNewContext_UnassignedQueue(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()
	backend.Instance.Adapters[0].Families = []gfx.QueueFamilyProperties{
		{Flags: gfx.QueueGraphics | gfx.QueueCompute | gfx.QueueTransfer, QueueCount: 1},
	}

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(errors.Is(err, gfx.ErrDeviceCreate))

	var unassigned *gfx.UnassignedQueueError
	if assert.True(errors.As(err, &unassigned)) {
		assert.Equal([]gfx.QueueRole{gfx.RoleCompute, gfx.RoleTransfer}, unassigned.Roles)
	}
	assert.True(backend.Surface.Destroyed)
	assert.True(backend.Instance.Destroyed)
}

func TestNewContext_DeviceCreate(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Instance.DeviceErr = gfxtest.ErrDeviceLost

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(t, errors.Is(err, gfx.ErrDeviceCreate))
	assert.True(t, errors.Is(err, gfxtest.ErrDeviceLost))
}

func TestNewContext_AllocatorNeedsAPIVersion(t *testing.T) {
	assert := assert.New(t)
	backend := gfxtest.NewBackend()
	backend.Instance.Adapters[0].Props.APIVersion = gfx.APIVersion1_1

	_, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	assert.True(errors.Is(err, gfx.ErrAllocatorCreate))
	assert.True(backend.Device.Destroyed)
}

func TestNewContext_PortabilitySubset(t *testing.T) {
	backend := gfxtest.NewBackend()
	backend.Instance.Adapters[0].Exts[gfx.ExtPortabilitySubset] = struct{}{}

	ctx, err := gfx.NewContext(backend.Loader, backend.Window, gfx.Options{})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Contains(t, backend.Instance.DeviceInfo.Extensions, gfx.ExtPortabilitySubset)
}
