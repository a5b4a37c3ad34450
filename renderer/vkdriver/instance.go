package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/ext_memory_priority"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/rayge/engine/renderer/gfx"
)

type instance struct {
	driver     core1_0.CoreInstanceDriver
	apiVersion gfx.Version
	surfaceExt khr_surface.ExtensionDriver

	debug        ext_debug_utils.ExtensionDriver
	messenger    ext_debug_utils.DebugUtilsMessenger
	hasMessenger bool
}

func (i *instance) EnumerateAdapters() ([]gfx.Adapter, error) {
	devices, _, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	adapters := make([]gfx.Adapter, 0, len(devices))
	for _, pd := range devices {
		adapters = append(adapters, &adapter{instance: i, device: pd})
	}
	return adapters, nil
}

func (i *instance) CreateSurface(window gfx.Window) (gfx.SurfaceDriver, error) {
	w, ok := window.(Window)
	if !ok || w.Window == nil {
		return nil, errors.Wrapf(gfx.ErrUnsupportedPlatform, "%T", window)
	}
	if w.GetFlags()&sdl.WINDOW_VULKAN == 0 {
		return nil, errors.Wrap(gfx.ErrUnsupportedPlatform, "window was not created with SDL_WINDOW_VULKAN")
	}

	handle, err := vkng_sdl2.CreateSurface(i.driver.Instance(), i.surfaceExt, w.Window)
	if err != nil {
		return nil, err
	}
	return &surface{ext: i.surfaceExt, handle: handle}, nil
}

func (i *instance) CreateDevice(a gfx.Adapter, info gfx.DeviceCreateInfo) (gfx.DeviceDriver, error) {
	pd := a.(*adapter)

	createInfo := core1_0.DeviceCreateInfo{
		EnabledExtensionNames: info.Extensions,
	}
	for _, q := range info.Queues {
		createInfo.QueueCreateInfos = append(createInfo.QueueCreateInfos, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: q.Family,
			QueuePriorities:  q.Priorities,
		})
	}

	enabled := gfx.FeatureSet{}
	for _, f := range info.Features {
		enabled[f] = true
	}
	createInfo.EnabledFeatures = &core1_0.PhysicalDeviceFeatures{
		SamplerAnisotropy: enabled[gfx.FeatureSamplerAnisotropy],
		ShaderInt64:       enabled[gfx.FeatureShaderInt64],
	}

	props, err := pd.Properties()
	if err != nil {
		return nil, err
	}
	if props.APIVersion >= gfx.APIVersion1_2 {
		v12 := vulkan12Features(enabled)
		if enabled[gfx.FeatureMemoryPriority] {
			v12.Next = ext_memory_priority.PhysicalDeviceMemoryPriorityFeatures{MemoryPriority: true}
		}
		v11 := vulkan11Features(enabled)
		v11.Next = v12
		createInfo.Next = v11
	} else if enabled[gfx.FeatureMemoryPriority] {
		createInfo.Next = ext_memory_priority.PhysicalDeviceMemoryPriorityFeatures{MemoryPriority: true}
	}

	driver, _, err := i.driver.CreateDevice(pd.device, nil, createInfo)
	if err != nil {
		return nil, err
	}

	return &device{
		driver:     driver,
		physical:   pd.device,
		swapchain:  khr_swapchain.CreateExtensionDriverFromCoreDriver(driver),
		surfaceExt: i.surfaceExt,
		debug:      i.debug,
	}, nil
}

func (i *instance) Destroy() {
	if i.hasMessenger {
		i.debug.DestroyDebugUtilsMessenger(i.messenger, nil)
		i.hasMessenger = false
	}
	i.driver.DestroyInstance(nil)
}

func vulkan11Features(enabled gfx.FeatureSet) core1_2.PhysicalDeviceVulkan11Features {
	return core1_2.PhysicalDeviceVulkan11Features{
		StorageBuffer16BitAccess:           enabled[gfx.FeatureStorageBuffer16BitAccess],
		UniformAndStorageBuffer16BitAccess: enabled[gfx.FeatureUniformAndStorageBuffer16BitAccess],
	}
}

func vulkan12Features(enabled gfx.FeatureSet) core1_2.PhysicalDeviceVulkan12Features {
	return core1_2.PhysicalDeviceVulkan12Features{
		UniformAndStorageBuffer8BitAccess:        enabled[gfx.FeatureUniformAndStorageBuffer8BitAccess],
		DescriptorIndexing:                       enabled[gfx.FeatureDescriptorIndexing],
		DescriptorBindingPartiallyBound:          enabled[gfx.FeatureDescriptorBindingPartiallyBound],
		DescriptorBindingVariableDescriptorCount: enabled[gfx.FeatureDescriptorBindingVariableDescriptorCount],
		RuntimeDescriptorArray:                   enabled[gfx.FeatureRuntimeDescriptorArray],
		ScalarBlockLayout:                        enabled[gfx.FeatureScalarBlockLayout],
		BufferDeviceAddress:                      enabled[gfx.FeatureBufferDeviceAddress],
		VulkanMemoryModel:                        enabled[gfx.FeatureVulkanMemoryModel],
	}
}
