package vkdriver

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/ext_memory_priority"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/rayge/engine/renderer/gfx"
)

func keys[V any](m map[string]V) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func debugSeverity(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) gfx.DebugSeverity {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return gfx.DebugError
	case severity&ext_debug_utils.SeverityWarning != 0:
		return gfx.DebugWarning
	case severity&ext_debug_utils.SeverityInfo != 0:
		return gfx.DebugInfo
	}
	return gfx.DebugVerbose
}

func adapterProperties(props *core1_0.PhysicalDeviceProperties) gfx.AdapterProperties {
	return gfx.AdapterProperties{
		Name:          props.DeviceName,
		Type:          gfx.AdapterType(props.DriverType),
		APIVersion:    gfx.Version(props.APIVersion),
		DriverVersion: uint32(props.DriverVersion),
		VendorID:      uint32(props.VendorID),
		DeviceID:      uint32(props.DeviceID),
		Limits: gfx.Limits{
			MaxImageDimension2D:  uint32(props.Limits.MaxImageDimension2D),
			MaxSamplerAnisotropy: props.Limits.MaxSamplerAnisotropy,
		},
	}
}

func coreFeatures(samplerAnisotropy, shaderInt64 bool) gfx.FeatureSet {
	return gfx.FeatureSet{
		gfx.FeatureSamplerAnisotropy: samplerAnisotropy,
		gfx.FeatureShaderInt64:       shaderInt64,
	}
}

// mergeFeatures copies the bits a Features2 query filled in. priority is nil
// when the query did not chain the memory priority struct.
func mergeFeatures(set gfx.FeatureSet, v11 *core1_2.PhysicalDeviceVulkan11Features, v12 *core1_2.PhysicalDeviceVulkan12Features, priority *ext_memory_priority.PhysicalDeviceMemoryPriorityFeatures) {
	set[gfx.FeatureStorageBuffer16BitAccess] = v11.StorageBuffer16BitAccess
	set[gfx.FeatureUniformAndStorageBuffer16BitAccess] = v11.UniformAndStorageBuffer16BitAccess

	set[gfx.FeatureUniformAndStorageBuffer8BitAccess] = v12.UniformAndStorageBuffer8BitAccess
	set[gfx.FeatureDescriptorIndexing] = v12.DescriptorIndexing
	set[gfx.FeatureDescriptorBindingPartiallyBound] = v12.DescriptorBindingPartiallyBound
	set[gfx.FeatureDescriptorBindingVariableDescriptorCount] = v12.DescriptorBindingVariableDescriptorCount
	set[gfx.FeatureRuntimeDescriptorArray] = v12.RuntimeDescriptorArray
	set[gfx.FeatureScalarBlockLayout] = v12.ScalarBlockLayout
	set[gfx.FeatureBufferDeviceAddress] = v12.BufferDeviceAddress
	set[gfx.FeatureVulkanMemoryModel] = v12.VulkanMemoryModel

	set[gfx.FeatureMemoryPriority] = priority != nil && priority.MemoryPriority
}

// versionFeatures marks the core 1.3 features. The bindings have no 1.3
// feature structs, so a 1.3 adapter is taken to support them.
func versionFeatures(set gfx.FeatureSet, apiVersion gfx.Version) {
	set[gfx.FeatureDynamicRendering] = apiVersion >= gfx.APIVersion1_3
	set[gfx.FeatureSynchronization2] = apiVersion >= gfx.APIVersion1_3
}

// extensionFeatures maps features to the extension that provides them.
var extensionFeatures = map[gfx.Feature]string{
	gfx.FeatureAccelerationStructure:     gfx.ExtAccelerationStructure,
	gfx.FeatureRayTracingPipeline:        gfx.ExtRayTracingPipeline,
	gfx.FeaturePageableDeviceLocalMemory: gfx.ExtPageableDeviceLocalMemory,
}

func inferFromExtensions(set gfx.FeatureSet, exts map[string]struct{}) {
	for feature, ext := range extensionFeatures {
		_, ok := exts[ext]
		set[feature] = ok
	}
}

func surfaceCapabilities(caps *khr_surface.SurfaceCapabilities) gfx.SurfaceCapabilities {
	return gfx.SurfaceCapabilities{
		MinImageCount:  uint32(caps.MinImageCount),
		MaxImageCount:  uint32(caps.MaxImageCount),
		CurrentExtent:  fromExtent(caps.CurrentExtent.Width, caps.CurrentExtent.Height),
		MinImageExtent: fromExtent(caps.MinImageExtent.Width, caps.MinImageExtent.Height),
		MaxImageExtent: fromExtent(caps.MaxImageExtent.Width, caps.MaxImageExtent.Height),
	}
}

// fromExtent converts a driver extent. The bindings report the special
// 0xFFFFFFFF width as -1.
func fromExtent(width, height int) gfx.Extent2D {
	if width < 0 {
		return gfx.Extent2D{Width: gfx.UndefinedExtent, Height: gfx.UndefinedExtent}
	}
	return gfx.Extent2D{Width: uint32(width), Height: uint32(max(height, 0))}
}

func extent(e gfx.Extent2D) core1_0.Extent2D {
	return core1_0.Extent2D{Width: int(e.Width), Height: int(e.Height)}
}

func queueFlags(flags core1_0.QueueFlags) gfx.QueueFlags {
	return gfx.QueueFlags(flags)
}
