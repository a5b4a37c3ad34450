package gfx

import "slices"

// Feature names a device feature bit. Names follow the Vulkan struct member
// they map to.
type Feature string

const (
	FeatureSamplerAnisotropy Feature = "samplerAnisotropy"
	FeatureShaderInt64       Feature = "shaderInt64"

	FeatureStorageBuffer16BitAccess           Feature = "storageBuffer16BitAccess"
	FeatureUniformAndStorageBuffer16BitAccess Feature = "uniformAndStorageBuffer16BitAccess"

	FeatureBufferDeviceAddress                      Feature = "bufferDeviceAddress"
	FeatureDescriptorBindingPartiallyBound          Feature = "descriptorBindingPartiallyBound"
	FeatureDescriptorBindingVariableDescriptorCount Feature = "descriptorBindingVariableDescriptorCount"
	FeatureDescriptorIndexing                       Feature = "descriptorIndexing"
	FeatureRuntimeDescriptorArray                   Feature = "runtimeDescriptorArray"
	FeatureScalarBlockLayout                        Feature = "scalarBlockLayout"
	FeatureUniformAndStorageBuffer8BitAccess        Feature = "uniformAndStorageBuffer8BitAccess"
	FeatureVulkanMemoryModel                        Feature = "vulkanMemoryModel"

	FeatureDynamicRendering Feature = "dynamicRendering"
	FeatureSynchronization2 Feature = "synchronization2"

	FeatureAccelerationStructure     Feature = "accelerationStructure"
	FeatureRayTracingPipeline        Feature = "rayTracingPipeline"
	FeatureMemoryPriority            Feature = "memoryPriority"
	FeaturePageableDeviceLocalMemory Feature = "pageableDeviceLocalMemory"
)

// FeatureSet holds the features an adapter reports as supported.
type FeatureSet map[Feature]bool

// Missing returns the required features absent from the set, in order.
func (s FeatureSet) Missing(required []Feature) []Feature {
	var missing []Feature
	for _, f := range required {
		if !s[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

func missingNames(available map[string]struct{}, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Extension names used by the default requirements.
const (
	ExtSurface                   = "VK_KHR_surface"
	ExtPortabilityEnumeration    = "VK_KHR_portability_enumeration"
	ExtDebugUtils                = "VK_EXT_debug_utils"
	ExtSwapchain                 = "VK_KHR_swapchain"
	ExtAccelerationStructure     = "VK_KHR_acceleration_structure"
	ExtRayTracingPipeline        = "VK_KHR_ray_tracing_pipeline"
	ExtDeferredHostOperations    = "VK_KHR_deferred_host_operations"
	ExtMemoryPriority            = "VK_EXT_memory_priority"
	ExtPageableDeviceLocalMemory = "VK_EXT_pageable_device_local_memory"
	ExtPortabilitySubset         = "VK_KHR_portability_subset"

	LayerValidation = "VK_LAYER_KHRONOS_validation"
)

// Requirements is the contract a driver and adapter must satisfy.
type Requirements struct {
	APIVersion         Version
	InstanceExtensions []string
	DeviceExtensions   []string
	Features           []Feature
}

// DefaultRequirements returns the contract the ray tracing renderer is
// written against.
func DefaultRequirements() Requirements {
	return Requirements{
		APIVersion:         APIVersion1_3,
		InstanceExtensions: []string{ExtSurface},
		DeviceExtensions: []string{
			ExtSwapchain,
			ExtAccelerationStructure,
			ExtRayTracingPipeline,
			ExtDeferredHostOperations,
			ExtMemoryPriority,
			ExtPageableDeviceLocalMemory,
		},
		Features: []Feature{
			FeatureSamplerAnisotropy,
			FeatureShaderInt64,

			FeatureStorageBuffer16BitAccess,
			FeatureUniformAndStorageBuffer16BitAccess,

			FeatureBufferDeviceAddress,
			FeatureDescriptorBindingPartiallyBound,
			FeatureDescriptorBindingVariableDescriptorCount,
			FeatureDescriptorIndexing,
			FeatureRuntimeDescriptorArray,
			FeatureScalarBlockLayout,
			FeatureUniformAndStorageBuffer8BitAccess,
			FeatureVulkanMemoryModel,

			FeatureDynamicRendering,
			FeatureSynchronization2,

			FeatureAccelerationStructure,
			FeatureRayTracingPipeline,
			FeatureMemoryPriority,
			FeaturePageableDeviceLocalMemory,
		},
	}
}

func (r Requirements) hasDeviceExtension(name string) bool {
	return slices.Contains(r.DeviceExtensions, name)
}
