package vkdriver

import (
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_1"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/ext_memory_priority"

	"github.com/rayge/engine/renderer/gfx"
)

type adapter struct {
	instance *instance
	device   core1_0.PhysicalDevice

	props *gfx.AdapterProperties
	exts  map[string]struct{}
}

func (a *adapter) Properties() (gfx.AdapterProperties, error) {
	if a.props != nil {
		return *a.props, nil
	}

	props, err := a.instance.driver.GetPhysicalDeviceProperties(a.device)
	if err != nil {
		return gfx.AdapterProperties{}, err
	}
	converted := adapterProperties(props)
	a.props = &converted
	return converted, nil
}

func (a *adapter) Extensions() (map[string]struct{}, error) {
	if a.exts != nil {
		return a.exts, nil
	}

	extensions, _, err := a.instance.driver.EnumerateDeviceExtensionProperties(a.device)
	if err != nil {
		return nil, err
	}
	a.exts = keys(extensions)
	return a.exts, nil
}

// Features reports the supported features the renderer cares about.
// Features whose query structures the bindings do not expose are reported
// from extension presence, and the 1.3 features from the adapter version.
func (a *adapter) Features() (gfx.FeatureSet, error) {
	props, err := a.Properties()
	if err != nil {
		return nil, err
	}
	exts, err := a.Extensions()
	if err != nil {
		return nil, err
	}
	_, hasPriority := exts[gfx.ExtMemoryPriority]

	core := a.instance.driver.GetPhysicalDeviceFeatures(a.device)
	set := coreFeatures(core.SamplerAnisotropy, core.ShaderInt64)

	instance11, ok := a.instance.driver.(core1_1.CoreInstanceDriver)
	if ok && props.APIVersion >= gfx.APIVersion1_2 && a.instance.apiVersion >= gfx.APIVersion1_2 {
		var (
			v11      core1_2.PhysicalDeviceVulkan11Features
			v12      core1_2.PhysicalDeviceVulkan12Features
			priority ext_memory_priority.PhysicalDeviceMemoryPriorityFeatures
		)
		v11.Next = &v12
		if hasPriority {
			v12.Next = &priority
		}
		features := core1_1.PhysicalDeviceFeatures2{
			NextOutData: common.NextOutData{Next: &v11},
		}
		if err := instance11.GetPhysicalDeviceFeatures2(a.device, &features); err != nil {
			return nil, err
		}
		mergeFeatures(set, &v11, &v12, &priority)
	} else {
		set[gfx.FeatureMemoryPriority] = hasPriority
	}

	versionFeatures(set, props.APIVersion)
	inferFromExtensions(set, exts)
	return set, nil
}

func (a *adapter) QueueFamilies() []gfx.QueueFamilyProperties {
	families := a.instance.driver.GetPhysicalDeviceQueueFamilyProperties(a.device)

	out := make([]gfx.QueueFamilyProperties, len(families))
	for i, family := range families {
		out[i] = gfx.QueueFamilyProperties{
			Flags:      queueFlags(family.QueueFlags),
			QueueCount: uint32(family.QueueCount),
		}
	}
	return out
}

func (a *adapter) MemoryProperties() gfx.MemoryProperties {
	props := a.instance.driver.GetPhysicalDeviceMemoryProperties(a.device)

	var out gfx.MemoryProperties
	for _, t := range props.MemoryTypes {
		out.Types = append(out.Types, gfx.MemoryType{
			PropertyFlags: gfx.MemoryPropertyFlags(t.PropertyFlags),
			HeapIndex:     t.HeapIndex,
		})
	}
	for _, h := range props.MemoryHeaps {
		out.Heaps = append(out.Heaps, gfx.MemoryHeap{
			Size:        uint64(h.Size),
			DeviceLocal: h.Flags&core1_0.MemoryHeapDeviceLocal != 0,
		})
	}
	return out
}
