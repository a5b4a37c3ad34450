//go:build vkdebug

package vkdriver

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// SetDebugName labels object through VK_EXT_debug_utils. It needs the
// validation messenger, since that is what loads the extension.
func (d *device) SetDebugName(object any, name string) error {
	if d.debug == nil {
		return nil
	}

	var objectType core1_0.ObjectType
	switch object.(type) {
	case core1_0.Semaphore:
		objectType = core1_0.ObjectTypeSemaphore
	case core1_0.Fence:
		objectType = core1_0.ObjectTypeFence
	case core1_0.Image:
		objectType = core1_0.ObjectTypeImage
	case core1_0.ImageView:
		objectType = core1_0.ObjectTypeImageView
	case core1_0.DeviceMemory:
		objectType = core1_0.ObjectTypeDeviceMemory
	case khr_swapchain.Swapchain:
		objectType = khr_swapchain.ObjectTypeSwapchain
	default:
		return errors.Newf("cannot name %T", object)
	}

	// Every handle type exposes its raw handle through Handle().
	handle := reflect.ValueOf(object).MethodByName("Handle").Call(nil)[0]
	_, err := d.debug.SetDebugUtilsObjectName(d.driver.Device(), ext_debug_utils.DebugUtilsObjectNameInfo{
		ObjectType:   objectType,
		ObjectHandle: uintptr(handle.Pointer()),
		ObjectName:   name,
	})
	return err
}
