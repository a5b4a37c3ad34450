package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/rayge/engine/renderer/gfx"
)

type entry struct {
	driver core1_0.GlobalDriver
}

func (e *entry) InstanceExtensions() (map[string]struct{}, error) {
	extensions, _, err := e.driver.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	return keys(extensions), nil
}

func (e *entry) InstanceLayers() (map[string]struct{}, error) {
	layers, _, err := e.driver.AvailableLayers()
	if err != nil {
		return nil, err
	}
	return keys(layers), nil
}

func (e *entry) CreateInstance(info gfx.InstanceCreateInfo) (gfx.InstanceDriver, error) {
	createInfo := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            info.EngineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.APIVersion(info.APIVersion),
		EnabledExtensionNames: info.Extensions,
		EnabledLayerNames:     info.Layers,
	}
	if info.EnumeratePortability {
		createInfo.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}
	if info.Debug != nil {
		// Chained so instance creation and destruction are covered too.
		createInfo.Next = messengerCreateInfo(info.Debug)
	}

	driver, _, err := e.driver.CreateInstance(nil, createInfo)
	if err != nil {
		return nil, err
	}

	i := &instance{
		driver:     driver,
		apiVersion: info.APIVersion,
		surfaceExt: khr_surface.CreateExtensionDriverFromCoreDriver(driver),
	}
	if info.Debug != nil {
		i.debug = ext_debug_utils.CreateExtensionDriverFromCoreDriver(driver)
		i.messenger, _, err = i.debug.CreateDebugUtilsMessenger(nil, messengerCreateInfo(info.Debug))
		if err != nil {
			driver.DestroyInstance(nil)
			return nil, errors.Wrap(err, "debug messenger")
		}
		i.hasMessenger = true
	}
	return i, nil
}

func messengerCreateInfo(cb gfx.DebugCallback) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityInfo,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(_ ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			cb(debugSeverity(severity), data.Message)
			return false
		},
	}
}
