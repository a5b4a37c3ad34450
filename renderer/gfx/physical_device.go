package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// PhysicalDevice is the selected adapter with its properties cached.
type PhysicalDevice struct {
	adapter    Adapter
	properties AdapterProperties
	memory     MemoryProperties
	extensions map[string]struct{}
	features   FeatureSet
}

func (p *PhysicalDevice) Adapter() Adapter                   { return p.adapter }
func (p *PhysicalDevice) Properties() AdapterProperties      { return p.properties }
func (p *PhysicalDevice) MemoryProperties() MemoryProperties { return p.memory }

// HasExtension reports whether the adapter advertises the device extension.
func (p *PhysicalDevice) HasExtension(name string) bool {
	_, ok := p.extensions[name]
	return ok
}

// SelectPhysicalDevice returns the first adapter, in driver order, that has
// every required extension and feature and can present to surface.
func SelectPhysicalDevice(instance *Instance, surface *SurfaceHandle, reqs Requirements, log logrus.FieldLogger) (*PhysicalDevice, SurfaceConfig, error) {
	adapters, err := instance.Driver().EnumerateAdapters()
	if err != nil {
		return nil, SurfaceConfig{}, errors.Wrap(err, "enumerate adapters")
	}

	for idx, adapter := range adapters {
		props, err := adapter.Properties()
		if err != nil {
			return nil, SurfaceConfig{}, errors.Wrapf(err, "adapter %d properties", idx)
		}
		alog := log.WithFields(logrus.Fields{"adapter": props.Name, "type": props.Type})

		extensions, err := adapter.Extensions()
		if err != nil {
			return nil, SurfaceConfig{}, errors.Wrapf(err, "adapter %q extensions", props.Name)
		}
		if missing := missingNames(extensions, reqs.DeviceExtensions); len(missing) > 0 {
			alog.WithField("missing", missing).Debug("adapter rejected: extensions")
			continue
		}

		features, err := adapter.Features()
		if err != nil {
			return nil, SurfaceConfig{}, errors.Wrapf(err, "adapter %q features", props.Name)
		}
		if missing := features.Missing(reqs.Features); len(missing) > 0 {
			alog.WithField("missing", missing).Debug("adapter rejected: features")
			continue
		}

		config, ok, err := surface.Config(adapter)
		if err != nil {
			return nil, SurfaceConfig{}, errors.Wrapf(err, "adapter %q surface", props.Name)
		}
		if !ok {
			alog.Debug("adapter rejected: no usable surface configuration")
			continue
		}

		alog.WithFields(logrus.Fields{
			"format":      config.Format.Format,
			"presentMode": config.PresentMode,
			"extent":      config.Extent,
			"images":      config.ImageCount,
		}).Info("adapter selected")

		return &PhysicalDevice{
			adapter:    adapter,
			properties: props,
			memory:     adapter.MemoryProperties(),
			extensions: extensions,
			features:   features,
		}, config, nil
	}

	return nil, SurfaceConfig{}, errors.WithStack(ErrNoSuitableCandidate)
}
