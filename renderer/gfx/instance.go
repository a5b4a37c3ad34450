package gfx

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Instance owns the driver instance and remembers what it was created with.
type Instance struct {
	log    logrus.FieldLogger
	driver InstanceDriver

	apiVersion Version
	extensions []string
	layers     []string
}

// NewInstance loads the driver entry point and creates an instance with the
// extensions required by reqs and by the window system.
func NewInstance(loader Loader, window Window, opts Options) (*Instance, error) {
	opts = opts.withDefaults()
	reqs := opts.Requirements

	entry, err := loader.Load()
	if err != nil {
		return nil, fail(err, ErrEntryPointLoad, "load")
	}

	info := InstanceCreateInfo{
		ApplicationName: opts.ApplicationName,
		EngineName:      DefaultEngineName,
		APIVersion:      reqs.APIVersion,
	}

	windowExtensions, err := window.InstanceExtensions()
	if err != nil {
		return nil, fail(err, ErrInstanceCreate, "window extensions")
	}

	available, err := entry.InstanceExtensions()
	if err != nil {
		return nil, fail(err, ErrInstanceCreate, "enumerate extensions")
	}

	for _, ext := range append(append([]string(nil), reqs.InstanceExtensions...), windowExtensions...) {
		info.Extensions = appendUnique(info.Extensions, ext)
	}
	if missing := missingNames(available, info.Extensions); len(missing) > 0 {
		return nil, errors.Mark(&MissingError{What: "instance extensions", Names: missing}, ErrInstanceCreate)
	}

	if _, ok := available[ExtPortabilityEnumeration]; ok {
		info.Extensions = appendUnique(info.Extensions, ExtPortabilityEnumeration)
		info.EnumeratePortability = true
	}

	if opts.Validation {
		layers, err := entry.InstanceLayers()
		if err != nil {
			return nil, fail(err, ErrInstanceCreate, "enumerate layers")
		}
		if _, ok := layers[LayerValidation]; !ok {
			return nil, errors.Mark(&MissingError{What: "layers", Names: []string{LayerValidation}}, ErrInstanceCreate)
		}
		info.Layers = append(info.Layers, LayerValidation)
		info.Extensions = appendUnique(info.Extensions, ExtDebugUtils)
		info.Debug = debugLogger(opts.Logger)
	}

	driver, err := entry.CreateInstance(info)
	if err != nil {
		return nil, fail(err, ErrInstanceCreate, "create")
	}

	opts.Logger.WithFields(logrus.Fields{
		"api":        reqs.APIVersion,
		"extensions": info.Extensions,
		"layers":     info.Layers,
	}).Debug("instance created")

	return &Instance{
		log:        opts.Logger,
		driver:     driver,
		apiVersion: reqs.APIVersion,
		extensions: info.Extensions,
		layers:     info.Layers,
	}, nil
}

func debugLogger(log logrus.FieldLogger) DebugCallback {
	entry := log.WithField("source", "validation")
	return func(severity DebugSeverity, message string) {
		switch severity {
		case DebugError:
			entry.Error(message)
		case DebugWarning:
			entry.Warn(message)
		case DebugInfo:
			entry.Debug(message)
		default:
			entry.Trace(message)
		}
	}
}

func appendUnique(list []string, name string) []string {
	if slices.Contains(list, name) {
		return list
	}
	return append(list, name)
}

// Driver returns the underlying instance driver.
func (i *Instance) Driver() InstanceDriver { return i.driver }

// APIVersion returns the version the instance was created against.
func (i *Instance) APIVersion() Version { return i.apiVersion }

// Extensions returns the enabled instance extensions.
func (i *Instance) Extensions() []string { return i.extensions }

// Release destroys the instance. Every child object must already be gone.
func (i *Instance) Release() {
	if i == nil || i.driver == nil {
		return
	}
	i.driver.Destroy()
	i.driver = nil
}
