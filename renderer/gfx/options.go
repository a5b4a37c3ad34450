package gfx

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	DefaultApplicationName = "RAYGE Renderer"
	DefaultEngineName      = "RAYGE"

	// DefaultImageCount asks for triple buffering.
	DefaultImageCount = 3
)

// Options configures context construction.
type Options struct {
	Logger          logrus.FieldLogger
	ApplicationName string
	Requirements    Requirements

	// Validation enables the Khronos validation layer and routes its
	// messages to Logger.
	Validation bool
	// ExactFormat rejects surfaces that lack the preferred format instead of
	// falling back to the first reported one.
	ExactFormat         bool
	PreferredImageCount uint32
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.ApplicationName == "" {
		o.ApplicationName = DefaultApplicationName
	}
	if o.Requirements.APIVersion == 0 {
		o.Requirements = DefaultRequirements()
	}
	if o.PreferredImageCount == 0 {
		o.PreferredImageCount = DefaultImageCount
	}
	return o
}
