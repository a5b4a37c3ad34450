package gfx

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by this package and by the renderer
// matches one of these with errors.Is.
var (
	ErrEntryPointLoad      = errors.New("failed to load Vulkan entry point")
	ErrInstanceCreate      = errors.New("failed to create instance")
	ErrNoSuitableCandidate = errors.New("no suitable physical device found")
	ErrDeviceCreate        = errors.New("failed to create device")
	ErrAllocatorCreate     = errors.New("failed to create allocator")
	ErrSurfaceCreate       = errors.New("failed to create surface")
	ErrUnsupportedPlatform = errors.New("unsupported windowing platform")
	ErrSwapchainCreate     = errors.New("failed to create swapchain")
	ErrImageViewCreate     = errors.New("failed to create image view")
	ErrSyncCreate          = errors.New("failed to create synchronization object")
	ErrAcquire             = errors.New("failed to acquire next image")
	ErrSubmit              = errors.New("failed to submit to queue")
	ErrPresent             = errors.New("failed to present image")
	ErrNeedsRecreating     = errors.New("swapchain needs recreating")
	ErrDeviceIdleWait      = errors.New("failed to wait for device idle")
)

// fail attaches kind to err and prefixes it with msg. Errors that already
// carry ErrNeedsRecreating pass through untouched so callers can react.
func fail(err error, kind error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNeedsRecreating) {
		return err
	}
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}

// QueueRole names what a queue family is used for.
type QueueRole string

const (
	RoleGraphics QueueRole = "graphics"
	RoleCompute  QueueRole = "compute"
	RoleTransfer QueueRole = "transfer"
)

// UnassignedQueueError reports the roles no queue family could serve.
type UnassignedQueueError struct {
	Roles []QueueRole
}

func (e *UnassignedQueueError) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = string(r)
	}
	return fmt.Sprintf("failed to create %s queue", strings.Join(names, ", "))
}

// MissingError lists the names a candidate lacks.
type MissingError struct {
	What  string
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing %s: %s", e.What, strings.Join(e.Names, ", "))
}
