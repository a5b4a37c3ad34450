package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Queues holds one queue per role. Roles may share a family.
type Queues struct {
	Graphics Queue
	Compute  Queue
	Transfer Queue
}

// Device is the logical device with its queues and allocator.
type Device struct {
	log       logrus.FieldLogger
	driver    DeviceDriver
	allocator *Allocator

	families   QueueFamilies
	queues     Queues
	extensions []string
}

// NewDevice assigns queue families for physical and creates a logical device
// with the extensions and features of reqs enabled.
func NewDevice(instance *Instance, physical *PhysicalDevice, surface *SurfaceHandle, reqs Requirements, log logrus.FieldLogger) (*Device, error) {
	families, err := AssignQueueFamilies(physical.adapter.QueueFamilies(), func(family int) (bool, error) {
		return surface.SupportsPresent(physical.adapter, family)
	})
	if err != nil {
		return nil, fail(err, ErrDeviceCreate, "queue families")
	}

	info := DeviceCreateInfo{
		Extensions: append([]string(nil), reqs.DeviceExtensions...),
		Features:   append([]Feature(nil), reqs.Features...),
	}
	for _, family := range families.Unique() {
		info.Queues = append(info.Queues, QueueCreateInfo{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}
	if physical.HasExtension(ExtPortabilitySubset) {
		info.Extensions = appendUnique(info.Extensions, ExtPortabilitySubset)
	}

	driver, err := instance.Driver().CreateDevice(physical.adapter, info)
	if err != nil {
		return nil, fail(err, ErrDeviceCreate, "create")
	}

	flags := DefaultAllocatorFlags
	if !reqs.hasDeviceExtension(ExtMemoryPriority) {
		flags &^= AllocatorMemoryPriority
	}
	allocator, err := newAllocator(driver, physical, instance.APIVersion(), info.Extensions, flags, log)
	if err != nil {
		driver.Destroy()
		return nil, errors.Mark(errors.Wrap(err, "allocator"), ErrAllocatorCreate)
	}

	log.WithFields(logrus.Fields{
		"graphics": families.Graphics,
		"compute":  families.Compute,
		"transfer": families.Transfer,
	}).Debug("device created")

	return &Device{
		log:       log,
		driver:    driver,
		allocator: allocator,
		families:  families,
		queues: Queues{
			Graphics: driver.Queue(families.Graphics, 0),
			Compute:  driver.Queue(families.Compute, 0),
			Transfer: driver.Queue(families.Transfer, 0),
		},
		extensions: info.Extensions,
	}, nil
}

func (d *Device) Driver() DeviceDriver         { return d.driver }
func (d *Device) Allocator() *Allocator        { return d.allocator }
func (d *Device) QueueFamilies() QueueFamilies { return d.families }
func (d *Device) Queues() Queues               { return d.queues }
func (d *Device) Extensions() []string         { return d.extensions }

// WaitIdle blocks until the device has finished all submitted work.
func (d *Device) WaitIdle() error {
	return fail(d.driver.WaitIdle(), ErrDeviceIdleWait, "wait idle")
}

// SetDebugName labels object for debugging tools. Failures are logged and
// otherwise ignored.
func (d *Device) SetDebugName(object any, name string) {
	if err := d.driver.SetDebugName(object, name); err != nil {
		d.log.WithError(err).WithField("name", name).Debug("set debug name")
	}
}

func (d *Device) CreateSemaphore(name string) (Semaphore, error) {
	s, err := d.driver.CreateSemaphore()
	if err != nil {
		return nil, fail(err, ErrSyncCreate, "semaphore %s", name)
	}
	d.SetDebugName(s, name)
	return s, nil
}

func (d *Device) DestroySemaphore(s Semaphore) {
	if s != nil {
		d.driver.DestroySemaphore(s)
	}
}

// CreateFence creates a fence, already signaled when signaled is set.
func (d *Device) CreateFence(name string, signaled bool) (Fence, error) {
	f, err := d.driver.CreateFence(signaled)
	if err != nil {
		return nil, fail(err, ErrSyncCreate, "fence %s", name)
	}
	d.SetDebugName(f, name)
	return f, nil
}

func (d *Device) DestroyFence(f Fence) {
	if f != nil {
		d.driver.DestroyFence(f)
	}
}

// WaitForFence blocks without timeout until f is signaled.
func (d *Device) WaitForFence(f Fence) error {
	return fail(d.driver.WaitForFences(f), ErrAcquire, "wait fence")
}

func (d *Device) ResetFence(f Fence) error {
	return fail(d.driver.ResetFences(f), ErrSubmit, "reset fence")
}

func (d *Device) CreateSwapchain(info SwapchainCreateInfo) (SwapchainHandle, []Image, error) {
	sc, err := d.driver.CreateSwapchain(info)
	if err != nil {
		return nil, nil, fail(err, ErrSwapchainCreate, "create %s", info.Extent)
	}
	images, err := d.driver.SwapchainImages(sc)
	if err != nil {
		d.driver.DestroySwapchain(sc)
		return nil, nil, fail(err, ErrSwapchainCreate, "images")
	}
	return sc, images, nil
}

func (d *Device) DestroySwapchain(sc SwapchainHandle) {
	if sc != nil {
		d.driver.DestroySwapchain(sc)
	}
}

func (d *Device) CreateImageView(image Image, format Format, name string) (ImageView, error) {
	v, err := d.driver.CreateImageView(image, format)
	if err != nil {
		return nil, fail(err, ErrImageViewCreate, "%s", name)
	}
	d.SetDebugName(v, name)
	return v, nil
}

func (d *Device) DestroyImageView(v ImageView) {
	if v != nil {
		d.driver.DestroyImageView(v)
	}
}

// AcquireNextImage returns the index of the next presentable image. It
// returns ErrNeedsRecreating when the swapchain is out of date. A suboptimal
// image is still returned and must be presented, since signal is pending.
func (d *Device) AcquireNextImage(sc SwapchainHandle, signal Semaphore) (int, bool, error) {
	idx, suboptimal, err := d.driver.AcquireNextImage(sc, signal)
	if err != nil {
		return 0, false, fail(err, ErrAcquire, "acquire")
	}
	return idx, suboptimal, nil
}

// Submit queues work on the graphics queue.
func (d *Device) Submit(info SubmitInfo, fence Fence) error {
	return fail(d.driver.QueueSubmit(d.queues.Graphics, info, fence), ErrSubmit, "graphics queue")
}

// Present hands an image back to the presentation engine on the graphics
// queue, which is known to support presentation.
func (d *Device) Present(info PresentInfo) error {
	return fail(d.driver.QueuePresent(d.queues.Graphics, info), ErrPresent, "graphics queue")
}

// Release frees the allocator and destroys the device.
func (d *Device) Release() {
	if d == nil || d.driver == nil {
		return
	}
	d.allocator.release()
	d.driver.Destroy()
	d.driver = nil
}
