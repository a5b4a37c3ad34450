package gfxtest

import (
	"github.com/rayge/engine/renderer/gfx"
)

// Device is a fake logical device. It counts live objects so tests can
// check that everything created is destroyed.
type Device struct {
	log    *Log
	nextID int

	Live map[string]int

	// SwapchainsCreated counts successful swapchain creations.
	SwapchainsCreated int
	LastSwapchain     gfx.SwapchainCreateInfo

	// AcquireErrs and PresentErrs are consumed one per call.
	AcquireErrs  []error
	PresentErrs  []error
	SwapchainErr error
	// ViewErrAfter makes view creation fail once that many views are live.
	ViewErrAfter int

	// SuboptimalAcquires makes that many successful acquires report the
	// swapchain as suboptimal.
	SuboptimalAcquires int

	Submits   []gfx.SubmitInfo
	Presents  []gfx.PresentInfo
	Allocated []gfx.MemoryAllocateInfo

	nextImage int
	images    map[*Handle][]gfx.Image
	Names     map[*Handle]string
	Destroyed bool
}

func (d *Device) handle(kind string) *Handle {
	d.nextID++
	d.Live[kind]++
	return &Handle{Kind: kind, ID: d.nextID}
}

func (d *Device) release(kind string, h any) {
	if h == nil {
		return
	}
	d.Live[kind]--
}

func (d *Device) Queue(family, index int) gfx.Queue {
	return &Handle{Kind: "queue", ID: family*100 + index}
}

func (d *Device) WaitIdle() error {
	d.log.add("wait idle")
	return nil
}

func (d *Device) CreateSemaphore() (gfx.Semaphore, error) { return d.handle("semaphore"), nil }
func (d *Device) DestroySemaphore(s gfx.Semaphore)        { d.release("semaphore", s) }

func (d *Device) CreateFence(signaled bool) (gfx.Fence, error) {
	h := d.handle("fence")
	if signaled {
		h.Name = "signaled"
	}
	return h, nil
}

func (d *Device) DestroyFence(f gfx.Fence) { d.release("fence", f) }

func (d *Device) WaitForFences(fences ...gfx.Fence) error {
	d.log.add("wait fence")
	return nil
}

func (d *Device) ResetFences(fences ...gfx.Fence) error {
	d.log.add("reset fence")
	return nil
}

func (d *Device) CreateSwapchain(info gfx.SwapchainCreateInfo) (gfx.SwapchainHandle, error) {
	if d.SwapchainErr != nil {
		return nil, d.SwapchainErr
	}
	h := d.handle("swapchain")
	images := make([]gfx.Image, info.ImageCount)
	for i := range images {
		d.nextID++
		images[i] = &Handle{Kind: "image", ID: d.nextID}
	}
	d.images[h] = images
	d.SwapchainsCreated++
	d.LastSwapchain = info
	d.log.add("create swapchain %s", info.Extent)
	return h, nil
}

func (d *Device) SwapchainImages(sc gfx.SwapchainHandle) ([]gfx.Image, error) {
	return d.images[sc.(*Handle)], nil
}

func (d *Device) DestroySwapchain(sc gfx.SwapchainHandle) {
	d.release("swapchain", sc)
	delete(d.images, sc.(*Handle))
	d.log.add("destroy swapchain")
}

func (d *Device) CreateImageView(image gfx.Image, format gfx.Format) (gfx.ImageView, error) {
	if d.ViewErrAfter > 0 && d.Live["view"] >= d.ViewErrAfter {
		return nil, ErrDeviceLost
	}
	return d.handle("view"), nil
}

func (d *Device) DestroyImageView(v gfx.ImageView) { d.release("view", v) }

func (d *Device) AcquireNextImage(sc gfx.SwapchainHandle, signal gfx.Semaphore) (int, bool, error) {
	d.log.add("acquire")
	if len(d.AcquireErrs) > 0 {
		err := d.AcquireErrs[0]
		d.AcquireErrs = d.AcquireErrs[1:]
		if err != nil {
			return 0, false, err
		}
	}
	n := len(d.images[sc.(*Handle)])
	idx := d.nextImage % n
	d.nextImage++

	suboptimal := d.SuboptimalAcquires > 0
	if suboptimal {
		d.SuboptimalAcquires--
	}
	return idx, suboptimal, nil
}

func (d *Device) QueueSubmit(q gfx.Queue, info gfx.SubmitInfo, fence gfx.Fence) error {
	d.log.add("submit")
	d.Submits = append(d.Submits, info)
	return nil
}

func (d *Device) QueuePresent(q gfx.Queue, info gfx.PresentInfo) error {
	d.log.add("present")
	if len(d.PresentErrs) > 0 {
		err := d.PresentErrs[0]
		d.PresentErrs = d.PresentErrs[1:]
		if err != nil {
			return err
		}
	}
	d.Presents = append(d.Presents, info)
	return nil
}

func (d *Device) AllocateMemory(info gfx.MemoryAllocateInfo) (gfx.DeviceMemory, error) {
	d.Allocated = append(d.Allocated, info)
	return d.handle("memory"), nil
}

func (d *Device) FreeMemory(m gfx.DeviceMemory) { d.release("memory", m) }

func (d *Device) SetDebugName(object any, name string) error {
	if h, ok := object.(*Handle); ok {
		d.Names[h] = name
	}
	return nil
}

func (d *Device) Destroy() {
	d.Destroyed = true
	d.log.add("destroy device")
}

// LiveObjects returns the number of objects not yet destroyed.
func (d *Device) LiveObjects() int {
	n := 0
	for _, c := range d.Live {
		n += c
	}
	return n
}
