package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_1"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/ext_memory_priority"
	"github.com/vkngwrapper/extensions/v3/khr_buffer_device_address"
	"github.com/vkngwrapper/extensions/v3/khr_dedicated_allocation"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/rayge/engine/renderer/gfx"
)

type device struct {
	driver     core1_0.CoreDeviceDriver
	physical   core1_0.PhysicalDevice
	swapchain  khr_swapchain.ExtensionDriver
	surfaceExt khr_surface.ExtensionDriver
	// debug is nil unless validation is enabled.
	debug ext_debug_utils.ExtensionDriver
}

func (d *device) Queue(family, index int) gfx.Queue {
	return d.driver.GetQueue(family, index)
}

func (d *device) WaitIdle() error {
	_, err := d.driver.DeviceWaitIdle()
	return err
}

func (d *device) CreateSemaphore() (gfx.Semaphore, error) {
	s, _, err := d.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *device) DestroySemaphore(s gfx.Semaphore) {
	d.driver.DestroySemaphore(s.(core1_0.Semaphore), nil)
}

func (d *device) CreateFence(signaled bool) (gfx.Fence, error) {
	var info core1_0.FenceCreateInfo
	if signaled {
		info.Flags = core1_0.FenceCreateSignaled
	}
	f, _, err := d.driver.CreateFence(nil, info)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *device) DestroyFence(f gfx.Fence) {
	d.driver.DestroyFence(f.(core1_0.Fence), nil)
}

func (d *device) WaitForFences(fences ...gfx.Fence) error {
	_, err := d.driver.WaitForFences(true, common.NoTimeout, toFences(fences)...)
	return err
}

func (d *device) ResetFences(fences ...gfx.Fence) error {
	_, err := d.driver.ResetFences(toFences(fences)...)
	return err
}

func (d *device) CreateSwapchain(info gfx.SwapchainCreateInfo) (gfx.SwapchainHandle, error) {
	surf := info.Surface.(*surface)

	caps, _, err := d.surfaceExt.GetPhysicalDeviceSurfaceCapabilities(surf.handle, d.physical)
	if err != nil {
		return nil, errors.Wrap(err, "surface capabilities")
	}

	// Presentation happens on the graphics queue, so the images are never
	// shared between families.
	sc, _, err := d.swapchain.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: surf.handle,

		MinImageCount:    int(info.ImageCount),
		ImageFormat:      core1_0.Format(info.Format.Format),
		ImageColorSpace:  khr_surface.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      extent(info.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment | core1_0.ImageUsageTransferDst,
		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   caps.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentMode(info.PresentMode),
		Clipped:        true,
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (d *device) SwapchainImages(sc gfx.SwapchainHandle) ([]gfx.Image, error) {
	images, _, err := d.swapchain.GetSwapchainImages(sc.(khr_swapchain.Swapchain))
	if err != nil {
		return nil, err
	}

	out := make([]gfx.Image, len(images))
	for i, img := range images {
		out[i] = img
	}
	return out, nil
}

func (d *device) DestroySwapchain(sc gfx.SwapchainHandle) {
	d.swapchain.DestroySwapchain(sc.(khr_swapchain.Swapchain), nil)
}

func (d *device) CreateImageView(image gfx.Image, format gfx.Format) (gfx.ImageView, error) {
	view, _, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image.(core1_0.Image),
		ViewType: core1_0.ImageViewType2D,
		Format:   core1_0.Format(format),
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (d *device) DestroyImageView(v gfx.ImageView) {
	d.driver.DestroyImageView(v.(core1_0.ImageView), nil)
}

// AcquireNextImage treats only out of date as a failed acquire. On suboptimal
// the semaphore is signaled and the image must go through present.
func (d *device) AcquireNextImage(sc gfx.SwapchainHandle, signal gfx.Semaphore) (int, bool, error) {
	semaphore := signal.(core1_0.Semaphore)
	idx, res, err := d.swapchain.AcquireNextImage(sc.(khr_swapchain.Swapchain), common.NoTimeout, &semaphore, nil)
	switch {
	case res == khr_swapchain.VKErrorOutOfDate:
		return 0, false, errors.WithStack(gfx.ErrNeedsRecreating)
	case res == khr_swapchain.VKSuboptimal:
		return idx, true, nil
	case err != nil:
		return 0, false, err
	}
	return idx, false, nil
}

func (d *device) QueueSubmit(q gfx.Queue, info gfx.SubmitInfo, fence gfx.Fence) error {
	submit := core1_0.SubmitInfo{
		WaitSemaphores:   toSemaphores(info.Wait),
		CommandBuffers:   toCommandBuffers(info.CommandBuffers),
		SignalSemaphores: toSemaphores(info.Signal),
	}
	for range submit.WaitSemaphores {
		submit.WaitDstStageMask = append(submit.WaitDstStageMask, core1_0.PipelineStageColorAttachmentOutput)
	}

	var f *core1_0.Fence
	if fence != nil {
		handle := fence.(core1_0.Fence)
		f = &handle
	}
	_, err := d.driver.QueueSubmit(q.(core1_0.Queue), f, submit)
	return err
}

func (d *device) QueuePresent(q gfx.Queue, info gfx.PresentInfo) error {
	res, err := d.swapchain.QueuePresent(q.(core1_0.Queue), khr_swapchain.PresentInfo{
		WaitSemaphores: toSemaphores(info.Wait),
		Swapchains:     []khr_swapchain.Swapchain{info.Swapchain.(khr_swapchain.Swapchain)},
		ImageIndices:   []int{info.ImageIndex},
	})
	if needsRecreating(res) {
		return errors.WithStack(gfx.ErrNeedsRecreating)
	}
	return err
}

func (d *device) AllocateMemory(info gfx.MemoryAllocateInfo) (gfx.DeviceMemory, error) {
	allocInfo := core1_0.MemoryAllocateInfo{
		AllocationSize:  int(info.Size),
		MemoryTypeIndex: info.TypeIndex,
	}

	if info.DeviceAddress {
		flags := core1_1.MemoryAllocateFlagsInfo{
			Flags: khr_buffer_device_address.MemoryAllocateDeviceAddress,
		}
		flags.Next = allocInfo.Next
		allocInfo.Next = flags
	}

	if info.DedicatedImage != nil || info.DedicatedBuffer != nil {
		dedicated := khr_dedicated_allocation.MemoryDedicatedAllocateInfo{}
		if info.DedicatedBuffer != nil {
			dedicated.Buffer = info.DedicatedBuffer.(core1_0.Buffer)
		} else {
			dedicated.Image = info.DedicatedImage.(core1_0.Image)
		}
		dedicated.Next = allocInfo.Next
		allocInfo.Next = dedicated
	}

	if info.UsePriority {
		priority := ext_memory_priority.MemoryPriorityAllocateInfo{
			Priority: info.Priority,
		}
		priority.Next = allocInfo.Next
		allocInfo.Next = priority
	}

	memory, _, err := d.driver.AllocateMemory(nil, allocInfo)
	if err != nil {
		return nil, err
	}
	return memory, nil
}

func (d *device) FreeMemory(m gfx.DeviceMemory) {
	d.driver.FreeMemory(m.(core1_0.DeviceMemory), nil)
}

func (d *device) Destroy() {
	d.driver.DestroyDevice(nil)
}

func needsRecreating(res common.VkResult) bool {
	return res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal
}

func toFences(fences []gfx.Fence) []core1_0.Fence {
	out := make([]core1_0.Fence, len(fences))
	for i, f := range fences {
		out[i] = f.(core1_0.Fence)
	}
	return out
}

func toSemaphores(semaphores []gfx.Semaphore) []core1_0.Semaphore {
	out := make([]core1_0.Semaphore, len(semaphores))
	for i, s := range semaphores {
		out[i] = s.(core1_0.Semaphore)
	}
	return out
}

func toCommandBuffers(buffers []gfx.CommandBuffer) []core1_0.CommandBuffer {
	out := make([]core1_0.CommandBuffer, len(buffers))
	for i, b := range buffers {
		out[i] = b.(core1_0.CommandBuffer)
	}
	return out
}
