package renderer

import (
	"fmt"

	"github.com/rayge/engine/renderer/gfx"
)

// FramesInFlight is the number of frames the CPU may record ahead of the GPU.
const FramesInFlight = 2

// SyncState guards one frame slot.
type SyncState struct {
	// ImageAvailable is signaled when the acquired image may be written.
	ImageAvailable gfx.Semaphore
	// RenderComplete is signaled when rendering to the image has finished.
	RenderComplete gfx.Semaphore
	// FrameComplete is signaled when the slot's submission has retired.
	// It starts signaled so the first wait returns immediately.
	FrameComplete gfx.Fence
}

func newSyncState(dev *gfx.Device, slot int) (*SyncState, error) {
	s := &SyncState{}
	var err error

	if s.ImageAvailable, err = dev.CreateSemaphore(fmt.Sprintf("frame%d_image_available", slot)); err != nil {
		return nil, err
	}
	if s.RenderComplete, err = dev.CreateSemaphore(fmt.Sprintf("frame%d_render_complete", slot)); err != nil {
		s.Release(dev)
		return nil, err
	}
	if s.FrameComplete, err = dev.CreateFence(fmt.Sprintf("frame%d_complete", slot), true); err != nil {
		s.Release(dev)
		return nil, err
	}
	return s, nil
}

// Release destroys the slot's objects. The caller must ensure the GPU is
// done with them.
func (s *SyncState) Release(dev *gfx.Device) {
	dev.DestroySemaphore(s.ImageAvailable)
	dev.DestroySemaphore(s.RenderComplete)
	dev.DestroyFence(s.FrameComplete)
	*s = SyncState{}
}

// Image is a swapchain image with the view the renderer owns. The image
// itself belongs to the swapchain.
type Image struct {
	Handle gfx.Image
	View   gfx.ImageView
	Extent gfx.Extent2D
	Format gfx.Format
}

func newImage(dev *gfx.Device, handle gfx.Image, format gfx.Format, extent gfx.Extent2D, name string) (*Image, error) {
	view, err := dev.CreateImageView(handle, format, name+"_image_view")
	if err != nil {
		return nil, err
	}
	dev.SetDebugName(handle, name)
	return &Image{Handle: handle, View: view, Extent: extent, Format: format}, nil
}

// Release destroys the view and leaves the image to its swapchain.
func (i *Image) Release(dev *gfx.Device) {
	dev.DestroyImageView(i.View)
	i.View = nil
}
