package renderer

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/rayge/engine/renderer/gfx"
)

// Frame is the work unit handed to a Recorder.
type Frame struct {
	// Slot is the sync slot in use, in [0, FramesInFlight).
	Slot int
	// ImageIndex is the acquired swapchain image.
	ImageIndex int
	Image      *Image
	Sync       *SyncState
	// Suboptimal is set when the image was acquired from a chain that no
	// longer matches the surface. The frame still runs; the chain is rebuilt
	// after it is presented.
	Suboptimal bool
}

// Swapchain owns a presentation swapchain, views for its images and the
// per-slot synchronisation ring.
type Swapchain struct {
	log logrus.FieldLogger

	handle gfx.SwapchainHandle
	config gfx.SurfaceConfig
	images []*Image
	sync   [FramesInFlight]*SyncState
	slot   int
}

// NewSwapchain builds a swapchain from the context's current surface
// configuration.
func NewSwapchain(ctx *gfx.Context) (sc *Swapchain, err error) {
	dev := ctx.Device()
	config := ctx.Surface().Config()
	if config.Extent.IsZero() {
		return nil, errors.Mark(errors.Newf("zero extent %s", config.Extent), gfx.ErrSwapchainCreate)
	}

	handle, images, err := dev.CreateSwapchain(gfx.SwapchainCreateInfo{
		Surface:     ctx.Surface().Handle().Driver(),
		ImageCount:  config.ImageCount,
		Format:      config.Format,
		Extent:      config.Extent,
		PresentMode: config.PresentMode,
	})
	if err != nil {
		return nil, err
	}

	sc = &Swapchain{
		log:    ctx.Logger(),
		handle: handle,
		config: config,
	}
	defer func() {
		if err != nil {
			sc.Release(dev)
			sc = nil
		}
	}()

	for idx, handle := range images {
		img, err := newImage(dev, handle, config.Format.Format, config.Extent, fmt.Sprintf("swapchain_image%d", idx))
		if err != nil {
			return sc, err
		}
		sc.images = append(sc.images, img)
	}

	for slot := range sc.sync {
		if sc.sync[slot], err = newSyncState(dev, slot); err != nil {
			return sc, err
		}
	}

	sc.log.WithFields(logrus.Fields{
		"extent": config.Extent,
		"images": len(sc.images),
		"mode":   config.PresentMode,
	}).Debug("swapchain created")
	return sc, nil
}

func (s *Swapchain) Config() gfx.SurfaceConfig { return s.config }
func (s *Swapchain) Extent() gfx.Extent2D      { return s.config.Extent }
func (s *Swapchain) Images() []*Image          { return s.images }
func (s *Swapchain) Slot() int                 { return s.slot }

// Acquire waits for the current slot to retire and acquires the next image.
// The slot's fence stays signaled until Submit, so a failed acquire leaves
// the slot usable.
func (s *Swapchain) Acquire(dev *gfx.Device) (Frame, error) {
	sync := s.sync[s.slot]

	if err := dev.WaitForFence(sync.FrameComplete); err != nil {
		return Frame{}, err
	}

	idx, suboptimal, err := dev.AcquireNextImage(s.handle, sync.ImageAvailable)
	if err != nil {
		return Frame{}, err
	}
	if idx < 0 || idx >= len(s.images) {
		return Frame{}, errors.Mark(errors.Newf("image index %d out of range", idx), gfx.ErrAcquire)
	}

	return Frame{
		Slot:       s.slot,
		ImageIndex: idx,
		Image:      s.images[idx],
		Sync:       sync,
		Suboptimal: suboptimal,
	}, nil
}

// Submit runs cmds once the frame's image is available and signals both the
// render-complete semaphore and the slot's fence.
func (s *Swapchain) Submit(dev *gfx.Device, frame Frame, cmds []gfx.CommandBuffer) error {
	if err := dev.ResetFence(frame.Sync.FrameComplete); err != nil {
		return err
	}
	return dev.Submit(gfx.SubmitInfo{
		Wait:           []gfx.Semaphore{frame.Sync.ImageAvailable},
		CommandBuffers: cmds,
		Signal:         []gfx.Semaphore{frame.Sync.RenderComplete},
	}, frame.Sync.FrameComplete)
}

// Present queues the frame's image once rendering completes and moves to the
// next slot.
func (s *Swapchain) Present(dev *gfx.Device, frame Frame) error {
	s.slot = (s.slot + 1) % FramesInFlight
	return dev.Present(gfx.PresentInfo{
		Wait:       []gfx.Semaphore{frame.Sync.RenderComplete},
		Swapchain:  s.handle,
		ImageIndex: frame.ImageIndex,
	})
}

// Release destroys the sync ring, the image views and the swapchain. The
// device must be idle.
func (s *Swapchain) Release(dev *gfx.Device) {
	for slot, sync := range s.sync {
		if sync != nil {
			sync.Release(dev)
			s.sync[slot] = nil
		}
	}
	for _, img := range s.images {
		img.Release(dev)
	}
	s.images = nil
	if s.handle != nil {
		dev.DestroySwapchain(s.handle)
		s.handle = nil
	}
}
