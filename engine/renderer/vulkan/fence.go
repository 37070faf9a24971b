package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
)

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool

	device    vk.Device
	allocator *vk.AllocationCallbacks
}

func NewFence(device *Device, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		IsSignaled: createSignaled,
		device:     device.handle,
		allocator:  device.allocator,
	}

	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	if res := vk.CreateFence(device.handle, &createInfo, device.allocator, &fence.Handle); res != vk.Success {
		return nil, resultError(core.ErrSurfaceConfigure, "vkCreateFence", res)
	}
	return fence, nil
}

func (vf *VulkanFence) Destroy() {
	if vf.Handle != vk.NullFence {
		vk.DestroyFence(vf.device, vf.Handle, vf.allocator)
		vf.Handle = vk.NullFence
	}
	vf.IsSignaled = false
}

// Wait blocks until the fence is signaled or timeoutNs elapsed.
func (vf *VulkanFence) Wait(timeoutNs uint64) error {
	if vf.IsSignaled {
		return nil
	}
	switch res := vk.WaitForFences(vf.device, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs); res {
	case vk.Success:
		vf.IsSignaled = true
		return nil
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
		return fmt.Errorf("%w: fence not signaled after %dns", core.ErrSurfaceTimeout, timeoutNs)
	default:
		return resultError(core.ErrSurfaceAcquire, "vkWaitForFences", res)
	}
}

func (vf *VulkanFence) Reset() error {
	if !vf.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(vf.device, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		return resultError(core.ErrGraphicsDevice, "vkResetFences", res)
	}
	vf.IsSignaled = false
	return nil
}

// frameSync holds what one frame in flight needs: the semaphores ordering
// acquire, render and present, and the fence guarding reuse of the frame.
type frameSync struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       *VulkanFence

	// command buffers submitted with the frame, freed once its fence signals
	pending   []*CommandBuffer
	submitted bool
}

func newFrameSync(device *Device) (*frameSync, error) {
	f := &frameSync{}
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if res := vk.CreateSemaphore(device.handle, &info, device.allocator, &f.imageAvailable); res != vk.Success {
		return nil, resultError(core.ErrSurfaceConfigure, "vkCreateSemaphore", res)
	}
	if res := vk.CreateSemaphore(device.handle, &info, device.allocator, &f.renderFinished); res != vk.Success {
		vk.DestroySemaphore(device.handle, f.imageAvailable, device.allocator)
		return nil, resultError(core.ErrSurfaceConfigure, "vkCreateSemaphore", res)
	}
	// Signaled so the first wait on the frame returns immediately.
	fence, err := NewFence(device, true)
	if err != nil {
		vk.DestroySemaphore(device.handle, f.imageAvailable, device.allocator)
		vk.DestroySemaphore(device.handle, f.renderFinished, device.allocator)
		return nil, err
	}
	f.inFlight = fence
	return f, nil
}

// recycle frees the command buffers of the previous use of the frame. The
// fence must have been waited on.
func (f *frameSync) recycle() {
	for _, cb := range f.pending {
		cb.free()
	}
	f.pending = f.pending[:0]
	f.submitted = false
}

func (f *frameSync) destroy(device *Device) {
	f.recycle()
	vk.DestroySemaphore(device.handle, f.imageAvailable, device.allocator)
	vk.DestroySemaphore(device.handle, f.renderFinished, device.allocator)
	f.inFlight.Destroy()
}
