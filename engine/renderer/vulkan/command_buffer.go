package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

// CommandBuffer is a primary command buffer allocated from the graphics
// pool. Each one is recorded once and freed after execution.
type CommandBuffer struct {
	device *Device
	handle vk.CommandBuffer
	label  string
	state  VulkanCommandBufferState
}

func (cb *CommandBuffer) Label() string {
	return cb.label
}

func (cb *CommandBuffer) free() {
	if cb.state == COMMAND_BUFFER_STATE_NOT_ALLOCATED || cb.device.handle == nil {
		return
	}
	vk.FreeCommandBuffers(cb.device.handle, cb.device.graphicsPool, 1, []vk.CommandBuffer{cb.handle})
	cb.handle = nil
	cb.state = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

// CommandEncoder records into a single-use command buffer.
type CommandEncoder struct {
	buffer *CommandBuffer
}

func newCommandEncoder(d *Device, label string) (*CommandEncoder, error) {
	if d.handle == nil {
		return nil, fmt.Errorf("%w: device %q destroyed", core.ErrGraphicsDevice, d.label)
	}
	cb := &CommandBuffer{
		device: d,
		label:  label,
		state:  COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.graphicsPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(d.handle, &allocateInfo, handles); res != vk.Success {
		return nil, resultError(core.ErrGraphicsDevice, "vkAllocateCommandBuffers", res)
	}
	cb.handle = handles[0]
	cb.state = COMMAND_BUFFER_STATE_READY

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cb.handle, &beginInfo); res != vk.Success {
		cb.free()
		return nil, resultError(core.ErrGraphicsDevice, "vkBeginCommandBuffer", res)
	}
	cb.state = COMMAND_BUFFER_STATE_RECORDING
	return &CommandEncoder{buffer: cb}, nil
}

// BeginRenderPass starts a pass over the swapchain image behind the single
// color attachment.
func (e *CommandEncoder) BeginRenderPass(desc *metadata.RenderPassDescriptor) (metadata.RenderPassEncoder, error) {
	cb := e.buffer
	if cb.state != COMMAND_BUFFER_STATE_RECORDING {
		return nil, fmt.Errorf("render pass %q: command buffer %q is not recording", desc.Label, cb.label)
	}
	if len(desc.ColorAttachments) != 1 {
		return nil, fmt.Errorf("render pass %q: exactly one color attachment is supported, got %d", desc.Label, len(desc.ColorAttachments))
	}
	attachment := desc.ColorAttachments[0]
	view, ok := attachment.View.(*TextureView)
	if !ok {
		return nil, fmt.Errorf("render pass %q: view %T is not a swapchain view", desc.Label, attachment.View)
	}

	s := view.surface
	renderPass, err := s.renderPass(attachment.LoadOp, attachment.StoreOp)
	if err != nil {
		return nil, err
	}

	clear := attachment.ClearValue.Float32()
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: s.swapchain.framebuffers[view.index],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: s.swapchain.extent,
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(clear[:])},
	}
	vk.CmdBeginRenderPass(cb.handle, &beginInfo, vk.SubpassContentsInline)
	cb.state = COMMAND_BUFFER_STATE_IN_RENDER_PASS
	return &RenderPassEncoder{buffer: cb}, nil
}

func (e *CommandEncoder) Finish() (metadata.CommandBuffer, error) {
	cb := e.buffer
	if cb.state != COMMAND_BUFFER_STATE_RECORDING {
		return nil, fmt.Errorf("command buffer %q cannot be finished while in state %d", cb.label, cb.state)
	}
	if res := vk.EndCommandBuffer(cb.handle); res != vk.Success {
		cb.free()
		return nil, resultError(core.ErrGraphicsDevice, "vkEndCommandBuffer", res)
	}
	cb.state = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return cb, nil
}

type RenderPassEncoder struct {
	buffer *CommandBuffer
}

func (p *RenderPassEncoder) End() error {
	if p.buffer.state != COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return fmt.Errorf("command buffer %q is not inside a render pass", p.buffer.label)
	}
	vk.CmdEndRenderPass(p.buffer.handle)
	p.buffer.state = COMMAND_BUFFER_STATE_RECORDING
	return nil
}
