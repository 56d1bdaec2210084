package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool is the single reset-enabled pool every frame's command buffer is
// allocated from. Buffers may only be reset once the GPU is done with them.
type CommandPool struct {
	pool vk.CommandPool
}

func NewCommandPool(device vk.Device, family uint32) (*CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		// ResetCommandBufferBit allows command buffers to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, resourceError("command pool", -1, ret)
	}
	return &CommandPool{pool: pool}, nil
}

func (c *CommandPool) Handle() vk.CommandPool { return c.pool }

func (c *CommandPool) Destroy(device vk.Device) {
	if c.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(device, c.pool, nil)
		c.pool = vk.NullCommandPool
	}
}

// AllocateFrameResources attaches a framebuffer bound to the pipeline's render
// pass and a primary command buffer to every frame of swapchain.
func AllocateFrameResources(device vk.Device, pool *CommandPool, pipeline *PipelineBundle, swapchain *Swapchain) error {
	frames := swapchain.Frames()
	extent := swapchain.Extent()

	for _, f := range frames {
		attachments := []vk.ImageView{f.View}
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      pipeline.RenderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if isError(ret) {
			FreeFrameResources(device, pool, frames)
			return resourceError("framebuffer", int(f.Index), ret)
		}
		f.Framebuffer = framebuffer
	}

	buffers := make([]vk.CommandBuffer, len(frames))
	ret := vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool.Handle(),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(len(buffers)),
	}, buffers)
	if isError(ret) {
		FreeFrameResources(device, pool, frames)
		return resourceError("command buffers", -1, ret)
	}
	for i, f := range frames {
		f.CommandBuffer = buffers[i]
	}
	return nil
}

// FreeFrameResources releases what AllocateFrameResources attached. Frames that
// were only partially prepared are handled.
func FreeFrameResources(device vk.Device, pool *CommandPool, frames []*Frame) {
	var buffers []vk.CommandBuffer
	for _, f := range frames {
		if f.CommandBuffer != nil {
			buffers = append(buffers, f.CommandBuffer)
			f.CommandBuffer = nil
		}
		if f.Framebuffer != vk.NullFramebuffer {
			vk.DestroyFramebuffer(device, f.Framebuffer, nil)
			f.Framebuffer = vk.NullFramebuffer
		}
	}
	if len(buffers) > 0 {
		vk.FreeCommandBuffers(device, pool.Handle(), uint32(len(buffers)), buffers)
	}
}
