package vkframe

import vk "github.com/vulkan-go/vulkan"

// frameContext is the Vulkan FrameDriver. swapchain and pipeline are swapped
// by the engine after a rebuild, never while a frame is being drawn.
type frameContext struct {
	device    *LogicalDevice
	swapchain *Swapchain
	pipeline  *PipelineBundle
	clear     [4]float32
}

func newFrameContext(device *LogicalDevice, swapchain *Swapchain, pipeline *PipelineBundle, clear [4]float32) *frameContext {
	return &frameContext{
		device:    device,
		swapchain: swapchain,
		pipeline:  pipeline,
		clear:     clear,
	}
}

func (c *frameContext) WaitFence(sync *SyncSet) vk.Result {
	return vk.WaitForFences(c.device.Handle(), 1, []vk.Fence{sync.InFlight}, vk.True, vk.MaxUint64)
}

func (c *frameContext) ResetFence(sync *SyncSet) vk.Result {
	return vk.ResetFences(c.device.Handle(), 1, []vk.Fence{sync.InFlight})
}

func (c *frameContext) Acquire(sync *SyncSet) (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(c.device.Handle(), c.swapchain.Handle(), vk.MaxUint64,
		sync.ImageAvailable, vk.NullFence, &index)
	return index, ret
}

// Record writes the fixed triangle draw into the frame's command buffer.
func (c *frameContext) Record(frame *Frame) vk.Result {
	cmd := frame.CommandBuffer
	if ret := vk.ResetCommandBuffer(cmd, 0); isError(ret) {
		return ret
	}
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return ret
	}

	clearValues := []vk.ClearValue{
		vk.NewClearValue(c.clear[:]),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  c.pipeline.RenderPass,
		Framebuffer: frame.Framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: c.swapchain.Extent(),
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, c.pipeline.Pipeline)
	vk.CmdDraw(cmd, 3, 1, 0, 0)

	vk.CmdEndRenderPass(cmd)
	return vk.EndCommandBuffer(cmd)
}

func (c *frameContext) Submit(frame *Frame, sync *SyncSet) vk.Result {
	submitInfos := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.ImageAvailable},
		// PWaitDstStageMask is a pointer to an array of pipeline
		// stages at which each corresponding semaphore wait will occur.
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{frame.CommandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sync.RenderFinished},
	}}
	return vk.QueueSubmit(c.device.GraphicsQueue(), 1, submitInfos, sync.InFlight)
}

func (c *frameContext) Present(frame *Frame, sync *SyncSet) vk.Result {
	return vk.QueuePresent(c.device.PresentQueue(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapchain.Handle()},
		PImageIndices:      []uint32{frame.Index},
	})
}
