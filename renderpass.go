package vkframe

import vk "github.com/vulkan-go/vulkan"

// NewRenderPass creates the single-subpass render pass writing one colour
// attachment of format that ends up ready for presentation.
func NewRenderPass(device vk.Device, format vk.Format) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorRefs := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}}

	// The layout transition must wait until acquire has released the image.
	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}}

	var renderPass vk.RenderPass
	ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}, nil, &renderPass)
	if isError(ret) {
		return vk.NullRenderPass, resourceError("render pass", -1, ret)
	}
	return renderPass, nil
}
