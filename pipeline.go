package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineBundle is the immutable output of the pipeline stage, shared read-only
// by every frame's command recording.
type PipelineBundle struct {
	Layout     vk.PipelineLayout
	RenderPass vk.RenderPass
	Pipeline   vk.Pipeline
	Format     vk.Format
	Extent     vk.Extent2D
}

// Matches reports whether the bundle was built for format and extent.
func (p *PipelineBundle) Matches(format vk.Format, extent vk.Extent2D) bool {
	return p.Format == format && p.Extent.Width == extent.Width && p.Extent.Height == extent.Height
}

func (p *PipelineBundle) Destroy(device vk.Device) {
	if p.Pipeline != vk.NullPipeline {
		vk.DestroyPipeline(device, p.Pipeline, nil)
		p.Pipeline = vk.NullPipeline
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, p.Layout, nil)
		p.Layout = vk.NullPipelineLayout
	}
	if p.RenderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(device, p.RenderPass, nil)
		p.RenderPass = vk.NullRenderPass
	}
}

// PipelineBuilder holds the fixed-function state of the triangle pipeline.
// Vertices are generated in the vertex shader so there is no vertex input.
type PipelineBuilder struct {
	shaderStages         []vk.PipelineShaderStageCreateInfo
	vertexInputInfo      vk.PipelineVertexInputStateCreateInfo
	inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	rasterizer           vk.PipelineRasterizationStateCreateInfo
	colorBlendAttachment vk.PipelineColorBlendAttachmentState
	multisampling        vk.PipelineMultisampleStateCreateInfo
}

func NewPipelineBuilder(vert, frag vk.ShaderModule) *PipelineBuilder {
	pb := &PipelineBuilder{}

	pb.shaderStages = []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag,
			PName:  safeString("main"),
		},
	}

	pb.vertexInputInfo = vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}

	pb.inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pb.rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pb.multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	pb.colorBlendAttachment = vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}
	return pb
}

// Build creates an empty pipeline layout and the graphics pipeline for renderPass.
// Viewport and scissor are baked to extent.
func (p *PipelineBuilder) Build(device vk.Device, renderPass vk.RenderPass, extent vk.Extent2D) (vk.PipelineLayout, vk.Pipeline, error) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}, nil, &layout)
	if isError(ret) {
		return vk.NullPipelineLayout, vk.NullPipeline, resourceError("pipeline layout", -1, ret)
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		}},
		ScissorCount: 1,
		PScissors:    []vk.Rect2D{{Extent: extent}},
	}

	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p.colorBlendAttachment},
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p.shaderStages)),
		PStages:             p.shaderStages,
		PVertexInputState:   &p.vertexInputInfo,
		PInputAssemblyState: &p.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p.rasterizer,
		PMultisampleState:   &p.multisampling,
		PColorBlendState:    &blendState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if isError(ret) {
		vk.DestroyPipelineLayout(device, layout, nil)
		return vk.NullPipelineLayout, vk.NullPipeline, resourceError("graphics pipeline", -1, ret)
	}
	return layout, pipelines[0], nil
}

// ShaderPaths names the two stages of the pipeline.
type ShaderPaths struct {
	Vertex   string
	Fragment string
}

// BuildPipeline loads both shader stages, creates the render pass for format and
// assembles the pipeline. The shader modules are released before returning.
func BuildPipeline(device vk.Device, source ShaderSource, paths ShaderPaths,
	format vk.Format, extent vk.Extent2D) (*PipelineBundle, error) {

	vert, err := LoadShaderModule(device, source, paths.Vertex)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(device, vert, nil)

	frag, err := LoadShaderModule(device, source, paths.Fragment)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(device, frag, nil)

	renderPass, err := NewRenderPass(device, format)
	if err != nil {
		return nil, err
	}
	layout, pipeline, err := NewPipelineBuilder(vert, frag).Build(device, renderPass, extent)
	if err != nil {
		vk.DestroyRenderPass(device, renderPass, nil)
		return nil, err
	}
	return &PipelineBundle{
		Layout:     layout,
		RenderPass: renderPass,
		Pipeline:   pipeline,
		Format:     format,
		Extent:     extent,
	}, nil
}
