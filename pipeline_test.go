package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestPipelineBundleMatches(t *testing.T) {
	p := &PipelineBundle{Format: vk.FormatB8g8r8a8Unorm, Extent: vk.Extent2D{Width: 800, Height: 600}}

	assert.True(t, p.Matches(vk.FormatB8g8r8a8Unorm, vk.Extent2D{Width: 800, Height: 600}))
	assert.False(t, p.Matches(vk.FormatB8g8r8a8Srgb, vk.Extent2D{Width: 800, Height: 600}))
	assert.False(t, p.Matches(vk.FormatB8g8r8a8Unorm, vk.Extent2D{Width: 1024, Height: 600}))
}

func TestPipelineBuilderFixedState(t *testing.T) {
	pb := NewPipelineBuilder(vk.NullShaderModule, vk.NullShaderModule)

	if assert.Len(t, pb.shaderStages, 2) {
		assert.Equal(t, vk.ShaderStageVertexBit, pb.shaderStages[0].Stage)
		assert.Equal(t, vk.ShaderStageFragmentBit, pb.shaderStages[1].Stage)
		assert.Equal(t, "main\x00", pb.shaderStages[0].PName)
	}
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, pb.inputAssembly.Topology)
	assert.Equal(t, vk.PolygonModeFill, pb.rasterizer.PolygonMode)
	assert.Equal(t, vk.SampleCount1Bit, pb.multisampling.RasterizationSamples)
	assert.Zero(t, pb.vertexInputInfo.VertexBindingDescriptionCount)
}
