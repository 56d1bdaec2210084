package vkframe

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func testAdapters() []Adapter {
	swapchain := []string{"VK_KHR_swapchain"}
	return []Adapter{
		{Index: 0, Name: "llvmpipe", Type: vk.PhysicalDeviceTypeCpu, Extensions: swapchain},
		{Index: 1, Name: "discrete", Type: vk.PhysicalDeviceTypeDiscreteGpu, Extensions: swapchain},
		{Index: 2, Name: "compute only", Type: vk.PhysicalDeviceTypeDiscreteGpu},
		{Index: 3, Name: "integrated", Type: vk.PhysicalDeviceTypeIntegratedGpu, Extensions: swapchain},
	}
}

func TestFilterSuitable(t *testing.T) {
	suitable := FilterSuitable(testAdapters(), RequiredDeviceExtensions)
	require.Len(t, suitable, 3)
	for _, a := range suitable {
		assert.NotEqual(t, "compute only", a.Name)
	}
	assert.Empty(t, FilterSuitable(nil, RequiredDeviceExtensions))
}

func TestAdapterPolicies(t *testing.T) {
	suitable := FilterSuitable(testAdapters(), RequiredDeviceExtensions)

	tests := []struct {
		policy AdapterPolicy
		want   string
	}{
		{SelectFirst(), "llvmpipe"},
		{SelectLast(), "integrated"},
		{SelectBest(DefaultScore), "discrete"},
		{SelectBest(nil), "discrete"},
		{AdapterPolicy{}, "integrated"},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			got, err := tt.policy.Pick(suitable)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestSelectBestTieGoesToEarliest(t *testing.T) {
	adapters := []Adapter{
		{Name: "a", Type: vk.PhysicalDeviceTypeIntegratedGpu},
		{Name: "b", Type: vk.PhysicalDeviceTypeDiscreteGpu},
		{Name: "c", Type: vk.PhysicalDeviceTypeDiscreteGpu},
	}
	got, err := SelectBest(nil).Pick(adapters)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	byName := func(a Adapter) int { return len(a.Name) }
	got, err = SelectBest(byName).Pick(adapters)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestPickEmpty(t *testing.T) {
	for _, policy := range []AdapterPolicy{SelectFirst(), SelectLast(), SelectBest(nil)} {
		_, err := policy.Pick(nil)
		require.Error(t, err, policy.String())
		assert.True(t, errors.Is(err, ErrNoSuitableDevice))
		assert.Equal(t, Configuration, KindOf(err))
	}
}

func TestParseAdapterPolicy(t *testing.T) {
	for name, want := range map[string]string{"first": "first", "last": "last", "": "last", "best": "best"} {
		p, err := ParseAdapterPolicy(name)
		require.NoError(t, err)
		assert.Equal(t, want, p.String())
	}

	_, err := ParseAdapterPolicy("fastest")
	require.Error(t, err)
	assert.Equal(t, Configuration, KindOf(err))
	assert.Contains(t, err.Error(), `"fastest"`)
}

func TestDefaultScore(t *testing.T) {
	discrete := DefaultScore(Adapter{Type: vk.PhysicalDeviceTypeDiscreteGpu})
	integrated := DefaultScore(Adapter{Type: vk.PhysicalDeviceTypeIntegratedGpu})
	virtual := DefaultScore(Adapter{Type: vk.PhysicalDeviceTypeVirtualGpu})
	cpu := DefaultScore(Adapter{Type: vk.PhysicalDeviceTypeCpu})
	other := DefaultScore(Adapter{Type: vk.PhysicalDeviceTypeOther})

	assert.Greater(t, discrete, integrated)
	assert.Greater(t, integrated, virtual)
	assert.Greater(t, virtual, cpu)
	assert.Greater(t, cpu, other)
}

func TestDeviceTypeName(t *testing.T) {
	assert.Equal(t, "discrete", deviceTypeName(vk.PhysicalDeviceTypeDiscreteGpu))
	assert.Equal(t, "cpu", deviceTypeName(vk.PhysicalDeviceTypeCpu))
	assert.Equal(t, "other", deviceTypeName(vk.PhysicalDeviceTypeOther))
}
