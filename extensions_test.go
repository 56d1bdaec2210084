package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestMissing(t *testing.T) {
	tests := []struct {
		name                 string
		requested, supported []string
		want                 []string
	}{
		{"nothing requested", nil, nil, nil},
		{"nothing requested with support", nil, []string{"VK_KHR_surface"}, nil},
		{"all supported", []string{"VK_KHR_surface"}, []string{"VK_KHR_xcb_surface", "VK_KHR_surface"}, nil},
		{"nothing supported", []string{"VK_KHR_surface", "VK_EXT_debug_report"}, nil, []string{"VK_KHR_surface", "VK_EXT_debug_report"}},
		{"request order kept", []string{"b", "a", "c"}, []string{"c"}, []string{"b", "a"}},
		{"case sensitive", []string{"VK_KHR_surface"}, []string{"vk_khr_surface"}, []string{"VK_KHR_surface"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Missing(tt.requested, tt.supported))
		})
	}
}

func TestCheckSupport(t *testing.T) {
	require.NoError(t, CheckSupport("layers", nil, nil))
	require.NoError(t, CheckSupport("layers", []string{ValidationLayerName}, []string{ValidationLayerName}))

	err := CheckSupport("instance extensions",
		[]string{"VK_KHR_surface", DebugReportExtensionName, "VK_KHR_win32_surface"},
		[]string{"VK_KHR_surface"})
	require.Error(t, err)
	assert.Equal(t, Configuration, KindOf(err))
	assert.True(t, IsFatal(err))
	assert.Contains(t, err.Error(), "VK_EXT_debug_report, VK_KHR_win32_surface")
	assert.NotContains(t, err.Error(), "VK_KHR_surface,")
}

func TestAdapterSupports(t *testing.T) {
	a := Adapter{Extensions: []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}}
	assert.True(t, a.Supports(RequiredDeviceExtensions))
	assert.True(t, a.Supports(nil))
	assert.False(t, Adapter{}.Supports(RequiredDeviceExtensions))
}

func TestEnumerate(t *testing.T) {
	records := []string{"VK_KHR_surface", "VK_EXT_debug_report"}
	calls := 0
	query := func(count *uint32, list []string) vk.Result {
		calls++
		if list == nil {
			*count = uint32(len(records))
			return vk.Success
		}
		*count = uint32(copy(list, records))
		return vk.Success
	}
	names, err := enumerate(query, func(s *string) string { return *s })
	require.NoError(t, err)
	assert.Equal(t, records, names)
	assert.Equal(t, 2, calls)
}

func TestEnumerateEmptySkipsFill(t *testing.T) {
	calls := 0
	query := func(count *uint32, list []string) vk.Result {
		calls++
		*count = 0
		return vk.Success
	}
	names, err := enumerate(query, func(s *string) string { return *s })
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, 1, calls)
}

func TestEnumerateFailure(t *testing.T) {
	query := func(count *uint32, list []string) vk.Result {
		if list == nil {
			*count = 1
			return vk.Success
		}
		return vk.ErrorOutOfHostMemory
	}
	_, err := enumerate(query, func(s *string) string { return *s })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vulkan error")
}

func TestQueryList(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
	tests := []struct {
		name     string
		countRet vk.Result
		fillRet  vk.Result
		want     []vk.PresentMode
		wantRet  vk.Result
	}{
		{"ok", vk.Success, vk.Success, modes, vk.Success},
		{"count fails", vk.ErrorSurfaceLost, vk.Success, nil, vk.ErrorSurfaceLost},
		{"fill fails", vk.Success, vk.ErrorOutOfHostMemory, nil, vk.ErrorOutOfHostMemory},
		{"fill incomplete", vk.Success, vk.Incomplete, nil, vk.Incomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ret := queryList(func(count *uint32, list []vk.PresentMode) vk.Result {
				if list == nil {
					*count = uint32(len(modes))
					return tt.countRet
				}
				*count = uint32(copy(list, modes))
				return tt.fillRet
			})
			assert.Equal(t, tt.wantRet, ret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryListShrinksToReturnedCount(t *testing.T) {
	got, ret := queryList(func(count *uint32, list []vk.Image) vk.Result {
		if list == nil {
			*count = 3
			return vk.Success
		}
		*count = 2
		return vk.Success
	})
	require.Equal(t, vk.Success, ret)
	assert.Len(t, got, 2)
}
