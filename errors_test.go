package vkframe

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
	}{
		{"configuration", configError("negotiate layers", errors.New("missing")), Configuration, false},
		{"resource", resourceError("swapchain", -1, vk.ErrorOutOfHostMemory), ResourceCreation, false},
		{"out of date", steadyError("acquire", 0, vk.ErrorOutOfDate), SteadyState, true},
		{"suboptimal", steadyError("present", 1, vk.Suboptimal), SteadyState, true},
		{"timeout", steadyError("wait fence", -1, vk.Timeout), SteadyState, true},
		{"device lost", steadyError("submit", 2, vk.ErrorDeviceLost), SteadyState, false},
		{"foreign", errors.New("boom"), KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.Equal(t, !tt.retryable, IsFatal(tt.err))

			wrapped := errors.Wrap(tt.err, "draw")
			assert.Equal(t, tt.kind, KindOf(wrapped))
			assert.Equal(t, tt.retryable, IsRetryable(wrapped))
		})
	}
}

func TestIsFatalNil(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsRetryable(nil))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	err := configError("negotiate layers", errors.New("unsupported layers: x"))
	assert.Equal(t, "configuration: negotiate layers: unsupported layers: x", err.Error())

	err = resourceError("framebuffer", 2, vk.ErrorOutOfDeviceMemory)
	assert.Contains(t, err.Error(), "resource creation: create framebuffer (frame 2): vulkan error")

	err = steadyError("present", 0, vk.ErrorOutOfDate)
	assert.Contains(t, err.Error(), "steady state: present (frame 0): ")
	assert.Contains(t, err.Error(), ErrSwapchainOutOfDate.Error())
}

func TestErrorUnwrap(t *testing.T) {
	err := steadyError("acquire", 0, vk.ErrorOutOfDate)
	assert.True(t, errors.Is(err, ErrSwapchainOutOfDate))
	assert.False(t, errors.Is(steadyError("submit", 0, vk.ErrorDeviceLost), ErrSwapchainOutOfDate))

	var e *Error
	require.True(t, errors.As(errors.Wrap(err, "frame"), &e))
	assert.Equal(t, vk.ErrorOutOfDate, e.Result)
	assert.Equal(t, "acquire", e.Op)
	assert.Equal(t, 0, e.Frame)

	assert.True(t, errors.Is(configError("select adapter", ErrNoSuitableDevice), ErrNoSuitableDevice))
	assert.Equal(t, ErrNoSuitableDevice, errors.Cause(configError("select adapter", ErrNoSuitableDevice)))
}

func TestNewError(t *testing.T) {
	assert.NoError(t, NewError(vk.Success))

	err := NewError(vk.ErrorInitializationFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vulkan error")
	assert.Contains(t, err.Error(), "TestNewError")
}

func TestErrorNamesCallSite(t *testing.T) {
	err := resourceError("framebuffer", 1, vk.ErrorOutOfDeviceMemory)
	assert.Contains(t, err.Error(), "TestErrorNamesCallSite")
	assert.NotContains(t, err.Error(), "resourceError")

	err = steadyError("submit", 0, vk.ErrorDeviceLost)
	assert.Contains(t, err.Error(), "TestErrorNamesCallSite")
	assert.NotContains(t, err.Error(), "steadyError")
}
