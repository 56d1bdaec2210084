//go:build vulkan

package vkframe

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/require"
)

const (
	testWidth  = 500
	testHeight = 500
)

// TestRender needs a display, a Vulkan driver and compiled shaders in
// $VKFRAME_SHADERS (vert.spv and frag.spv).
func TestRender(t *testing.T) {
	shaderRoot := os.Getenv("VKFRAME_SHADERS")
	if shaderRoot == "" {
		t.Skip("VKFRAME_SHADERS not set")
	}

	runtime.LockOSThread()
	require.NoError(t, InitGLFW())
	defer glfw.Terminate()

	window, err := NewGLFWWindow(testWidth, testHeight, "vkframe test")
	require.NoError(t, err)
	defer window.Destroy()

	cfg := DefaultConfig()
	cfg.Width, cfg.Height = testWidth, testHeight
	cfg.VertexShader, cfg.FragmentShader = "vert.spv", "frag.spv"
	cfg.FramesInFlight = 2
	cfg.Debug = testing.Verbose()

	engine, err := New(cfg, window, FileShaders{Root: shaderRoot}, NewLogger(os.Stderr, ParseLevel("debug")))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		window.PollEvents()
		if err := engine.Renderer().DrawFrame(); err != nil {
			require.False(t, IsFatal(err), "%+v", err)
			require.NoError(t, engine.Recreate())
		}
	}
	require.NoError(t, engine.Recreate())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, engine.Run(ctx), context.DeadlineExceeded)
	require.NoError(t, engine.Destroy())
}
