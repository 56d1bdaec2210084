package vkframe

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Window is what the engine needs from the windowing system.
type Window interface {
	// RequiredInstanceExtensions lists the instance extensions surface creation depends on.
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// FramebufferSize is the current drawable size in pixels, used as the requested swapchain extent.
	FramebufferSize() (width, height int)
	ShouldClose() bool
	PollEvents()
	// WaitEvents blocks until at least one event arrives. Used while the window is minimized.
	WaitEvents()
	// Resized reports whether the framebuffer changed size since the last call, and clears the flag.
	Resized() bool
	SetTitle(title string)
}

// InitGLFW initializes GLFW and points the Vulkan loader at GLFW's proc address.
// Must be called from the main thread.
func InitGLFW() error {
	if err := glfw.Init(); err != nil {
		return configError("init glfw", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return configError("init glfw", errors.New("vulkan loader not found"))
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return configError("init vulkan", err)
	}
	return nil
}

type GLFWWindow struct {
	window  *glfw.Window
	resized bool
}

func NewGLFWWindow(width, height int, title string) (*GLFWWindow, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)

	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, configError("create window", err)
	}
	g := &GLFWWindow{window: w}
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		g.resized = true
	})
	return g, nil
}

func (g *GLFWWindow) RequiredInstanceExtensions() []string {
	return g.window.GetRequiredInstanceExtensions()
}

func (g *GLFWWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := g.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, &Error{Kind: ResourceCreation, Op: "create", Resource: "surface", Frame: -1, Err: err}
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (g *GLFWWindow) FramebufferSize() (int, int) {
	return g.window.GetFramebufferSize()
}

func (g *GLFWWindow) ShouldClose() bool {
	return g.window.ShouldClose()
}

func (g *GLFWWindow) PollEvents() {
	glfw.PollEvents()
}

func (g *GLFWWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (g *GLFWWindow) Resized() bool {
	r := g.resized
	g.resized = false
	return r
}

func (g *GLFWWindow) SetTitle(title string) {
	g.window.SetTitle(title)
}

func (g *GLFWWindow) Destroy() {
	g.window.Destroy()
}
