package vkframe

import (
	"context"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Engine owns every stage bundle, from the instance to the renderer. Each stage
// is built from the outputs of the ones before it and torn down in reverse.
// Only the swapchain-dependent bundles are replaced, by Recreate.
type Engine struct {
	cfg     Config
	window  Window
	shaders ShaderSource
	logger  *slog.Logger

	instance  *Instance
	surface   vk.Surface
	adapter   *Adapter
	device    *LogicalDevice
	swapchain *Swapchain
	pipeline  *PipelineBundle
	pool      *CommandPool
	syncs     *SyncManager
	driver    *frameContext
	renderer  *Renderer
	fps       *FrameCounter

	// rebuild runs after a resize or a retryable frame error. New sets it to Recreate.
	rebuild func() error
	// barrier is the idle barrier, the device's WaitIdle once a device exists.
	barrier func() error

	teardown Teardown
}

// New runs every setup stage. On failure whatever was already built is torn down.
func New(cfg Config, window Window, shaders ShaderSource, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := ParseAdapterPolicy(cfg.AdapterPolicy)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		window:  window,
		shaders: shaders,
		logger:  logger,
		fps:     NewFrameCounter(),
	}
	e.rebuild = e.Recreate
	if err := e.setup(policy); err != nil {
		return nil, e.abort(err)
	}
	return e, nil
}

// abort tears down a partially built engine and returns err, the setup failure.
func (e *Engine) abort(err error) error {
	if terr := e.teardown.Run(e.waitIdle); terr != nil {
		e.logger.Warn("teardown after failed setup", slog.Any("error", terr))
	}
	return err
}

func (e *Engine) setup(policy AdapterPolicy) error {
	instance, err := NewInstance(NewAppInfo(e.cfg.AppName), e.window, e.cfg.Debug, e.logger)
	if err != nil {
		return err
	}
	e.instance = instance
	e.teardown.Push("instance", instance.Destroy)

	surface, err := e.window.CreateSurface(instance.Handle())
	if err != nil {
		return err
	}
	e.surface = surface
	e.teardown.Push("surface", func() {
		vk.DestroySurface(instance.Handle(), surface, nil)
	})

	adapter, err := SelectAdapter(instance.Handle(), surface, policy, e.logger)
	if err != nil {
		return err
	}
	e.adapter = adapter

	device, err := NewLogicalDevice(adapter, e.cfg.Debug, e.logger)
	if err != nil {
		return err
	}
	e.device = device
	e.barrier = device.WaitIdle
	e.teardown.Push("device", device.Destroy)
	dev := device.Handle()

	width, height := e.window.FramebufferSize()
	swapchain, err := NewSwapchain(device, surface, width, height, vk.NullSwapchain, e.logger)
	if err != nil {
		return err
	}
	e.swapchain = swapchain
	e.teardown.Push("swapchain", func() {
		if e.swapchain != nil {
			e.swapchain.Destroy(dev)
		}
	})

	pipeline, err := BuildPipeline(dev, e.shaders, e.shaderPaths(), swapchain.Format().Format, swapchain.Extent())
	if err != nil {
		return err
	}
	e.pipeline = pipeline
	e.teardown.Push("pipeline", func() {
		if e.pipeline != nil {
			e.pipeline.Destroy(dev)
		}
	})

	pool, err := NewCommandPool(dev, adapter.Families.Graphics.Get())
	if err != nil {
		return err
	}
	e.pool = pool
	e.teardown.Push("command pool", func() { pool.Destroy(dev) })

	if err := AllocateFrameResources(dev, pool, pipeline, swapchain); err != nil {
		return err
	}
	e.teardown.Push("frame resources", func() {
		if e.swapchain != nil {
			FreeFrameResources(dev, pool, e.swapchain.Frames())
		}
	})

	syncs, err := NewSyncManager(dev, e.cfg.FramesInFlight)
	if err != nil {
		return err
	}
	e.syncs = syncs
	e.teardown.Push("sync objects", syncs.Destroy)

	e.driver = newFrameContext(device, swapchain, pipeline, e.cfg.ClearColor)
	e.renderer, err = NewRenderer(e.driver, syncs.Sets(), swapchain.Frames(), e.logger, e.cfg.Debug)
	return err
}

func (e *Engine) shaderPaths() ShaderPaths {
	return ShaderPaths{Vertex: e.cfg.VertexShader, Fragment: e.cfg.FragmentShader}
}

func (e *Engine) waitIdle() error {
	if e.barrier == nil {
		return nil
	}
	return e.barrier()
}

// waitForFramebuffer blocks while the window is minimized. ok is false when the
// window was closed before it got a drawable size back.
func (e *Engine) waitForFramebuffer() (width, height int, ok bool) {
	width, height = e.window.FramebufferSize()
	for width == 0 || height == 0 {
		if e.window.ShouldClose() {
			return 0, 0, false
		}
		e.window.WaitEvents()
		width, height = e.window.FramebufferSize()
	}
	return width, height, true
}

// Recreate rebuilds the swapchain and everything sized by it. The render pass
// and pipeline are rebuilt only when the surface format or extent changed.
// Instance and device persist. Nothing is rebuilt when the window closes while
// minimized; Run stops on the next ShouldClose check.
func (e *Engine) Recreate() error {
	width, height, ok := e.waitForFramebuffer()
	if !ok {
		return nil
	}
	if err := e.waitIdle(); err != nil {
		return err
	}
	dev := e.device.Handle()

	oldHandle := vk.NullSwapchain
	if old := e.swapchain; old != nil {
		FreeFrameResources(dev, e.pool, old.Frames())
		oldHandle = old.Handle()
		defer old.Destroy(dev)
	}
	swapchain, err := NewSwapchain(e.device, e.surface, width, height, oldHandle, e.logger)
	if err != nil {
		e.swapchain = nil
		return err
	}
	e.swapchain = swapchain

	if e.pipeline == nil || !e.pipeline.Matches(swapchain.Format().Format, swapchain.Extent()) {
		if e.pipeline != nil {
			e.pipeline.Destroy(dev)
			e.pipeline = nil
		}
		pipeline, err := BuildPipeline(dev, e.shaders, e.shaderPaths(), swapchain.Format().Format, swapchain.Extent())
		if err != nil {
			return err
		}
		e.pipeline = pipeline
	}

	if err := AllocateFrameResources(dev, e.pool, e.pipeline, swapchain); err != nil {
		return err
	}
	e.driver.swapchain = swapchain
	e.driver.pipeline = e.pipeline
	e.renderer.SetFrames(swapchain.Frames())

	e.logger.Info("swapchain recreated",
		slog.Int("width", int(swapchain.Extent().Width)),
		slog.Int("height", int(swapchain.Extent().Height)))
	return nil
}

// Run drives the render loop until the window closes, ctx is cancelled or a
// fatal error occurs. Retryable errors and window resizes trigger Recreate.
func (e *Engine) Run(ctx context.Context) error {
	for !e.window.ShouldClose() {
		select {
		case <-ctx.Done():
			if err := e.waitIdle(); err != nil {
				e.logger.Warn("idle barrier after cancel", slog.Any("error", err))
			}
			return ctx.Err()
		default:
		}
		e.window.PollEvents()

		err := e.renderer.DrawFrame()
		if IsFatal(err) {
			return err
		}
		if e.window.Resized() || err != nil {
			if err := e.rebuild(); err != nil {
				return err
			}
			continue
		}

		if stats, ok := e.fps.Tick(); ok {
			e.window.SetTitle(fmt.Sprintf("%s - %s", e.cfg.AppName, stats))
			e.logger.Debug("frame stats",
				slog.Float64("fps", stats.FPS),
				slog.Duration("frame_time", stats.FrameTime),
				slog.Uint64("frames", e.renderer.FrameCount()))
		}
	}
	return e.waitIdle()
}

// Destroy waits for the device to go idle and releases every resource in
// reverse creation order.
func (e *Engine) Destroy() error {
	err := e.teardown.Run(e.waitIdle)
	e.renderer = nil
	e.driver = nil
	e.swapchain = nil
	e.pipeline = nil
	e.device = nil
	e.barrier = nil
	return err
}

func (e *Engine) Adapter() *Adapter { return e.adapter }

func (e *Engine) Swapchain() *Swapchain { return e.swapchain }

func (e *Engine) Renderer() *Renderer { return e.renderer }
