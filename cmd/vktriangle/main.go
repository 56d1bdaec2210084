// Command vktriangle opens a window and draws a single triangle with vkframe.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"

	"github.com/andewx/vkframe"
	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/exp/slog"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	debug := flag.Bool("debug", false, "enable validation layers and the debug report callback")
	shaderRoot := flag.String("shaders", "", "directory shader paths are resolved against")
	flag.Parse()

	cfg := vkframe.DefaultConfig()
	logger := vkframe.NewLogger(os.Stderr, vkframe.ParseLevel(cfg.LogLevel))
	if *configPath != "" {
		var err error
		cfg, err = vkframe.LoadConfig(*configPath)
		vkframe.Fatal(logger, err)
	}
	if *debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	logger = vkframe.NewLogger(os.Stderr, vkframe.ParseLevel(cfg.LogLevel))

	vkframe.Fatal(logger, vkframe.InitGLFW())
	defer glfw.Terminate()

	window, err := vkframe.NewGLFWWindow(cfg.Width, cfg.Height, cfg.AppName)
	vkframe.Fatal(logger, err, glfw.Terminate)
	defer window.Destroy()

	engine, err := vkframe.New(cfg, window, vkframe.FileShaders{Root: *shaderRoot}, logger)
	vkframe.Fatal(logger, err, window.Destroy, glfw.Terminate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := engine.Run(ctx)
	if err := engine.Destroy(); err != nil {
		logger.Warn("teardown", slog.Any("error", err))
	}
	if runErr != nil && runErr != context.Canceled {
		vkframe.Fatal(logger, runErr, window.Destroy, glfw.Terminate)
	}
}
