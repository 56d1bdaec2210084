package vkframe

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Instance owns the vk.Instance and, in diagnostic mode, the debug report callback.
type Instance struct {
	handle        vk.Instance
	debugCallback vk.DebugReportCallback
	extensions    []string
	layers        []string
	debug         bool
}

// InstanceRequirements builds the extension and layer set for the window, adding
// the debug report extension and validation layer in diagnostic mode.
func InstanceRequirements(window Window, debug bool) Requirements {
	req := Requirements{Extensions: append([]string(nil), window.RequiredInstanceExtensions()...)}
	if debug {
		req.Extensions = append(req.Extensions, DebugReportExtensionName)
		req.Layers = append(req.Layers, ValidationLayerName)
	}
	req.Extensions = dedupe(req.Extensions)
	return req
}

// NewInstance negotiates capabilities and creates the Vulkan instance.
func NewInstance(info AppInfo, window Window, debug bool, logger *slog.Logger) (*Instance, error) {
	req := InstanceRequirements(window, debug)
	if err := NegotiateInstance(req); err != nil {
		return nil, err
	}

	extensions := safeStrings(req.Extensions)
	layers := safeStrings(req.Layers)

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        info.vulkan(),
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if isError(ret) {
		return nil, resourceError("instance", -1, ret)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, configError("init instance", err)
	}
	logger.Info("vulkan instance created",
		slog.String("app", info.Name),
		slog.Int("extensions", len(extensions)),
		slog.Int("layers", len(layers)))

	inst := &Instance{
		handle:     instance,
		extensions: req.Extensions,
		layers:     req.Layers,
		debug:      debug,
	}
	if debug {
		setDebugSink(logger)
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
			PfnCallback: dbgCallbackFunc,
		}, nil, &inst.debugCallback)
		if isError(ret) {
			vk.DestroyInstance(instance, nil)
			return nil, resourceError("debug report callback", -1, ret)
		}
		logger.Debug("debug report callback installed")
	}
	return inst, nil
}

func (i *Instance) Handle() vk.Instance { return i.handle }

func (i *Instance) Debug() bool { return i.debug }

func (i *Instance) Destroy() {
	if i.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debugCallback, nil)
		i.debugCallback = vk.NullDebugReportCallback
	}
	if i.handle != nil {
		vk.DestroyInstance(i.handle, nil)
		i.handle = nil
	}
}

// debugReportSeverity names the most severe flag set in flags.
func debugReportSeverity(flags vk.DebugReportFlags) string {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return "error"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return "warning"
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return "performance"
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return "debug"
	default:
		return "information"
	}
}

// dbgCallbackFunc logs every validation message to the error stream and never
// aborts the triggering call.
func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	sink().Error("validation layer: "+pMessage,
		slog.String("severity", debugReportSeverity(flags)),
		slog.String("layer", pLayerPrefix),
		slog.Int("code", int(messageCode)))
	return vk.Bool32(vk.False)
}
