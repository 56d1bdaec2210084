package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// LogicalDevice owns the vk.Device and the queues fetched from it.
type LogicalDevice struct {
	handle        vk.Device
	adapter       *Adapter
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
}

// deviceLayers returns the device level layers. Device layers are ignored by
// modern loaders but older implementations still honour them.
func deviceLayers(debug bool) []string {
	if debug {
		return []string{ValidationLayerName}
	}
	return nil
}

func NewLogicalDevice(adapter *Adapter, debug bool, logger *slog.Logger) (*LogicalDevice, error) {
	queueInfos := queueCreateInfos(adapter.Families)
	extensions := safeStrings(RequiredDeviceExtensions)
	layers := safeStrings(deviceLayers(debug))

	var device vk.Device
	ret := vk.CreateDevice(adapter.Handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &device)
	if isError(ret) {
		if debug {
			logger.Error("device creation failed", slog.String("adapter", adapter.Name), slog.Int("result", int(ret)))
		}
		return nil, resourceError("device", -1, ret)
	}

	d := &LogicalDevice{handle: device, adapter: adapter}
	vk.GetDeviceQueue(device, adapter.Families.Graphics.Get(), 0, &d.graphicsQueue)
	vk.GetDeviceQueue(device, adapter.Families.Present.Get(), 0, &d.presentQueue)
	logger.Debug("logical device created",
		slog.Int("queue_families", len(queueInfos)),
		slog.Bool("separate_present", adapter.Families.Separate()))
	return d, nil
}

func (d *LogicalDevice) Handle() vk.Device { return d.handle }

func (d *LogicalDevice) Adapter() *Adapter { return d.adapter }

func (d *LogicalDevice) GraphicsQueue() vk.Queue { return d.graphicsQueue }

func (d *LogicalDevice) PresentQueue() vk.Queue { return d.presentQueue }

func (d *LogicalDevice) Families() QueueFamilyIndices { return d.adapter.Families }

// WaitIdle blocks until the device has no outstanding work.
func (d *LogicalDevice) WaitIdle() error {
	if d.handle == nil {
		return nil
	}
	if ret := vk.DeviceWaitIdle(d.handle); isError(ret) {
		return steadyError("wait idle", -1, ret)
	}
	return nil
}

func (d *LogicalDevice) Destroy() {
	if d.handle != nil {
		vk.DestroyDevice(d.handle, nil)
		d.handle = nil
	}
}
