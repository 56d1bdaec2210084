package vkframe

import (
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	DebugReportExtensionName = "VK_EXT_debug_report"
	ValidationLayerName      = "VK_LAYER_KHRONOS_validation"
)

// Requirements is a set of instance extensions and layers that must all be present.
type Requirements struct {
	Extensions []string
	Layers     []string
}

// Missing returns the names of requested that do not appear in supported, in request order.
// Matching is exact and case sensitive.
func Missing(requested, supported []string) []string {
	have := make(map[string]struct{}, len(supported))
	for _, name := range supported {
		have[name] = struct{}{}
	}
	var missing []string
	for _, name := range requested {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// CheckSupport fails closed: any requested name absent from supported is a
// configuration error naming every missing entry.
func CheckSupport(kind string, requested, supported []string) error {
	missing := Missing(requested, supported)
	if len(missing) == 0 {
		return nil
	}
	return configError("negotiate "+kind,
		errors.Errorf("unsupported %s: %s", kind, strings.Join(missing, ", ")))
}

// NegotiateInstance checks req against what the Vulkan loader reports.
func NegotiateInstance(req Requirements) error {
	if len(req.Extensions) > 0 {
		actual, err := InstanceExtensions()
		if err != nil {
			return configError("enumerate instance extensions", err)
		}
		if err := CheckSupport("instance extensions", req.Extensions, actual); err != nil {
			return err
		}
	}
	if len(req.Layers) > 0 {
		actual, err := ValidationLayers()
		if err != nil {
			return configError("enumerate layers", err)
		}
		if err := CheckSupport("layers", req.Layers, actual); err != nil {
			return err
		}
	}
	return nil
}

// queryList runs the two-call count-then-fill pattern shared by the
// vkEnumerate* and vkGet*s functions. The fill call is skipped for zero items.
func queryList[T any](query func(count *uint32, list []T) vk.Result) ([]T, vk.Result) {
	var count uint32
	if ret := query(&count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]T, count)
	if count == 0 {
		return list, vk.Success
	}
	if ret := query(&count, list); isError(ret) {
		return nil, ret
	}
	return list[:count], vk.Success
}

// enumerate lists records with queryList and maps each one to its name.
func enumerate[T any](query func(count *uint32, list []T) vk.Result, name func(*T) string) ([]string, error) {
	list, ret := queryList(query)
	if isError(ret) {
		return nil, newError(ret, 2)
	}
	names := make([]string, 0, len(list))
	for i := range list {
		names = append(names, name(&list[i]))
	}
	return names, nil
}

func extensionName(ext *vk.ExtensionProperties) string {
	ext.Deref()
	return vk.ToString(ext.ExtensionName[:])
}

// InstanceExtensions lists the instance extensions the loader exposes.
func InstanceExtensions() ([]string, error) {
	return enumerate(func(count *uint32, list []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateInstanceExtensionProperties("", count, list)
	}, extensionName)
}

// DeviceExtensions lists the extensions gpu supports.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	return enumerate(func(count *uint32, list []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateDeviceExtensionProperties(gpu, "", count, list)
	}, extensionName)
}

// ValidationLayers lists the instance layers installed on the system.
func ValidationLayers() ([]string, error) {
	return enumerate(vk.EnumerateInstanceLayerProperties, func(layer *vk.LayerProperties) string {
		layer.Deref()
		return vk.ToString(layer.LayerName[:])
	})
}
