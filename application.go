package vkframe

import vk "github.com/vulkan-go/vulkan"

const EngineName = "vkframe"

var (
	DefaultAppVersion = vk.MakeVersion(1, 0, 0)
	DefaultAPIVersion = vk.MakeVersion(1, 0, 0)
)

// AppInfo identifies the application to the driver.
type AppInfo struct {
	Name       string
	Version    uint32
	Engine     string
	APIVersion uint32
}

func NewAppInfo(name string) AppInfo {
	return AppInfo{
		Name:       name,
		Version:    DefaultAppVersion,
		Engine:     EngineName,
		APIVersion: TruncateVersion(DefaultAPIVersion),
	}
}

// TruncateVersion zeroes the patch component of a packed Vulkan version.
func TruncateVersion(v uint32) uint32 {
	return v &^ 0xFFF
}

func (a AppInfo) vulkan() *vk.ApplicationInfo {
	return &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(a.Name),
		ApplicationVersion: a.Version,
		PEngineName:        safeString(a.Engine),
		EngineVersion:      a.Version,
		ApiVersion:         TruncateVersion(a.APIVersion),
	}
}
