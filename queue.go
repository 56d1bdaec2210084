package vkframe

import vk "github.com/vulkan-go/vulkan"

// Optional holds a value that may be unset.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) HasValue() bool { return o.set }

// Get returns the value, or the zero value when unset.
func (o Optional[T]) Get() T { return o.value }

// QueueFamilyIndices records which queue families serve graphics and presentation.
type QueueFamilyIndices struct {
	Graphics Optional[uint32]
	Present  Optional[uint32]
}

// Complete reports whether both families were found. They may be the same index.
func (q QueueFamilyIndices) Complete() bool {
	return q.Graphics.HasValue() && q.Present.HasValue()
}

// Separate is true when presentation happens on a different family than graphics.
func (q QueueFamilyIndices) Separate() bool {
	return q.Complete() && q.Graphics.Get() != q.Present.Get()
}

// Unique returns the distinct family indices, graphics first.
func (q QueueFamilyIndices) Unique() []uint32 {
	var out []uint32
	if q.Graphics.HasValue() {
		out = append(out, q.Graphics.Get())
	}
	if q.Present.HasValue() {
		out = append(out, q.Present.Get())
	}
	return dedupe(out)
}

// FindQueueFamilies scans families in index order, recording the first graphics
// capable family and, independently, the first family presentSupport accepts.
// Scanning stops once both are known. families must already be dereferenced.
func FindQueueFamilies(families []vk.QueueFamilyProperties, presentSupport func(index uint32) bool) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i, family := range families {
		index := uint32(i)
		if !indices.Graphics.HasValue() && family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			indices.Graphics = Some(index)
		}
		if !indices.Present.HasValue() && presentSupport(index) {
			indices.Present = Some(index)
		}
		if indices.Complete() {
			break
		}
	}
	return indices
}

func queueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, families)
	for i := range families {
		families[i].Deref()
	}
	return families
}

// surfaceSupport returns the presentation oracle for gpu and surface.
func surfaceSupport(gpu vk.PhysicalDevice, surface vk.Surface) func(uint32) bool {
	return func(index uint32) bool {
		var supported vk.Bool32
		ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, index, surface, &supported)
		return !isError(ret) && supported.B()
	}
}

// queueCreateInfos requests one queue at full priority per unique family.
func queueCreateInfos(indices QueueFamilyIndices) []vk.DeviceQueueCreateInfo {
	unique := indices.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(unique))
	for _, family := range unique {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
