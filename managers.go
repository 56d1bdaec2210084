package vkframe

import vk "github.com/vulkan-go/vulkan"

// SyncSet is one frame-in-flight's synchronization: ImageAvailable is signalled by
// acquire, RenderFinished by the submit, and InFlight once the GPU finished the submit.
type SyncSet struct {
	Slot           int
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       vk.Fence
}

// SyncManager owns N sync sets, handed out round robin by frame counter.
// It is not thread-safe.
type SyncManager struct {
	device vk.Device
	sets   []*SyncSet
}

// NewSyncManager creates count sync sets. Fences start signalled so the first
// wait on each set returns immediately.
func NewSyncManager(device vk.Device, count int) (*SyncManager, error) {
	m := &SyncManager{device: device}
	for i := 0; i < count; i++ {
		s := &SyncSet{Slot: i}
		m.sets = append(m.sets, s)

		ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &s.ImageAvailable)
		if isError(ret) {
			m.Destroy()
			return nil, resourceError("image available semaphore", i, ret)
		}
		ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &s.RenderFinished)
		if isError(ret) {
			m.Destroy()
			return nil, resourceError("render finished semaphore", i, ret)
		}
		ret = vk.CreateFence(device, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &s.InFlight)
		if isError(ret) {
			m.Destroy()
			return nil, resourceError("in flight fence", i, ret)
		}
	}
	return m, nil
}

func (m *SyncManager) Sets() []*SyncSet { return m.sets }

func (m *SyncManager) Destroy() {
	for _, s := range m.sets {
		if s.InFlight != vk.NullFence {
			vk.DestroyFence(m.device, s.InFlight, nil)
		}
		if s.RenderFinished != vk.NullSemaphore {
			vk.DestroySemaphore(m.device, s.RenderFinished, nil)
		}
		if s.ImageAvailable != vk.NullSemaphore {
			vk.DestroySemaphore(m.device, s.ImageAvailable, nil)
		}
	}
	m.sets = nil
}
