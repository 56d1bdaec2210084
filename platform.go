package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// RequiredDeviceExtensions must be supported by an adapter for it to be considered.
var RequiredDeviceExtensions = []string{vk.KhrSwapchainExtensionName}

// Adapter describes a physical device. The handle is owned by the instance.
type Adapter struct {
	Handle     vk.PhysicalDevice
	Index      int
	Name       string
	Type       vk.PhysicalDeviceType
	Extensions []string
	Families   QueueFamilyIndices
}

// Supports reports whether every name in required is among the adapter's extensions.
func (a Adapter) Supports(required []string) bool {
	return len(Missing(required, a.Extensions)) == 0
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}

// ScoreFunc ranks an adapter for SelectBest. Higher wins.
type ScoreFunc func(Adapter) int

// DefaultScore prefers discrete over integrated over virtual over CPU adapters.
func DefaultScore(a Adapter) int {
	switch a.Type {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 100
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 10
	case vk.PhysicalDeviceTypeCpu:
		return 1
	}
	return 0
}

// AdapterPolicy chooses one adapter among the suitable candidates.
// The zero value behaves like SelectLast.
type AdapterPolicy struct {
	name string
	pick func([]Adapter) int
}

func SelectFirst() AdapterPolicy {
	return AdapterPolicy{name: "first", pick: func([]Adapter) int { return 0 }}
}

// SelectLast picks the last suitable adapter in enumeration order.
func SelectLast() AdapterPolicy {
	return AdapterPolicy{name: "last", pick: func(c []Adapter) int { return len(c) - 1 }}
}

// SelectBest picks the highest scoring adapter; ties go to the earliest.
func SelectBest(score ScoreFunc) AdapterPolicy {
	if score == nil {
		score = DefaultScore
	}
	return AdapterPolicy{name: "best", pick: func(c []Adapter) int {
		best, bestScore := 0, score(c[0])
		for i := 1; i < len(c); i++ {
			if s := score(c[i]); s > bestScore {
				best, bestScore = i, s
			}
		}
		return best
	}}
}

func ParseAdapterPolicy(name string) (AdapterPolicy, error) {
	switch name {
	case "first":
		return SelectFirst(), nil
	case "last", "":
		return SelectLast(), nil
	case "best":
		return SelectBest(DefaultScore), nil
	}
	return AdapterPolicy{}, configError("parse adapter policy", errors.Errorf("unknown adapter policy %q", name))
}

func (p AdapterPolicy) String() string {
	if p.name == "" {
		return "last"
	}
	return p.name
}

// Pick applies the policy to candidates.
func (p AdapterPolicy) Pick(candidates []Adapter) (Adapter, error) {
	if len(candidates) == 0 {
		return Adapter{}, configError("select adapter", ErrNoSuitableDevice)
	}
	pick := p.pick
	if pick == nil {
		pick = SelectLast().pick
	}
	return candidates[pick(candidates)], nil
}

// FilterSuitable keeps the adapters supporting every required device extension.
func FilterSuitable(adapters []Adapter, required []string) []Adapter {
	var out []Adapter
	for _, a := range adapters {
		if a.Supports(required) {
			out = append(out, a)
		}
	}
	return out
}

// EnumerateAdapters lists every physical device along with its extensions and
// the queue families it offers for surface.
func EnumerateAdapters(instance vk.Instance, surface vk.Surface, logger *slog.Logger) ([]Adapter, error) {
	gpus, ret := queryList(func(count *uint32, list []vk.PhysicalDevice) vk.Result {
		return vk.EnumeratePhysicalDevices(instance, count, list)
	})
	if isError(ret) {
		return nil, configError("enumerate adapters", NewError(ret))
	}
	if len(gpus) == 0 {
		return nil, configError("enumerate adapters", ErrNoSuitableDevice)
	}

	adapters := make([]Adapter, 0, len(gpus))
	for i, gpu := range gpus {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(gpu, &props)
		props.Deref()

		extensions, err := DeviceExtensions(gpu)
		if err != nil {
			return nil, configError("enumerate device extensions", err)
		}
		a := Adapter{
			Handle:     gpu,
			Index:      i,
			Name:       vk.ToString(props.DeviceName[:]),
			Type:       props.DeviceType,
			Extensions: extensions,
			Families:   FindQueueFamilies(queueFamilyProperties(gpu), surfaceSupport(gpu, surface)),
		}
		logger.Info("adapter found",
			slog.Int("index", i),
			slog.String("name", a.Name),
			slog.String("type", deviceTypeName(a.Type)))
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// SelectAdapter enumerates adapters, keeps the suitable ones and lets policy choose.
// The chosen adapter must expose graphics and present queue families.
func SelectAdapter(instance vk.Instance, surface vk.Surface, policy AdapterPolicy, logger *slog.Logger) (*Adapter, error) {
	adapters, err := EnumerateAdapters(instance, surface, logger)
	if err != nil {
		return nil, err
	}
	chosen, err := policy.Pick(FilterSuitable(adapters, RequiredDeviceExtensions))
	if err != nil {
		return nil, err
	}
	if !chosen.Families.Complete() {
		return nil, configError("select adapter", errors.Wrap(ErrNoQueueFamily, chosen.Name))
	}
	logger.Info("adapter selected",
		slog.String("name", chosen.Name),
		slog.String("policy", policy.String()),
		slog.Int("graphics_family", int(chosen.Families.Graphics.Get())),
		slog.Int("present_family", int(chosen.Families.Present.Get())))
	return &chosen, nil
}
