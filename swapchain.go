package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Frame is the per-swapchain-image bundle. Image is borrowed from the
// presentation engine; the rest is owned and CommandBuffer is only ever
// recorded for this image.
type Frame struct {
	Index         uint32
	Image         vk.Image
	View          vk.ImageView
	Framebuffer   vk.Framebuffer
	CommandBuffer vk.CommandBuffer
}

// SurfaceSupport is a fresh query of what the surface accepts on an adapter.
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Swapchain owns the vk.Swapchain, its image views and one Frame per image.
type Swapchain struct {
	handle      vk.Swapchain
	format      vk.SurfaceFormat
	extent      vk.Extent2D
	presentMode vk.PresentMode
	frames      []*Frame
}

// ChooseSurfaceFormat prefers BGRA8 UNORM with sRGB non-linear colour space and
// otherwise takes the first reported format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, configError("choose surface format", errors.New("surface reports no formats"))
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode prefers mailbox. FIFO is always available so it is the fallback
// whether or not it was reported.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface's current extent unless it holds the
// undefined sentinel, in which case the requested size is clamped per axis.
func ChooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image above the minimum. A zero maximum means unbounded.
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// SharingFor returns concurrent sharing across both families when they differ.
func SharingFor(indices QueueFamilyIndices) (vk.SharingMode, []uint32) {
	if indices.Separate() {
		return vk.SharingModeConcurrent, []uint32{indices.Graphics.Get(), indices.Present.Get()}
	}
	return vk.SharingModeExclusive, nil
}

func QuerySurfaceSupport(gpu vk.PhysicalDevice, surface vk.Surface, logger *slog.Logger) (*SurfaceSupport, error) {
	var s SurfaceSupport
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &s.Capabilities)
	if isError(ret) {
		return nil, steadyError("query surface capabilities", -1, ret)
	}
	s.Capabilities.Deref()
	s.Capabilities.CurrentExtent.Deref()
	s.Capabilities.MinImageExtent.Deref()
	s.Capabilities.MaxImageExtent.Deref()

	s.Formats, ret = queryList(func(count *uint32, list []vk.SurfaceFormat) vk.Result {
		return vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, count, list)
	})
	if isError(ret) {
		return nil, steadyError("query surface formats", -1, ret)
	}
	for i := range s.Formats {
		s.Formats[i].Deref()
	}

	s.PresentModes, ret = queryList(func(count *uint32, list []vk.PresentMode) vk.Result {
		return vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, count, list)
	})
	if isError(ret) {
		return nil, steadyError("query present modes", -1, ret)
	}

	caps := s.Capabilities
	logger.Debug("surface capabilities",
		slog.Int("min_images", int(caps.MinImageCount)),
		slog.Int("max_images", int(caps.MaxImageCount)),
		slog.Int("current_width", int(caps.CurrentExtent.Width)),
		slog.Int("current_height", int(caps.CurrentExtent.Height)),
		slog.Int("supported_transforms", int(caps.SupportedTransforms)),
		slog.Int("composite_alpha", int(caps.SupportedCompositeAlpha)),
		slog.Int("usage_flags", int(caps.SupportedUsageFlags)),
		slog.Int("formats", len(s.Formats)),
		slog.Any("present_modes", s.PresentModes))
	return &s, nil
}

// NewSwapchain negotiates and creates a swapchain for surface at the requested size.
// old may be vk.NullSwapchain; when set it is handed to the driver for reuse but
// remains owned, and destroyed, by the caller.
func NewSwapchain(device *LogicalDevice, surface vk.Surface, width, height int,
	old vk.Swapchain, logger *slog.Logger) (*Swapchain, error) {

	support, err := QuerySurfaceSupport(device.Adapter().Handle, surface, logger)
	if err != nil {
		return nil, err
	}
	format, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return nil, err
	}
	presentMode := ChoosePresentMode(support.PresentModes)
	extent := ChooseExtent(support.Capabilities, uint32(width), uint32(height))
	imageCount := ChooseImageCount(support.Capabilities)
	sharing, families := SharingFor(device.Families())

	var handle vk.Swapchain
	ret := vk.CreateSwapchain(device.Handle(), &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         imageCount,
		ImageFormat:           format.Format,
		ImageColorSpace:       format.ColorSpace,
		ImageExtent:           extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		PreTransform:          support.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           presentMode,
		Clipped:               vk.True,
		OldSwapchain:          old,
	}, nil, &handle)
	if isError(ret) {
		return nil, resourceError("swapchain", -1, ret)
	}

	s := &Swapchain{
		handle:      handle,
		format:      format,
		extent:      extent,
		presentMode: presentMode,
	}

	images, ret := queryList(func(count *uint32, list []vk.Image) vk.Result {
		return vk.GetSwapchainImages(device.Handle(), handle, count, list)
	})
	if isError(ret) {
		s.Destroy(device.Handle())
		return nil, resourceError("swapchain images", -1, ret)
	}

	s.frames = make([]*Frame, 0, len(images))
	for i, image := range images {
		view, err := newImageView(device.Handle(), image, format.Format, i)
		if err != nil {
			s.Destroy(device.Handle())
			return nil, err
		}
		s.frames = append(s.frames, &Frame{Index: uint32(i), Image: image, View: view})
	}

	logger.Info("swapchain created",
		slog.Int("images", len(s.frames)),
		slog.Int("width", int(extent.Width)),
		slog.Int("height", int(extent.Height)),
		slog.Int("format", int(format.Format)),
		slog.Int("present_mode", int(presentMode)))
	return s, nil
}

func newImageView(device vk.Device, image vk.Image, format vk.Format, frame int) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, resourceError("image view", frame, ret)
	}
	return view, nil
}

func (s *Swapchain) Handle() vk.Swapchain { return s.handle }

func (s *Swapchain) Format() vk.SurfaceFormat { return s.format }

func (s *Swapchain) Extent() vk.Extent2D { return s.extent }

func (s *Swapchain) PresentMode() vk.PresentMode { return s.presentMode }

func (s *Swapchain) Frames() []*Frame { return s.frames }

// Destroy releases the image views and the swapchain. Frame resources must be
// freed first.
func (s *Swapchain) Destroy(device vk.Device) {
	for _, f := range s.frames {
		if f.View != vk.NullImageView {
			vk.DestroyImageView(device, f.View, nil)
			f.View = vk.NullImageView
		}
	}
	s.frames = nil
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, s.handle, nil)
		s.handle = vk.NullSwapchain
	}
}
