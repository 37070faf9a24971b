package vulkan

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

// NativeWindow is implemented by platform windows Vulkan can present to.
type NativeWindow interface {
	metadata.Window
	RequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}) (uintptr, error)
}

// Instance is the Vulkan graphics instance. The native VkInstance is created
// with the first surface since the window system extensions it needs are
// only known once a window exists.
type Instance struct {
	config    metadata.RendererBackendConfig
	handle    vk.Instance
	allocator *vk.AllocationCallbacks
	surfaces  []*Surface
}

// NewInstance loads the Vulkan loader through glfw. The platform must
// already be initialized.
func NewInstance(config metadata.RendererBackendConfig) (*Instance, error) {
	if !glfw.VulkanSupported() {
		return nil, fmt.Errorf("%w: vulkan loader not found", core.ErrNoBackend)
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNoBackend, err)
	}
	core.LogDebug("Vulkan loader initialized.")
	return &Instance{config: config}, nil
}

func (i *Instance) Backends() metadata.Backend {
	return metadata.BackendVulkan
}

func (i *Instance) create(windowExtensions []string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(i.config.ApplicationName),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
		PEngineName:        VulkanSafeString(i.config.EngineName),
	}

	extensions := append([]string{}, windowExtensions...)
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			vk.KhrPortabilityEnumerationExtensionName,
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags = vk.InstanceCreateFlags(vk.InstanceCreateEnumeratePortabilityBit)
	}
	extensions = VulkanSafeStrings(extensions)
	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = extensions

	core.LogDebug("Required instance extensions: %v", windowExtensions)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, i.allocator, &instance); res != vk.Success {
		return fmt.Errorf("%w: vkCreateInstance: %s", core.ErrNoBackend, VulkanResultString(res))
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, i.allocator)
		return fmt.Errorf("%w: %w", core.ErrNoBackend, err)
	}
	i.handle = instance
	core.LogInfo("Vulkan Instance created.")
	return nil
}

func (i *Instance) CreateSurface(window metadata.Window) (metadata.SurfaceHandle, error) {
	nw, ok := window.(NativeWindow)
	if !ok {
		return nil, fmt.Errorf("%w: window %T exposes no native handle", core.ErrSurfaceCreation, window)
	}
	if i.handle == nil {
		if err := i.create(nw.RequiredInstanceExtensions()); err != nil {
			return nil, err
		}
	}

	ptr, err := nw.CreateWindowSurface(i.handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSurfaceCreation, err)
	}
	s := &Surface{
		instance: i,
		handle:   vk.SurfaceFromPointer(ptr),
	}
	i.surfaces = append(i.surfaces, s)
	core.LogDebug("Vulkan surface created.")
	return s, nil
}

// RequestAdapter picks the physical device best matching opts. Selection
// is synchronous; ctx is only checked before enumeration starts.
func (i *Instance) RequestAdapter(ctx context.Context, opts *metadata.AdapterOptions) (metadata.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrGraphicsAdapter, err)
	}
	if i.handle == nil {
		return nil, fmt.Errorf("%w: instance has no surface yet", core.ErrGraphicsAdapter)
	}
	if opts == nil {
		opts = &metadata.AdapterOptions{}
	}

	var surface vk.Surface
	if opts.CompatibleSurface != nil {
		s, ok := opts.CompatibleSurface.(*Surface)
		if !ok {
			return nil, fmt.Errorf("%w: surface %T does not belong to the vulkan backend", core.ErrGraphicsAdapter, opts.CompatibleSurface)
		}
		surface = s.handle
	}

	candidates, err := enumerateAdapters(i, surface)
	if err != nil {
		return nil, err
	}

	ranked := rankAdapters(candidates, opts.PowerPreference, opts.ForceFallbackAdapter)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: none of %d physical devices qualifies", core.ErrGraphicsAdapter, len(candidates))
	}
	selected := ranked[0]
	selected.logSelection()
	return selected, nil
}

// rankAdapters drops adapters the preference excludes and orders the rest,
// best first. Ties keep enumeration order.
func rankAdapters(adapters []*Adapter, pref metadata.PowerPreference, forceFallback bool) []*Adapter {
	var ranked []*Adapter
	for _, a := range adapters {
		if pref.Rank(a.info.DeviceType, forceFallback) >= 0 {
			ranked = append(ranked, a)
		}
	}
	sort.SliceStable(ranked, func(x, y int) bool {
		return pref.Rank(ranked[x].info.DeviceType, forceFallback) > pref.Rank(ranked[y].info.DeviceType, forceFallback)
	})
	return ranked
}

// Destroy releases the instance. Surfaces and devices must be gone already.
func (i *Instance) Destroy() {
	for _, s := range i.surfaces {
		s.Destroy()
	}
	i.surfaces = nil
	if i.handle != nil {
		vk.DestroyInstance(i.handle, i.allocator)
		i.handle = nil
		core.LogDebug("Vulkan instance destroyed.")
	}
}
