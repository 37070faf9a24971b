package vulkan

import (
	"context"
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

// Adapter is a physical device able to render and present to the surface it
// was selected for.
type Adapter struct {
	instance       *Instance
	physical       vk.PhysicalDevice
	info           metadata.AdapterInfo
	graphicsFamily uint32
	presentFamily  uint32
	extensions     map[string]bool
}

func enumerateAdapters(instance *Instance, surface vk.Surface) ([]*Adapter, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance.handle, &count, nil); res != vk.Success {
		return nil, resultError(core.ErrGraphicsAdapter, "vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no devices which support Vulkan were found", core.ErrGraphicsAdapter)
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance.handle, &count, devices); res != vk.Success {
		return nil, resultError(core.ErrGraphicsAdapter, "vkEnumeratePhysicalDevices", res)
	}

	var adapters []*Adapter
	for _, device := range devices {
		a, ok := inspectDevice(instance, device, surface)
		if ok {
			adapters = append(adapters, a)
		}
	}
	return adapters, nil
}

// inspectDevice reports whether device has a swapchain and a queue family
// for graphics and one for presenting to surface.
func inspectDevice(instance *Instance, device vk.PhysicalDevice, surface vk.Surface) (*Adapter, bool) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	a := &Adapter{
		instance: instance,
		physical: device,
		info: metadata.AdapterInfo{
			Name:       vk.ToString(properties.DeviceName[:]),
			Vendor:     properties.VendorID,
			Device:     properties.DeviceID,
			DeviceType: deviceType(properties.DeviceType),
			Backend:    metadata.BackendVulkan,
			Driver:     versionString(properties.DriverVersion),
			APIVersion: versionString(properties.ApiVersion),
		},
		extensions: deviceExtensions(device),
	}

	if !a.extensions[vk.KhrSwapchainExtensionName] {
		core.LogInfo("Device %q has no swapchain support, skipping.", a.info.Name)
		return nil, false
	}

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, families)

	graphics, present := -1, -1
	for i, family := range families {
		family.Deref()
		if family.QueueCount == 0 {
			continue
		}
		isGraphics := family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		canPresent := true
		if surface != vk.NullSurface {
			var supported vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supported)
			canPresent = supported.B()
		}
		// a family doing both is preferred so the swapchain stays exclusive
		if isGraphics && canPresent {
			graphics, present = i, i
			break
		}
		if isGraphics && graphics < 0 {
			graphics = i
		}
		if canPresent && present < 0 {
			present = i
		}
	}
	if graphics < 0 || present < 0 {
		core.LogInfo("Device %q lacks a graphics or present queue, skipping.", a.info.Name)
		return nil, false
	}
	a.graphicsFamily, a.presentFamily = uint32(graphics), uint32(present)
	return a, true
}

func deviceExtensions(device vk.PhysicalDevice) map[string]bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success {
		return nil
	}
	properties := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, properties); res != vk.Success {
		return nil
	}
	extensions := make(map[string]bool, count)
	for _, p := range properties {
		p.Deref()
		extensions[vk.ToString(p.ExtensionName[:])] = true
	}
	return extensions
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}

func (a *Adapter) Info() metadata.AdapterInfo {
	return a.info
}

func (a *Adapter) logSelection() {
	core.LogInfo("Selected device: %q", a.info.Name)
	core.LogInfo("GPU type is %s.", a.info.DeviceType)
	core.LogInfo("GPU Driver version: %s", a.info.Driver)
	core.LogInfo("Vulkan API version: %s", a.info.APIVersion)
	core.LogDebug("Graphics Family Index: %d", a.graphicsFamily)
	core.LogDebug("Present Family Index:  %d", a.presentFamily)
}

// RequestDevice creates the logical device with one queue per distinct
// family and a resettable command pool on the graphics family.
func (a *Adapter) RequestDevice(ctx context.Context, desc *metadata.DeviceDescriptor) (metadata.Device, metadata.Queue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrGraphicsDevice, err)
	}
	if desc == nil {
		desc = &metadata.DeviceDescriptor{}
	}

	families := []uint32{a.graphicsFamily}
	if a.presentFamily != a.graphicsFamily {
		families = append(families, a.presentFamily)
	}
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensions := []string{vk.KhrSwapchainExtensionName}
	if a.extensions[vk.KhrPortabilitySubsetExtensionName] {
		extensions = append(extensions, vk.KhrPortabilitySubsetExtensionName)
	}
	extensions = VulkanSafeStrings(extensions)

	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	d := &Device{
		adapter:   a,
		label:     desc.Label,
		allocator: a.instance.allocator,
	}
	if res := vk.CreateDevice(a.physical, &createInfo, d.allocator, &d.handle); res != vk.Success {
		return nil, nil, resultError(core.ErrGraphicsDevice, "vkCreateDevice", res)
	}
	core.LogInfo("Logical device %q created.", desc.Label)

	vk.GetDeviceQueue(d.handle, a.graphicsFamily, 0, &d.graphicsQueue)
	vk.GetDeviceQueue(d.handle, a.presentFamily, 0, &d.presentQueue)
	core.LogDebug("Queues obtained.")

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: a.graphicsFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(d.handle, &poolInfo, d.allocator, &d.graphicsPool); res != vk.Success {
		vk.DestroyDevice(d.handle, d.allocator)
		return nil, nil, resultError(core.ErrGraphicsDevice, "vkCreateCommandPool", res)
	}
	core.LogDebug("Graphics command pool created.")

	return d, &Queue{device: d}, nil
}

// Device is the logical device. It tracks the frame acquired last so that
// submissions can synchronize with the swapchain.
type Device struct {
	adapter   *Adapter
	label     string
	handle    vk.Device
	allocator *vk.AllocationCallbacks

	graphicsQueue vk.Queue
	presentQueue  vk.Queue
	graphicsPool  vk.CommandPool

	acquired *frameSync
}

func (d *Device) CreateCommandEncoder(label string) (metadata.CommandEncoder, error) {
	return newCommandEncoder(d, label)
}

func (d *Device) WaitIdle() error {
	if d.handle == nil {
		return nil
	}
	if res := vk.DeviceWaitIdle(d.handle); res != vk.Success {
		return resultError(core.ErrGraphicsDevice, "vkDeviceWaitIdle", res)
	}
	return nil
}

func (d *Device) Destroy() {
	if d.handle == nil {
		return
	}
	vk.DeviceWaitIdle(d.handle)
	d.acquired = nil

	core.LogDebug("Destroying command pools...")
	vk.DestroyCommandPool(d.handle, d.graphicsPool, d.allocator)
	d.graphicsPool = nil

	core.LogDebug("Destroying logical device...")
	vk.DestroyDevice(d.handle, d.allocator)
	d.handle = nil
	d.graphicsQueue, d.presentQueue = nil, nil
}

// Queue submits to the graphics queue of its device.
type Queue struct {
	device *Device
}

// Submit queues the command buffers. While a frame is acquired the
// submission waits for its image and signals its render-finished semaphore
// and fence. Otherwise the queue is drained before returning.
func (q *Queue) Submit(buffers ...metadata.CommandBuffer) error {
	d := q.device
	if d.handle == nil {
		return fmt.Errorf("%w: device %q destroyed", core.ErrGraphicsDevice, d.label)
	}

	handles := make([]vk.CommandBuffer, 0, len(buffers))
	owned := make([]*CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok || cb.device != d {
			return fmt.Errorf("command buffer %q does not belong to device %q", b.Label(), d.label)
		}
		if cb.state != COMMAND_BUFFER_STATE_RECORDING_ENDED {
			return fmt.Errorf("command buffer %q is not ready for submission", cb.label)
		}
		handles = append(handles, cb.handle)
		owned = append(owned, cb)
	}

	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(handles)),
		PCommandBuffers:    handles,
	}

	frame := d.acquired
	if frame == nil {
		if res := vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{info}, vk.NullFence); res != vk.Success {
			return resultError(core.ErrGraphicsDevice, "vkQueueSubmit", res)
		}
		if res := vk.QueueWaitIdle(d.graphicsQueue); res != vk.Success {
			return resultError(core.ErrGraphicsDevice, "vkQueueWaitIdle", res)
		}
		for _, cb := range owned {
			cb.free()
		}
		return nil
	}

	if err := frame.inFlight.Reset(); err != nil {
		return err
	}
	info.WaitSemaphoreCount = 1
	info.PWaitSemaphores = []vk.Semaphore{frame.imageAvailable}
	info.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	info.SignalSemaphoreCount = 1
	info.PSignalSemaphores = []vk.Semaphore{frame.renderFinished}

	if res := vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{info}, frame.inFlight.Handle); res != vk.Success {
		return resultError(core.ErrGraphicsDevice, "vkQueueSubmit", res)
	}
	for _, cb := range owned {
		cb.state = COMMAND_BUFFER_STATE_SUBMITTED
	}
	frame.pending = append(frame.pending, owned...)
	frame.submitted = true
	return nil
}
