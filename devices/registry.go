package devices

import (
	"sort"
	"sync"

	"github.com/ruapotato/Flick-sub004/utils"
)

// idStride separates the touch id ranges of attached screens
const idStride = 32

type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]*TouchScreen
	// ids hands out an id base per path, reused when a device comes back
	ids    map[string]int32
	nextID int32
}

// NewDeviceRegistry creates a new device registry instance
func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]*TouchScreen),
		ids:     make(map[string]int32),
	}
}

// IDBase returns the touch id offset for the device at path
func (r *DeviceRegistry) IDBase(path string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if base, ok := r.ids[path]; ok {
		return base
	}
	base := r.nextID * idStride
	r.nextID++
	r.ids[path] = base
	return base
}

// Register adds a touchscreen to the registry for cleanup tracking. It
// returns false when a device with the same path is already registered.
func (r *DeviceRegistry) Register(device *TouchScreen) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[device.Path()]; exists {
		return false
	}
	r.devices[device.Path()] = device
	return true
}

// Remove closes and forgets the device at path
func (r *DeviceRegistry) Remove(path string) bool {
	r.mu.Lock()
	device, ok := r.devices[path]
	delete(r.devices, path)
	r.mu.Unlock()

	if !ok {
		return false
	}
	if err := device.Close(); err != nil {
		utils.Verbose("Error closing device %s: %v", path, err)
	}
	return true
}

func (r *DeviceRegistry) Get(path string) (*TouchScreen, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	device, ok := r.devices[path]
	return device, ok
}

// List returns the attached touchscreens sorted by path
func (r *DeviceRegistry) List() []TouchScreenInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TouchScreenInfo, 0, len(r.devices))
	for _, device := range r.devices {
		infos = append(infos, device.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Path < infos[j].Path
	})
	return infos
}

// SetOutputSize rescales every attached device
func (r *DeviceRegistry) SetOutputSize(width, height int32) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, device := range r.devices {
		device.SetOutputSize(width, height)
	}
}

// CleanupAll gracefully closes all registered devices
func (r *DeviceRegistry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.devices) == 0 {
		return
	}

	for path, device := range r.devices {
		if err := device.Close(); err != nil {
			utils.Verbose("Error cleaning up device %s: %v", path, err)
		}
	}

	// clear the registry
	r.devices = make(map[string]*TouchScreen)
}
