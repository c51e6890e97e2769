package commands

import (
	"github.com/ruapotato/Flick-sub004/devices"
)

// DeviceInfo is a touchscreen found on the system
type DeviceInfo struct {
	devices.TouchScreenInfo
	Attached bool `json:"attached"`
}

// DevicesCommand lists touchscreens under dir and marks the ones the running
// compositor reads from
func DevicesCommand(dir string) *CommandResponse {
	if dir == "" {
		dir = devices.DefaultInputDir
	}

	screens, err := devices.ListTouchScreens(dir)
	if err != nil {
		return NewErrorResponse(err)
	}

	attached := map[string]bool{}
	if deviceRegistry != nil {
		for _, info := range deviceRegistry.List() {
			attached[info.Path] = true
		}
	}

	list := make([]DeviceInfo, 0, len(screens))
	for _, info := range screens {
		list = append(list, DeviceInfo{TouchScreenInfo: info, Attached: attached[info.Path]})
	}

	return NewSuccessResponse(map[string]interface{}{
		"devices": list,
	})
}
