package commands

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ruapotato/Flick-sub004/config"
	"github.com/ruapotato/Flick-sub004/devices"
	"github.com/zalando/go-keyring"
)

type DoctorInfo struct {
	FlickVersion     string `json:"flick_version"`
	OS               string `json:"os"`
	OSVersion        string `json:"os_version"`
	InputDir         string `json:"input_dir"`
	InputReadable    bool   `json:"input_readable"`
	TouchScreens     int    `json:"touchscreens"`
	InputError       string `json:"input_error,omitempty"`
	ConfigPath       string `json:"config_path"`
	ConfigFound      bool   `json:"config_found"`
	ConfigError      string `json:"config_error,omitempty"`
	WaylandDisplay   string `json:"wayland_display,omitempty"`
	X11Display       string `json:"x11_display,omitempty"`
	KeyringAvailable bool   `json:"keyring_available"`
	PasscodeSet      bool   `json:"passcode_set"`
}

// inputReadable reports whether at least one event node can be opened
func inputReadable(dir string) bool {
	nodes, _ := filepath.Glob(filepath.Join(dir, "event*"))
	for _, node := range nodes {
		f, err := os.Open(node)
		if err == nil {
			f.Close()
			return true
		}
	}
	return false
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		cmd := exec.Command("sw_vers", "-productVersion")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		// try reading /etc/os-release
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

// DoctorCommand performs system diagnostics and returns information about the environment
func DoctorCommand(version, configPath string) *CommandResponse {
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	info := DoctorInfo{
		FlickVersion:   version,
		OS:             runtime.GOOS,
		OSVersion:      getOSVersion(),
		InputDir:       devices.DefaultInputDir,
		ConfigPath:     configPath,
		WaylandDisplay: os.Getenv("WAYLAND_DISPLAY"),
		X11Display:     os.Getenv("DISPLAY"),
	}

	info.InputReadable = inputReadable(info.InputDir)
	screens, err := devices.ListTouchScreens(info.InputDir)
	if err != nil {
		info.InputError = err.Error()
	}
	info.TouchScreens = len(screens)

	if _, err := os.Stat(configPath); err == nil {
		info.ConfigFound = true
	}
	if cfg, err := config.Load(configPath); err != nil {
		info.ConfigError = err.Error()
	} else if err := cfg.Validate(); err != nil {
		info.ConfigError = err.Error()
	}

	_, err = keyring.Get(keyringService, keyringUser)
	switch {
	case err == nil:
		info.KeyringAvailable = true
		info.PasscodeSet = true
	case errors.Is(err, keyring.ErrNotFound):
		info.KeyringAvailable = true
	}

	return NewSuccessResponse(info)
}
