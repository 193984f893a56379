package models

import "strings"

// Browser identifies the client browser family
type Browser string

const (
	BrowserChrome  Browser = "Chrome"
	BrowserFirefox Browser = "Firefox"
	BrowserSafari  Browser = "Safari"
	BrowserUnknown Browser = "Unknown"
)

// OS identifies the client operating system
type OS string

const (
	OSWindows OS = "Windows"
	OSAndroid OS = "Android"
	OSIOS     OS = "iOS"
	OSMacOS   OS = "macOS"
	OSUnknown OS = "Unknown"
)

// DeviceClass distinguishes desktop from mobile clients
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "Desktop"
	DeviceMobile  DeviceClass = "Mobile"
)

// Environment describes the client context of a login attempt
type Environment struct {
	Browser Browser
	OS      OS
	Device  DeviceClass
}

// DetectEnvironment classifies a User-Agent string by substring matching
// in a fixed priority order. Chrome is checked before Safari because
// Chrome UAs also carry the "Safari" token.
func DetectEnvironment(userAgent string) Environment {
	env := Environment{
		Browser: BrowserUnknown,
		OS:      OSUnknown,
		Device:  DeviceDesktop,
	}

	switch {
	case strings.Contains(userAgent, "Chrome"):
		env.Browser = BrowserChrome
	case strings.Contains(userAgent, "Firefox"):
		env.Browser = BrowserFirefox
	case strings.Contains(userAgent, "Safari"):
		env.Browser = BrowserSafari
	}

	switch {
	case strings.Contains(userAgent, "Windows"):
		env.OS = OSWindows
	case strings.Contains(userAgent, "Android"):
		env.OS = OSAndroid
	case strings.Contains(userAgent, "iPhone"):
		env.OS = OSIOS
	case strings.Contains(userAgent, "Mac"):
		env.OS = OSMacOS
	}

	lower := strings.ToLower(userAgent)
	if strings.Contains(lower, "android") || strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") {
		env.Device = DeviceMobile
	}

	return env
}
