//go:build windows

package vulkan

import "golang.org/x/sys/windows"

// defaultDisplayHandle returns the process HINSTANCE, used when the
// caller passes a zero display handle to CreateSurface.
func defaultDisplayHandle() uintptr {
	h, err := windows.GetModuleHandle(nil)
	if err != nil {
		return 0
	}
	return uintptr(h)
}
