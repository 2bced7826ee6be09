//go:build windows

package miniplayer

import (
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
)

const (
	gwlExStyle  int32 = -20
	wsExLayered       = 0x00080000
	wsExToolWin       = 0x00000080
	lwaAlpha          = 0x2

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010
)

// hwndTopmost is (HWND)-1.
const hwndTopmost = ^uintptr(0)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW          = user32DLL.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32DLL.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
	procSetWindowPos               = user32DLL.NewProc("SetWindowPos")
)

func applyNativeTopmost(window fyne.Window, opacity float64) {
	nativeWindow, ok := window.(driver.NativeWindow)
	if !ok {
		return
	}

	alpha := uint8(opacity * 255)
	nativeWindow.RunNative(func(context any) {
		var hwnd uintptr
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		default:
			return
		}
		if hwnd == 0 {
			return
		}

		style, _, _ := procGetWindowLongPtrW.Call(hwnd, int32ToUintptr(gwlExStyle))
		wanted := style | wsExLayered | wsExToolWin
		if wanted != style {
			procSetWindowLongPtrW.Call(hwnd, int32ToUintptr(gwlExStyle), wanted)
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), uintptr(lwaAlpha))
		procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize|swpNoActivate)
	})
}

func int32ToUintptr(value int32) uintptr {
	return uintptr(uint32(value))
}
