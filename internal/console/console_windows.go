// Package console tells a double-clicked program from one started in a
// terminal, and delivers Ctrl+C even while SDL holds the main thread.
package console

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

// IsRunningFromConsole reports whether the program was started from a
// terminal. A console-mode build that was double-clicked gives its console
// window back; a GUI-mode build started from a terminal gets a console of
// its own.
func IsRunningFromConsole() bool {
	fromExplorer := isLaunchedFromExplorer()

	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}

	if fromExplorer {
		return false
	}

	// AllocConsole rather than AttachConsole: a shared console confuses
	// input between the shell and this process
	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams points os.Stdout and friends at a console allocated
// after startup.
func redirectStdStreams() {
	stdout, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || stdout == 0 {
		return
	}
	stderr, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || stderr == 0 {
		return
	}

	os.Stdout = os.NewFile(uintptr(stdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(stderr), "/dev/stderr")
	if stdin, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && stdin != 0 {
		os.Stdin = os.NewFile(uintptr(stdin), "/dev/stdin")
	}

	log.SetOutput(os.Stderr)
}

func isLaunchedFromExplorer() bool {
	parent := parentProcessID(uint32(os.Getpid()))
	if parent == 0 {
		return false
	}
	return strings.EqualFold(filepath.Base(processImageName(parent)), "explorer.exe")
}

func parentProcessID(pid uint32) uint32 {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if entry.ProcessID == pid {
			return entry.ParentProcessID
		}
	}
	return 0
}

func processImageName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

var (
	handlerOnce sync.Once
	handlerFn   uintptr
	interrupt   func()
	fired       sync.Once
)

// SetupConsoleHandler calls onInterrupt once, on the first Ctrl+C or
// Ctrl+Break. The returned function registers the handler again; SDL
// replaces console handlers when it initialises.
func SetupConsoleHandler(onInterrupt func()) func() {
	handlerOnce.Do(func() {
		interrupt = onInterrupt
		handlerFn = windows.NewCallback(func(ctrlType uint32) uintptr {
			switch ctrlType {
			case windows.CTRL_C_EVENT, windows.CTRL_BREAK_EVENT:
				fired.Do(interrupt)
				return 1
			}
			return 0
		})
	})

	register := func() {
		if ret, _, _ := procSetConsoleCtrlHandler.Call(handlerFn, 1); ret == 0 {
			log.Printf("[WARN] Failed to set console control handler")
		}
	}
	register()
	return register
}
