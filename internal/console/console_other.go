//go:build !windows

// Package console tells a double-clicked program from one started in a
// terminal. Outside Windows a program always has a terminal, or at least
// standard streams, and signals arrive through os/signal.
package console

// IsRunningFromConsole always returns true.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler does nothing; os/signal delivers interrupts.
func SetupConsoleHandler(onInterrupt func()) func() {
	return func() {}
}
