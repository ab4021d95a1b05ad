package engine

import (
	"os/exec"
)

// Executor starts external programs for Execute slots.
type Executor interface {
	Execute(path string, args ...string) error
}

// CommandExecutor starts programs as detached child processes. The engine
// does not wait for them.
type CommandExecutor struct{}

func (CommandExecutor) Execute(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
