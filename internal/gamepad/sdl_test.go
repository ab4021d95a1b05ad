package gamepad

import (
	"testing"

	"github.com/soar/padremap/internal/test"
)

func TestStandardMappingWithoutSubsystem(t *testing.T) {
	// nothing is open, so no joystick can have a gamepad layout
	test.ExpectFailure(t, standardMapping(1))
	test.ExpectFailure(t, standardMapping(0))
}
