package gamepad

import (
	"errors"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/soar/padremap/internal/test"
)

func TestEvdevOpenFailureClosesWatch(t *testing.T) {
	s := NewEvdevSource()
	s.dir = t.TempDir()

	watch := -1
	listErr := errors.New("no listing")
	s.readDir = func(string) ([]os.DirEntry, error) {
		watch = s.fd
		return nil, listErr
	}

	err := s.Open()
	test.ExpectSuccess(t, errors.Is(err, listErr))
	test.Equate(t, s.fd, -1)
	if watch < 0 {
		t.Fatal("directory was never listed")
	}

	_, err = unix.FcntlInt(uintptr(watch), unix.F_GETFD, 0)
	test.ExpectSuccess(t, errors.Is(err, unix.EBADF))
}

func TestEvdevOpenEmptyDir(t *testing.T) {
	s := NewEvdevSource()
	s.dir = t.TempDir()

	if !test.ExpectSuccess(t, s.Open()) {
		return
	}
	test.Equate(t, len(s.Poll()), 0)
	test.ExpectSuccess(t, s.Close())
	test.Equate(t, s.fd, -1)
}
