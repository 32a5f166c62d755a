package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when the platform has no usable clipboard
// (for example a headless Linux session without xclip or xsel).
var ErrUnavailable = errors.New("system clipboard unavailable")

// System is the platform clipboard. Tests replace Read and Write.
type System struct {
	Read  func() (string, error)
	Write func(string) error

	unsupported bool
}

// NewSystem returns the platform clipboard.
func NewSystem() *System {
	return &System{Read: clipboard.ReadAll, Write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Copy places text on the clipboard.
func (s *System) Copy(text string) error {
	if s.unsupported {
		return ErrUnavailable
	}
	if err := s.Write(text); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Paste reads the clipboard text.
func (s *System) Paste() (string, error) {
	if s.unsupported {
		return "", ErrUnavailable
	}
	text, err := s.Read()
	if err != nil {
		return "", errors.Join(ErrUnavailable, err)
	}
	return text, nil
}
