package infrastructure

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnsupported is returned when no clipboard utility is available.
var ErrClipboardUnsupported = errors.New("clipboard is not supported on this system")

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll replaces the clipboard contents with text.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboardWriteAll(text)
}
