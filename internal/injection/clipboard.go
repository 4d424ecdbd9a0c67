package injection

import (
	"fmt"

	"github.com/atotto/clipboard"
)

func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (install wl-clipboard, xclip or xsel)")
	}
	return clipboard.WriteAll(text)
}

// ClipboardAvailable reports whether a clipboard backend was found.
func ClipboardAvailable() error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (install wl-clipboard, xclip or xsel)")
	}
	return nil
}
