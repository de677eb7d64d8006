package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

var writeClipboard = func(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard available (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.WriteAll(text)
}

func copyToClipboard(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("nothing to copy")
	}
	return writeClipboard(text)
}
