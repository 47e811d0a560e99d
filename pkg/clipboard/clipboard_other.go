//go:build !linux

package clipboard

import atotto "github.com/atotto/clipboard"

const ServeCommand = "__clipboard-serve"

type Payload struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
}

// WriteMultiFormat writes the plain alternative only; rich formats need the
// Wayland owner process.
func WriteMultiFormat(html, plain string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	return atotto.WriteAll(plain)
}

// ServeClipboard has nothing to serve outside Linux.
func ServeClipboard(p Payload) error {
	return nil
}
