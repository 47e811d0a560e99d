//go:build linux

package clipboard

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"syscall"

	"formatlink/pkg/clipboard/internal/wayland"
	"formatlink/pkg/logger"

	atotto "github.com/atotto/clipboard"
)

// ServeCommand is the hidden subcommand that owns the Wayland selection.
const ServeCommand = "__clipboard-serve"

// Payload is what the parent hands to the clipboard-owner process.
type Payload struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
}

// WriteMultiFormat copies html and plain together. On Wayland a detached
// owner process serves both; elsewhere only plain text is written.
func WriteMultiFormat(html, plain string) error {
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		if atotto.Unsupported {
			return ErrUnsupported
		}
		return atotto.WriteAll(plain)
	}
	return spawnClipboardServer(Payload{HTML: html, Plain: plain})
}

func spawnClipboardServer(p Payload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	cmd := exec.Command(exe, ServeCommand)
	cmd.Stdin = bytes.NewReader(payload)
	// New session so the owner outlives this process.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	logger.Debug().Int("pid", cmd.Process.Pid).Msg("clipboard owner started")
	return cmd.Process.Release()
}

// ServeClipboard runs in the owner process and blocks until another client
// takes the selection.
func ServeClipboard(p Payload) error {
	offers := wayland.Offers{
		"text/plain;charset=utf-8": []byte(p.Plain),
		"text/plain":               []byte(p.Plain),
		"UTF8_STRING":              []byte(p.Plain),
		"STRING":                   []byte(p.Plain),
	}
	if p.HTML != "" {
		offers["text/html"] = []byte(p.HTML)
	}
	return wayland.Serve(offers)
}
