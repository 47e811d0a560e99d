// Package notify shows a short "copied" notification once a link lands on
// the clipboard.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"formatlink/pkg/logger"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Options mirrors the fields of a basic desktop notification.
type Options struct {
	IconURL string
	Message string
	Title   string
	Type    string
}

// Notifier creates a notification and reports whether it was shown.
type Notifier interface {
	Create(ctx context.Context, id string, opts Options) (bool, error)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, id string, opts Options) (bool, error)

func (f Func) Create(ctx context.Context, id string, opts Options) (bool, error) {
	return f(ctx, id, opts)
}

// NotifyCopied shows the standard notification for a finished copy.
func NotifyCopied(ctx context.Context, n Notifier, formatTitle string) (bool, error) {
	if n == nil {
		return false, nil
	}
	msg := "Link copied to the clipboard"
	if formatTitle != "" {
		msg = fmt.Sprintf("Copied as %s", formatTitle)
	}
	id := "copied-" + uuid.New().String()
	ok, err := n.Create(ctx, id, Options{
		Message: msg,
		Title:   "formatlink",
		Type:    "basic",
	})
	if err != nil {
		return false, err
	}
	logger.Debug().Str("id", id).Bool("shown", ok).Msg("notification")
	return ok, nil
}

// Terminal prints the notification as a colored line.
type Terminal struct {
	W io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{W: os.Stderr}
}

func (t *Terminal) Create(_ context.Context, _ string, opts Options) (bool, error) {
	green := color.New(color.FgGreen)
	if _, err := green.Fprint(t.W, "✓ "); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintln(t.W, opts.Message); err != nil {
		return false, err
	}
	return true, nil
}

// Desktop uses notify-send on Linux and osascript on macOS. It reports
// false, without error, when neither helper is available.
type Desktop struct {
	lookPath func(string) (string, error)
}

func NewDesktop() *Desktop {
	return &Desktop{lookPath: exec.LookPath}
}

func (d *Desktop) Create(ctx context.Context, _ string, opts Options) (bool, error) {
	name, args := d.command(opts)
	if name == "" {
		return false, nil
	}
	if _, err := d.lookPath(name); err != nil {
		logger.Debug().Str("helper", name).Msg("notification helper not found")
		return false, nil
	}
	if err := exec.CommandContext(ctx, name, args...).Run(); err != nil {
		return false, fmt.Errorf("notification via %s: %w", name, err)
	}
	return true, nil
}

func (d *Desktop) command(opts Options) (string, []string) {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		args := []string{"--app-name=formatlink"}
		if opts.IconURL != "" {
			args = append(args, "--icon="+opts.IconURL)
		}
		return "notify-send", append(args, opts.Title, opts.Message)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", opts.Message, opts.Title)
		return "osascript", []string{"-e", script}
	default:
		return "", nil
	}
}

// Fallback tries each notifier in turn until one reports it was shown.
type Fallback []Notifier

func (f Fallback) Create(ctx context.Context, id string, opts Options) (bool, error) {
	for _, n := range f {
		ok, err := n.Create(ctx, id, opts)
		if err != nil {
			logger.Warn().Err(err).Msg("notifier failed, trying next")
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
