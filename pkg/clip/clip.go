// Package clip holds a pending clipboard payload and copies it with the best
// mechanism the platform offers.
package clip

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"formatlink/pkg/errors"
	"formatlink/pkg/logger"
	"formatlink/pkg/notify"
)

const (
	MIMEPlain = "text/plain"
	MIMEHTML  = "text/html"
)

type State int

const (
	StateIdle State = iota
	StateCopying
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCopying:
		return "copying"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome tells the caller what a successful Copy did.
type Outcome int

const (
	// OutcomeNoop: content was empty, nothing was written.
	OutcomeNoop Outcome = iota
	// OutcomeCopied: written; no notification awaited.
	OutcomeCopied
	// OutcomeNotified: written and the notification was shown.
	OutcomeNotified
	// OutcomeNotifyDeclined: written but the notifier reported false.
	OutcomeNotifyDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomeCopied:
		return "copied"
	case OutcomeNotified:
		return "notified"
	case OutcomeNotifyDeclined:
		return "notify-declined"
	default:
		return "unknown"
	}
}

var errNotDelivered = stderrors.New("copy event was not delivered to the listener")

// IsSupportedMIME reports whether mime can be copied.
func IsSupportedMIME(mime string) bool {
	return mime == MIMEPlain || mime == MIMEHTML
}

// Clip is a single-use clipboard payload.
type Clip struct {
	mu      sync.Mutex
	content string
	mime    string
	notify  bool
	state   State
}

// New validates mime and trims content. It fails with UnsupportedMimeType
// for anything but text/plain or text/html.
func New(content, mime string, notify bool) (*Clip, error) {
	c := &Clip{content: strings.TrimSpace(content), notify: notify}
	if err := c.SetMIME(mime); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clip) Content() string { return c.content }

func (c *Clip) MIME() string { return c.mime }

func (c *Clip) Notify() bool { return c.notify }

func (c *Clip) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetContent trims and stores content.
func (c *Clip) SetContent(content string) {
	c.content = strings.TrimSpace(content)
}

// SetMIME trims and validates mime. An invalid value leaves the old one.
func (c *Clip) SetMIME(mime string) error {
	m := strings.TrimSpace(mime)
	if !IsSupportedMIME(m) {
		return errors.UnsupportedMimeType(mime)
	}
	c.mime = m
	return nil
}

// Copy writes the payload once. Plain text goes through p.Text when it is
// available; everything else goes through a one-shot copy listener on
// p.Events. Exactly one of the two paths runs.
func (c *Clip) Copy(ctx context.Context, p Platform) (Outcome, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return OutcomeNoop, errors.ClipReused()
	}
	c.state = StateCopying
	c.mu.Unlock()

	outcome, err := c.copy(ctx, p)

	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
	} else {
		c.state = StateDone
	}
	c.mu.Unlock()
	return outcome, err
}

func (c *Clip) copy(ctx context.Context, p Platform) (Outcome, error) {
	if !IsSupportedMIME(c.mime) {
		return OutcomeNoop, errors.UnsupportedMimeType(c.mime)
	}
	if c.content == "" {
		return OutcomeNoop, nil
	}

	if p.Text != nil && c.mime == MIMEPlain {
		return c.copyDirect(ctx, p)
	}
	if p.Events == nil {
		return OutcomeNoop, errors.ClipboardError(stderrors.New("no clipboard capability available"))
	}
	return c.copyViaEvent(ctx, p)
}

func (c *Clip) copyDirect(ctx context.Context, p Platform) (Outcome, error) {
	if err := p.Text.WriteText(ctx, c.content); err != nil {
		return OutcomeNoop, errors.ClipboardError(err)
	}
	logger.Debug().Str("path", "direct").Int("bytes", len(c.content)).Msg("clipboard written")

	if !c.notify {
		return OutcomeCopied, nil
	}
	shown, err := notify.NotifyCopied(ctx, p.Notifier, p.NotifyTitle)
	if err != nil {
		return OutcomeCopied, err
	}
	if shown {
		return OutcomeNotified, nil
	}
	return OutcomeNotifyDeclined, nil
}

func (c *Clip) copyViaEvent(ctx context.Context, p Platform) (Outcome, error) {
	delivered := false
	var remove func()
	remove = p.Events.AddCopyListener(func(ev CopyEvent) {
		remove()
		ev.StopImmediatePropagation()
		ev.PreventDefault()
		ev.SetData(c.mime, c.content)
		delivered = true

		if c.notify {
			go func() {
				if _, err := notify.NotifyCopied(context.WithoutCancel(ctx), p.Notifier, p.NotifyTitle); err != nil {
					logger.Warn().Err(err).Msg("copy notification failed")
				}
			}()
		}
	})

	if err := p.Events.ExecCopy(); err != nil {
		remove()
		return OutcomeNoop, errors.ClipboardError(err)
	}
	if !delivered {
		remove()
		return OutcomeNoop, errors.ClipboardError(errNotDelivered)
	}

	logger.Debug().Str("path", "event").Str("mime", c.mime).Msg("clipboard written")
	return OutcomeCopied, nil
}
