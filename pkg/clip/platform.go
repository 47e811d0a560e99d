package clip

import (
	"context"

	"formatlink/pkg/notify"
)

// TextWriter is the direct clipboard capability: it writes plain text and
// returns once the write has finished.
type TextWriter interface {
	WriteText(ctx context.Context, text string) error
}

// CopyEvent is the payload of one synchronous copy request. Listeners fill it
// with data for one or more MIME types.
type CopyEvent interface {
	SetData(mime, content string)
	StopImmediatePropagation()
	PreventDefault()
}

// CopyListener handles a copy request.
type CopyListener func(ev CopyEvent)

// CopyEvents is the synchronous copy-intercept capability: listeners are
// registered first, then ExecCopy dispatches one copy event to them and
// commits whatever they put into it.
type CopyEvents interface {
	// AddCopyListener registers l. The returned func removes it and is safe
	// to call more than once.
	AddCopyListener(l CopyListener) (remove func())
	ExecCopy() error
}

// Platform bundles the capabilities a Clip may use. Text is optional; when
// it is nil, or the payload is not plain text, Events is used.
type Platform struct {
	Text     TextWriter
	Events   CopyEvents
	Notifier notify.Notifier
	// NotifyTitle names the format in the notification message.
	NotifyTitle string
}
