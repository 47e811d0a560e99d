// Package host routes the messages a browser extension sends to the link
// formatter: copy requests for one or all tabs, content prompts and copy
// notifications. Serve speaks the native messaging framing on a pair of
// streams so the binary can be registered as a native messaging host.
package host

import (
	"context"
	"fmt"

	"formatlink/pkg/errors"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/logger"
	"formatlink/pkg/notify"
	"formatlink/pkg/store"
)

// WindowCloser closes the popup that sent a *Popup message.
type WindowCloser interface {
	CloseWindow(ctx context.Context) error
}

// HistoryRecorder keeps a record of finished copies. *store.Manager
// satisfies it.
type HistoryRecorder interface {
	AddHistory(e store.HistoryEntry) (store.HistoryEntry, error)
}

type Router struct {
	Engine   *linkfmt.Engine
	Copier   Copier
	Prompter linkfmt.Prompter
	Notifier notify.Notifier
	Windows  WindowCloser
	History  HistoryRecorder
	// Notify asks the copier to show a notification after each copy.
	Notify bool
}

// Handle processes one message and returns its result.
func (r *Router) Handle(ctx context.Context, m Message) (any, error) {
	return r.handle(ctx, m, r.Windows)
}

func (r *Router) handle(ctx context.Context, m Message, windows WindowCloser) (any, error) {
	key, err := m.Key()
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("key", key).Msg("handling message")

	switch key {
	case KeyExecuteCopy:
		return r.executeCopy(ctx, *m.ExecuteCopy)
	case KeyExecuteCopyAllTabs:
		return r.executeCopyAllTabs(ctx, *m.ExecuteCopyAllTabs)
	case KeyExecuteCopyPopup:
		defer r.closeWindow(ctx, windows)
		return r.executeCopy(ctx, *m.ExecuteCopyPopup)
	case KeyExecuteCopyAllTabsPopup:
		defer r.closeWindow(ctx, windows)
		return r.executeCopyAllTabs(ctx, *m.ExecuteCopyAllTabsPopup)
	case KeyPromptContent:
		return r.promptContent(ctx, m)
	case KeyNotifyOnCopy:
		return r.notifyOnCopy(ctx, m)
	}
	return nil, errors.ProtocolError(fmt.Sprintf("unhandled message key %q", key))
}

func (r *Router) closeWindow(ctx context.Context, windows WindowCloser) {
	if windows == nil {
		return
	}
	if err := windows.CloseWindow(context.WithoutCancel(ctx)); err != nil {
		logger.Warn().Err(err).Msg("closing popup window")
	}
}

func (r *Router) executeCopy(ctx context.Context, data linkfmt.CopyData) (CopyResult, error) {
	rendered, err := r.Engine.Render(ctx, data)
	if err != nil {
		return CopyResult{}, err
	}
	res, err := r.copy(ctx, rendered)
	if err != nil {
		return CopyResult{}, err
	}
	r.record(store.HistoryEntry{
		FormatID:    data.FormatID,
		FormatTitle: rendered.FormatTitle,
		MIME:        rendered.MIME,
		Text:        rendered.Text,
		URL:         data.URL,
		Title:       data.Title,
	}, res)
	return res, nil
}

func (r *Router) executeCopyAllTabs(ctx context.Context, tabs linkfmt.TabsCopyData) (CopyResult, error) {
	rendered, err := r.Engine.RenderTabs(ctx, tabs)
	if err != nil {
		return CopyResult{}, err
	}
	res, err := r.copy(ctx, rendered)
	if err != nil {
		return CopyResult{}, err
	}
	r.record(store.HistoryEntry{
		FormatID:    tabs.AllTabs[0].FormatID,
		FormatTitle: rendered.FormatTitle,
		MIME:        rendered.MIME,
		Text:        rendered.Text,
		Title:       fmt.Sprintf("%d tabs", len(tabs.AllTabs)),
	}, res)
	return res, nil
}

func (r *Router) copy(ctx context.Context, rendered linkfmt.Rendered) (CopyResult, error) {
	if r.Copier == nil {
		return CopyResult{}, errors.New(errors.ExitCodeClipboard, "no clipboard copier configured")
	}
	outcome, err := r.Copier.Copy(ctx, rendered, r.Notify)
	if err != nil {
		return CopyResult{}, err
	}
	return CopyResult{Text: rendered.Text, MIME: rendered.MIME, Outcome: outcome}, nil
}

// record stores e unless nothing was copied. Failures are logged only.
func (r *Router) record(e store.HistoryEntry, res CopyResult) {
	if r.History == nil || res.Text == "" || res.Outcome == "noop" {
		return
	}
	if _, err := r.History.AddHistory(e); err != nil {
		logger.Warn().Err(err).Msg("recording copy history")
	}
}

func (r *Router) promptContent(ctx context.Context, m Message) (string, error) {
	content, message, err := m.prompt()
	if err != nil {
		return "", err
	}
	if r.Prompter == nil {
		return content, nil
	}
	if message == "" {
		message = linkfmt.DefaultPromptMessage
	}
	return r.Prompter.PromptContent(ctx, content, message)
}

func (r *Router) notifyOnCopy(ctx context.Context, m Message) (bool, error) {
	title, ok, err := m.notifyTitle()
	if err != nil || !ok {
		return false, err
	}
	return notify.NotifyCopied(ctx, r.Notifier, title)
}
