// Package offscreen runs a copy in a short-lived helper "document" when the
// calling context may not touch the clipboard itself. The caller creates a
// document, sends it one copy message, and always closes it afterwards.
package offscreen

import (
	"context"
	"encoding/json"
	"fmt"

	"formatlink/pkg/clip"
	"formatlink/pkg/errors"
	"formatlink/pkg/logger"
)

// Target marks messages meant for an offscreen document.
const Target = "offscreen"

// CopyRequest is the payload of a proxied copy.
type CopyRequest struct {
	Content     string `json:"content"`
	MIME        string `json:"mime"`
	Notify      bool   `json:"notify,omitempty"`
	FormatTitle string `json:"formatTitle,omitempty"`
}

type Message struct {
	Target string       `json:"target"`
	Copy   *CopyRequest `json:"copy,omitempty"`
}

// Reply is the document's answer. Code carries the error's exit code.
type Reply struct {
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func (r Reply) err() error {
	if r.Error == "" {
		return nil
	}
	code := errors.ExitCode(r.Code)
	if code == errors.ExitCodeSuccess {
		code = errors.ExitCodeGeneral
	}
	return errors.New(code, r.Error)
}

// Document is one offscreen helper.
type Document interface {
	Send(ctx context.Context, m Message) (Reply, error)
	Close() error
}

// Launcher creates documents.
type Launcher interface {
	Create(ctx context.Context) (Document, error)
}

// Proxy performs copies through a fresh document per request.
type Proxy struct {
	Launcher Launcher
}

// Copy creates a document, hands it req and tears it down whether the copy
// succeeded, failed or panicked.
func (p *Proxy) Copy(ctx context.Context, req CopyRequest) (string, error) {
	doc, err := p.Launcher.Create(ctx)
	if err != nil {
		return "", errors.NewWithError(errors.ExitCodeClipboard, "failed to create offscreen document", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("closing offscreen document")
		}
	}()

	reply, err := doc.Send(ctx, Message{Target: Target, Copy: &req})
	if err != nil {
		return "", errors.NewWithError(errors.ExitCodeClipboard, "offscreen document did not answer", err)
	}
	if err := reply.err(); err != nil {
		return "", err
	}
	return reply.Outcome, nil
}

// Handler performs the copy inside the document.
type Handler func(ctx context.Context, req CopyRequest) (clip.Outcome, error)

// ClipHandler copies req with a new Clip on platform p.
func ClipHandler(p clip.Platform) Handler {
	return func(ctx context.Context, req CopyRequest) (clip.Outcome, error) {
		c, err := clip.New(req.Content, req.MIME, req.Notify)
		if err != nil {
			return clip.OutcomeNoop, err
		}
		platform := p
		platform.NotifyTitle = req.FormatTitle
		return c.Copy(ctx, platform)
	}
}

// Handle answers one message. Messages for other targets are rejected.
func Handle(ctx context.Context, m Message, h Handler) Reply {
	if m.Target != Target || m.Copy == nil {
		e := errors.ProtocolError(fmt.Sprintf("unexpected message for target %q", m.Target))
		return Reply{Error: e.Message, Code: int(e.Code)}
	}
	outcome, err := h(ctx, *m.Copy)
	if err != nil {
		return Reply{Error: err.Error(), Code: int(errors.CodeOf(err))}
	}
	return Reply{Outcome: outcome.String()}
}

func marshalLine(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
