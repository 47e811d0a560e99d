package host

import (
	"context"

	"formatlink/pkg/clip"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/offscreen"
)

// Copier puts rendered text on the clipboard and returns the outcome name.
type Copier interface {
	Copy(ctx context.Context, r linkfmt.Rendered, notify bool) (string, error)
}

// ClipCopier copies in-process with a fresh Clip per request.
type ClipCopier struct {
	Platform clip.Platform
}

func (c ClipCopier) Copy(ctx context.Context, r linkfmt.Rendered, notify bool) (string, error) {
	cl, err := clip.New(r.Text, r.MIME, notify)
	if err != nil {
		return "", err
	}
	p := c.Platform
	p.NotifyTitle = r.FormatTitle
	outcome, err := cl.Copy(ctx, p)
	if err != nil {
		return "", err
	}
	return outcome.String(), nil
}

// ProxyCopier copies through an offscreen document.
type ProxyCopier struct {
	Proxy *offscreen.Proxy
}

func (c ProxyCopier) Copy(ctx context.Context, r linkfmt.Rendered, notify bool) (string, error) {
	return c.Proxy.Copy(ctx, offscreen.CopyRequest{
		Content:     r.Text,
		MIME:        r.MIME,
		Notify:      notify,
		FormatTitle: r.FormatTitle,
	})
}
