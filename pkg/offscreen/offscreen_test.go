package offscreen

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"
	"time"

	"formatlink/pkg/clip"
	"formatlink/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocument struct {
	reply   Reply
	sendErr error
	panics  bool
	sent    []Message
	closed  int
}

func (d *fakeDocument) Send(_ context.Context, m Message) (Reply, error) {
	d.sent = append(d.sent, m)
	if d.panics {
		panic("document crashed")
	}
	return d.reply, d.sendErr
}

func (d *fakeDocument) Close() error {
	d.closed++
	return nil
}

type fakeLauncher struct {
	doc       *fakeDocument
	createErr error
	created   int
}

func (l *fakeLauncher) Create(context.Context) (Document, error) {
	l.created++
	if l.createErr != nil {
		return nil, l.createErr
	}
	return l.doc, nil
}

func TestProxy_CopyClosesDocumentOnSuccess(t *testing.T) {
	t.Parallel()

	doc := &fakeDocument{reply: Reply{Outcome: "copied"}}
	p := &Proxy{Launcher: &fakeLauncher{doc: doc}}

	outcome, err := p.Copy(context.Background(), CopyRequest{Content: "x", MIME: clip.MIMEPlain})
	require.NoError(t, err)
	assert.Equal(t, "copied", outcome)
	assert.Equal(t, 1, doc.closed)
	require.Len(t, doc.sent, 1)
	assert.Equal(t, Target, doc.sent[0].Target)
	assert.Equal(t, "x", doc.sent[0].Copy.Content)
}

func TestProxy_CopyClosesDocumentOnFailure(t *testing.T) {
	t.Parallel()

	t.Run("reply error", func(t *testing.T) {
		doc := &fakeDocument{reply: Reply{Error: "unsupported", Code: int(errors.ExitCodeUnsupportedMime)}}
		p := &Proxy{Launcher: &fakeLauncher{doc: doc}}

		_, err := p.Copy(context.Background(), CopyRequest{Content: "x", MIME: "image/png"})
		require.Error(t, err)
		assert.True(t, errors.IsExitCode(err, errors.ExitCodeUnsupportedMime))
		assert.Equal(t, 1, doc.closed)
	})

	t.Run("send error", func(t *testing.T) {
		doc := &fakeDocument{sendErr: stderrors.New("pipe closed")}
		p := &Proxy{Launcher: &fakeLauncher{doc: doc}}

		_, err := p.Copy(context.Background(), CopyRequest{Content: "x", MIME: clip.MIMEPlain})
		require.Error(t, err)
		assert.True(t, errors.IsExitCode(err, errors.ExitCodeClipboard))
		assert.Equal(t, 1, doc.closed)
	})

	t.Run("panic", func(t *testing.T) {
		doc := &fakeDocument{panics: true}
		p := &Proxy{Launcher: &fakeLauncher{doc: doc}}

		assert.Panics(t, func() {
			_, _ = p.Copy(context.Background(), CopyRequest{Content: "x", MIME: clip.MIMEPlain})
		})
		assert.Equal(t, 1, doc.closed)
	})
}

func TestProxy_CreateFailure(t *testing.T) {
	t.Parallel()

	p := &Proxy{Launcher: &fakeLauncher{createErr: stderrors.New("no exe")}}
	_, err := p.Copy(context.Background(), CopyRequest{Content: "x", MIME: clip.MIMEPlain})
	require.Error(t, err)
	assert.True(t, errors.IsExitCode(err, errors.ExitCodeClipboard))
}

func TestHandle_RejectsOtherTargets(t *testing.T) {
	t.Parallel()

	called := false
	reply := Handle(context.Background(), Message{Target: "background"}, func(context.Context, CopyRequest) (clip.Outcome, error) {
		called = true
		return clip.OutcomeCopied, nil
	})
	assert.False(t, called)
	assert.Equal(t, int(errors.ExitCodeProtocol), reply.Code)
	assert.NotEmpty(t, reply.Error)
}

type memWriter struct{ text string }

func (w *memWriter) WriteText(_ context.Context, text string) error {
	w.text = text
	return nil
}

func TestServe_CopiesWithClip(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	in := strings.NewReader(`{"target":"offscreen","copy":{"content":"hello","mime":"text/plain"}}` + "\n")
	var out bytes.Buffer

	require.NoError(t, Serve(context.Background(), in, &out, ClipHandler(clip.Platform{Text: w})))
	assert.Equal(t, "hello", w.text)
	assert.JSONEq(t, `{"outcome":"copied"}`, out.String())
}

func TestServe_ReportsClipErrors(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(`{"target":"offscreen","copy":{"content":"hello","mime":"image/png"}}`)
	var out bytes.Buffer

	require.NoError(t, Serve(context.Background(), in, &out, ClipHandler(clip.Platform{Text: &memWriter{}})))
	assert.Contains(t, out.String(), `"code":4`)
}

const helperEnv = "FORMATLINK_OFFSCREEN_HELPER"

// TestHelperDocument is not a real test: ExecLauncher re-runs the test
// binary with it selected to act as a document process.
func TestHelperDocument(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		t.Skip("helper process only")
	}
	handler := func(_ context.Context, req CopyRequest) (clip.Outcome, error) {
		if req.Content == "" {
			return clip.OutcomeNoop, nil
		}
		return clip.OutcomeCopied, nil
	}
	if err := Serve(context.Background(), os.Stdin, os.Stdout, handler); err != nil {
		os.Exit(2)
	}
	os.Exit(0)
}

func TestExecLauncher_RoundTrip(t *testing.T) {
	t.Parallel()

	l := ExecLauncher{
		Path:  os.Args[0],
		Args:  []string{"-test.run=^TestHelperDocument$"},
		Env:   append(os.Environ(), helperEnv+"=1"),
		Grace: 5 * time.Second,
	}
	p := &Proxy{Launcher: l}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome, err := p.Copy(ctx, CopyRequest{Content: "hello", MIME: clip.MIMEPlain})
	require.NoError(t, err)
	assert.Equal(t, "copied", outcome)
}
