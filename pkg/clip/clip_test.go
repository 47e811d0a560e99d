package clip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ferrors "formatlink/pkg/errors"
	"formatlink/pkg/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeText struct {
	writes []string
	err    error
}

func (f *fakeText) WriteText(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, text)
	return nil
}

type fakeEvent struct {
	data      map[string]string
	stopped   bool
	prevented bool
}

func (e *fakeEvent) SetData(mime, content string) { e.data[mime] = content }
func (e *fakeEvent) StopImmediatePropagation()    { e.stopped = true }
func (e *fakeEvent) PreventDefault()              { e.prevented = true }

// fakeEvents dispatches `events` copy events per ExecCopy.
type fakeEvents struct {
	mu        sync.Mutex
	listeners map[int]CopyListener
	next      int
	added     int
	events    int
	dispatch  []*fakeEvent
	execErr   error
}

func newFakeEvents(events int) *fakeEvents {
	return &fakeEvents{listeners: map[int]CopyListener{}, events: events}
}

func (f *fakeEvents) AddCopyListener(l CopyListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.added++
	f.listeners[id] = l
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeEvents) ExecCopy() error {
	if f.execErr != nil {
		return f.execErr
	}
	for i := 0; i < f.events; i++ {
		ev := &fakeEvent{data: map[string]string{}}
		f.dispatch = append(f.dispatch, ev)
		f.mu.Lock()
		snapshot := make([]CopyListener, 0, len(f.listeners))
		for _, l := range f.listeners {
			snapshot = append(snapshot, l)
		}
		f.mu.Unlock()
		for _, l := range snapshot {
			l(ev)
		}
	}
	return nil
}

func (f *fakeEvents) remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func TestNew_MIMEValidation(t *testing.T) {
	t.Parallel()

	_, err := New("x", "image/png", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrUnsupportedMimeType)

	c, err := New("  hello  ", " text/plain ", true)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", c.MIME())
	assert.Equal(t, "hello", c.Content())
	assert.True(t, c.Notify())
	assert.Equal(t, StateIdle, c.State())
}

func TestSetMIME_KeepsOldValueOnError(t *testing.T) {
	t.Parallel()

	c, err := New("x", "text/html", false)
	require.NoError(t, err)

	assert.ErrorIs(t, c.SetMIME("application/json"), ferrors.ErrUnsupportedMimeType)
	assert.Equal(t, "text/html", c.MIME())
}

func TestCopy_EmptyContentIsNoop(t *testing.T) {
	t.Parallel()

	text := &fakeText{}
	events := newFakeEvents(1)
	c, err := New("   ", "text/plain", true)
	require.NoError(t, err)

	outcome, err := c.Copy(context.Background(), Platform{Text: text, Events: events})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, outcome)
	assert.Empty(t, text.writes)
	assert.Zero(t, events.added)
	assert.Equal(t, StateDone, c.State())
}

func TestCopy_ZeroValueClipFails(t *testing.T) {
	t.Parallel()

	var c Clip
	c.SetContent("x")
	_, err := c.Copy(context.Background(), Platform{Text: &fakeText{}})
	assert.ErrorIs(t, err, ferrors.ErrUnsupportedMimeType)
	assert.Equal(t, StateFailed, c.State())
}

func TestCopy_DirectPath(t *testing.T) {
	t.Parallel()

	var notified []notify.Options
	n := notify.Func(func(_ context.Context, _ string, opts notify.Options) (bool, error) {
		notified = append(notified, opts)
		return true, nil
	})

	tests := []struct {
		name    string
		notify  bool
		want    Outcome
		notices int
	}{
		{name: "silent", notify: false, want: OutcomeCopied, notices: 0},
		{name: "notified", notify: true, want: OutcomeNotified, notices: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notified = nil
			text := &fakeText{}
			events := newFakeEvents(1)
			c, err := New("[a](https://x.test)", "text/plain", tt.notify)
			require.NoError(t, err)

			outcome, err := c.Copy(context.Background(), Platform{Text: text, Events: events, Notifier: n, NotifyTitle: "Markdown"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, []string{"[a](https://x.test)"}, text.writes)
			assert.Zero(t, events.added, "event path must not run")
			assert.Len(t, notified, tt.notices)
			if tt.notices > 0 {
				assert.Equal(t, "Copied as Markdown", notified[0].Message)
			}
		})
	}
}

func TestCopy_DirectNotifyDeclined(t *testing.T) {
	t.Parallel()

	n := notify.Func(func(context.Context, string, notify.Options) (bool, error) { return false, nil })
	c, err := New("x", "text/plain", true)
	require.NoError(t, err)

	outcome, err := c.Copy(context.Background(), Platform{Text: &fakeText{}, Notifier: n})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotifyDeclined, outcome)
}

func TestCopy_DirectWriteErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("no display")
	c, err := New("x", "text/plain", false)
	require.NoError(t, err)

	_, err = c.Copy(context.Background(), Platform{Text: &fakeText{err: boom}, Events: newFakeEvents(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ferrors.IsExitCode(err, ferrors.ExitCodeClipboard))
	assert.Equal(t, StateFailed, c.State())
}

func TestCopy_HTMLUsesEventPath(t *testing.T) {
	t.Parallel()

	text := &fakeText{}
	events := newFakeEvents(1)
	c, err := New(`<a href="https://x.test">x</a>`, "text/html", false)
	require.NoError(t, err)

	outcome, err := c.Copy(context.Background(), Platform{Text: text, Events: events})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCopied, outcome)
	assert.Empty(t, text.writes, "direct path must not run for HTML")

	require.Len(t, events.dispatch, 1)
	ev := events.dispatch[0]
	assert.Equal(t, map[string]string{"text/html": `<a href="https://x.test">x</a>`}, ev.data)
	assert.True(t, ev.stopped)
	assert.True(t, ev.prevented)
	assert.Equal(t, 1, events.added)
	assert.Zero(t, events.remaining())
}

func TestCopy_PlainWithoutTextCapabilityUsesEventPath(t *testing.T) {
	t.Parallel()

	events := newFakeEvents(1)
	c, err := New("plain", "text/plain", false)
	require.NoError(t, err)

	_, err = c.Copy(context.Background(), Platform{Events: events})
	require.NoError(t, err)
	require.Len(t, events.dispatch, 1)
	assert.Equal(t, "plain", events.dispatch[0].data["text/plain"])
}

func TestCopy_ListenerFiresAtMostOnce(t *testing.T) {
	t.Parallel()

	events := newFakeEvents(2)
	c, err := New("x", "text/html", false)
	require.NoError(t, err)

	_, err = c.Copy(context.Background(), Platform{Events: events})
	require.NoError(t, err)

	require.Len(t, events.dispatch, 2)
	assert.Len(t, events.dispatch[0].data, 1)
	assert.Empty(t, events.dispatch[1].data, "second event must not be handled")
	assert.Equal(t, 1, events.added)
}

func TestCopy_EventPathNotifiesWithoutWaiting(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	done := make(chan string, 1)
	n := notify.Func(func(_ context.Context, _ string, opts notify.Options) (bool, error) {
		<-release
		done <- opts.Message
		return true, nil
	})

	c, err := New("x", "text/html", true)
	require.NoError(t, err)

	outcome, err := c.Copy(context.Background(), Platform{Events: newFakeEvents(1), Notifier: n, NotifyTitle: "hyperlink"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCopied, outcome)

	close(release)
	select {
	case msg := <-done:
		assert.Equal(t, "Copied as hyperlink", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never fired")
	}
}

func TestCopy_EventErrors(t *testing.T) {
	t.Parallel()

	t.Run("exec fails", func(t *testing.T) {
		events := newFakeEvents(1)
		events.execErr = errors.New("denied")
		c, _ := New("x", "text/html", false)

		_, err := c.Copy(context.Background(), Platform{Events: events})
		assert.True(t, ferrors.IsExitCode(err, ferrors.ExitCodeClipboard))
		assert.Zero(t, events.remaining(), "listener must be removed")
	})

	t.Run("event never delivered", func(t *testing.T) {
		events := newFakeEvents(0)
		c, _ := New("x", "text/html", false)

		_, err := c.Copy(context.Background(), Platform{Events: events})
		assert.ErrorIs(t, err, errNotDelivered)
		assert.Zero(t, events.remaining())
	})

	t.Run("no capability", func(t *testing.T) {
		c, _ := New("x", "text/html", false)
		_, err := c.Copy(context.Background(), Platform{Text: &fakeText{}})
		assert.True(t, ferrors.IsExitCode(err, ferrors.ExitCodeClipboard))
	})
}

func TestCopy_SingleUse(t *testing.T) {
	t.Parallel()

	text := &fakeText{}
	c, err := New("x", "text/plain", false)
	require.NoError(t, err)

	_, err = c.Copy(context.Background(), Platform{Text: text})
	require.NoError(t, err)

	_, err = c.Copy(context.Background(), Platform{Text: text})
	require.Error(t, err)
	assert.Len(t, text.writes, 1)
	assert.Equal(t, StateDone, c.State())
}
