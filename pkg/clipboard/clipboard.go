// Package clipboard connects the clip writer to the system clipboard.
//
// System is the direct text capability backed by atotto/clipboard.
// Dispatcher is the synchronous copy-event capability: listeners fill a copy
// event and the dispatcher commits its formats to the system clipboard. On
// Linux/Wayland rich payloads are served by a detached helper process that
// offers text/html and text/plain together, so pasting into rich-text apps
// keeps the link while plain editors get clean text.
package clipboard

import (
	"context"
	stderrors "errors"
	"sync"

	"formatlink/pkg/clip"
	"formatlink/pkg/htmltext"
	"formatlink/pkg/logger"

	atotto "github.com/atotto/clipboard"
)

var ErrUnsupported = stderrors.New("no system clipboard utility available")

// Available reports whether plain-text writes can reach the system clipboard.
func Available() bool {
	return !atotto.Unsupported
}

// System writes to the system clipboard.
type System struct{}

func (System) WriteText(_ context.Context, text string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	return atotto.WriteAll(text)
}

// WriteFormats writes html and plain alternatives; html may be empty.
func (System) WriteFormats(html, plain string) error {
	if html == "" {
		if atotto.Unsupported {
			return ErrUnsupported
		}
		return atotto.WriteAll(plain)
	}
	return WriteMultiFormat(html, plain)
}

// Sink commits the data of a copy event.
type Sink interface {
	WriteFormats(html, plain string) error
}

// Event is a copy event handed to listeners.
type Event struct {
	data      map[string]string
	stopped   bool
	prevented bool
}

func (e *Event) SetData(mime, content string) {
	if e.data == nil {
		e.data = make(map[string]string)
	}
	e.data[mime] = content
}

func (e *Event) StopImmediatePropagation() { e.stopped = true }

func (e *Event) PreventDefault() { e.prevented = true }

// Data returns the content stored for mime.
func (e *Event) Data(mime string) (string, bool) {
	v, ok := e.data[mime]
	return v, ok
}

type listener struct {
	fn      clip.CopyListener
	removed bool
}

// Dispatcher delivers copy events to registered listeners in registration
// order and commits the result to its Sink.
type Dispatcher struct {
	mu        sync.Mutex
	listeners []*listener
	sink      Sink
}

func NewDispatcher(sink Sink) *Dispatcher {
	return &Dispatcher{sink: sink}
}

func (d *Dispatcher) AddCopyListener(fn clip.CopyListener) func() {
	l := &listener{fn: fn}
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			l.removed = true
			for i, cur := range d.listeners {
				if cur == l {
					d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// Listeners returns the number of registered listeners.
func (d *Dispatcher) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// ExecCopy dispatches one copy event. Nothing is written unless a listener
// called PreventDefault, since there is no selection to fall back to.
func (d *Dispatcher) ExecCopy() error {
	d.mu.Lock()
	snapshot := make([]*listener, len(d.listeners))
	copy(snapshot, d.listeners)
	d.mu.Unlock()

	ev := &Event{}
	for _, l := range snapshot {
		d.mu.Lock()
		removed := l.removed
		d.mu.Unlock()
		if removed {
			continue
		}
		l.fn(ev)
		if ev.stopped {
			break
		}
	}

	if !ev.prevented || len(ev.data) == 0 {
		logger.Debug().Msg("copy event not handled")
		return nil
	}
	return d.commit(ev)
}

func (d *Dispatcher) commit(ev *Event) error {
	html, hasHTML := ev.Data(clip.MIMEHTML)
	plain, hasPlain := ev.Data(clip.MIMEPlain)
	if hasHTML && !hasPlain {
		plain = htmltext.ToText(html)
	}
	return d.sink.WriteFormats(html, plain)
}
