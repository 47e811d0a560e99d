package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner draws an activity indicator on stderr while a copy is pending.
// It stays silent when stderr is not a terminal so piped output is clean.
type Spinner struct {
	mu         sync.Mutex
	writer     io.Writer
	enabled    bool
	frames     []string
	frameIndex int
	message    string
	delay      time.Duration
	running    bool
	drawn      bool
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewSpinner creates a spinner on stderr with the default frames.
func NewSpinner(message string) *Spinner {
	fd := os.Stderr.Fd()
	return &Spinner{
		writer:  os.Stderr,
		enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		delay:   200 * time.Millisecond,
	}
}

// SetWriter redirects the spinner and forces it on. Used in tests.
func (s *Spinner) SetWriter(w io.Writer) {
	s.writer = w
	s.enabled = true
}

// SetDelay sets how long Start waits before drawing the first frame.
func (s *Spinner) SetDelay(d time.Duration) {
	s.delay = d
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running || !s.enabled {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.animate()
}

// Stop stops the spinner and clears its line if anything was drawn.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	if s.drawn {
		fmt.Fprint(s.writer, "\r\033[K")
	}
}

// SetMessage updates the spinner message
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) animate() {
	defer s.wg.Done()

	select {
	case <-s.stopChan:
		return
	case <-time.After(s.delay):
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		s.mu.Lock()
		frame := s.frames[s.frameIndex%len(s.frames)]
		message := s.message
		s.frameIndex++
		s.drawn = true
		s.mu.Unlock()

		fmt.Fprintf(s.writer, "\r%s %s", frame, message)

		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
		}
	}
}

// WithSpinner runs fn with a spinner showing message.
func WithSpinner(message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.Start()
	err := fn()
	spinner.Stop()
	return err
}
