package offscreen

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"formatlink/pkg/logger"
)

// Command is the hidden subcommand that runs a document.
const Command = "__offscreen"

// DefaultGrace is how long Close waits before killing the helper.
const DefaultGrace = 2 * time.Second

// ExecLauncher runs each document as a child process speaking JSON lines on
// stdin and stdout.
type ExecLauncher struct {
	Path  string
	Args  []string
	Env   []string
	Grace time.Duration
}

// SelfLauncher re-executes the running binary.
func SelfLauncher() ExecLauncher {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return ExecLauncher{Path: exe, Args: []string{Command}}
}

func (l ExecLauncher) Create(_ context.Context) (Document, error) {
	cmd := exec.Command(l.Path, l.Args...)
	if l.Env != nil {
		cmd.Env = l.Env
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", l.Path, err)
	}

	grace := l.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	logger.Debug().Int("pid", cmd.Process.Pid).Msg("offscreen document created")
	return &execDocument{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		grace:  grace,
		exited: make(chan struct{}),
	}, nil
}

type execDocument struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	grace  time.Duration

	waitOnce  sync.Once
	closeOnce sync.Once
	exited    chan struct{}
	waitErr   error
}

func (d *execDocument) Send(ctx context.Context, m Message) (Reply, error) {
	line, err := marshalLine(m)
	if err != nil {
		return Reply{}, err
	}
	if _, err := d.stdin.Write(line); err != nil {
		return Reply{}, err
	}
	d.stdin.Close() //nolint:errcheck

	type result struct {
		reply Reply
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		r, err := readReply(d.stdout)
		ch <- result{r, err}
	}()

	select {
	case res := <-ch:
		return res.reply, res.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// readReply returns the first JSON object line, skipping anything else the
// child may print.
func readReply(r *bufio.Reader) (Reply, error) {
	for {
		line, err := r.ReadString('\n')
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "{") {
			var reply Reply
			if jerr := json.Unmarshal([]byte(trimmed), &reply); jerr != nil {
				return Reply{}, jerr
			}
			return reply, nil
		}
		if err != nil {
			if err == io.EOF {
				return Reply{}, io.ErrUnexpectedEOF
			}
			return Reply{}, err
		}
	}
}

func (d *execDocument) wait() {
	d.waitOnce.Do(func() {
		go func() {
			d.waitErr = d.cmd.Wait()
			close(d.exited)
		}()
	})
}

// Close ends the document: it closes stdin, waits up to the grace period
// and kills the process if it is still running.
func (d *execDocument) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.stdin.Close() //nolint:errcheck
		d.wait()
		select {
		case <-d.exited:
		case <-time.After(d.grace):
			logger.Warn().Int("pid", d.cmd.Process.Pid).Msg("offscreen document did not exit, killing")
			d.cmd.Process.Kill() //nolint:errcheck
			<-d.exited
		}
		err = d.waitErr
	})
	return err
}

// Serve is the document side: it reads one message from r, handles it and
// writes the reply to w.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h Handler) error {
	var m Message
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return fmt.Errorf("decode offscreen message: %w", err)
	}
	line, err := marshalLine(Handle(ctx, m, h))
	if err != nil {
		return err
	}
	_, err = w.Write(line)
	return err
}
