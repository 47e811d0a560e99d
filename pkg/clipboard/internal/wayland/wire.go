//go:build linux

// Package wayland is a minimal wlr-data-control client that owns the
// clipboard selection and answers paste requests from memory.
package wayland

import (
	"encoding/binary"
	"errors"
	"syscall"
)

var order = binary.LittleEndian

const headerSize = 8

var errClosed = errors.New("wayland: connection closed")

// message is one decoded event.
type message struct {
	sender  uint32
	opcode  uint16
	payload []byte
	fd      int // -1 when no descriptor came with the event
}

type conn struct {
	fd      int
	buf     []byte
	fdQueue []int
}

func dial(path string) (*conn, error) {
	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.Connect(fd, &syscall.SockaddrUnix{Name: path}); err != nil {
		syscall.Close(fd) //nolint:errcheck
		return nil, err
	}
	return &conn{fd: fd}, nil
}

func (c *conn) Close() error {
	return syscall.Close(c.fd)
}

// request writes one request; args are already encoded.
func (c *conn) request(object uint32, opcode uint16, args ...[]byte) error {
	size := headerSize
	for _, a := range args {
		size += len(a)
	}
	out := make([]byte, headerSize, size)
	order.PutUint32(out[0:], object)
	order.PutUint32(out[4:], uint32(size)<<16|uint32(opcode))
	for _, a := range args {
		out = append(out, a...)
	}
	_, err := syscall.Write(c.fd, out)
	return err
}

// next returns the next complete event, reading from the socket as needed.
func (c *conn) next() (message, error) {
	for {
		if m, ok := c.pop(); ok {
			return m, nil
		}
		if err := c.fill(); err != nil {
			return message{}, err
		}
	}
}

func (c *conn) pop() (message, bool) {
	if len(c.buf) < headerSize {
		return message{}, false
	}
	word := order.Uint32(c.buf[4:8])
	size := int(word >> 16)
	if size < headerSize || len(c.buf) < size {
		return message{}, false
	}
	m := message{
		sender:  order.Uint32(c.buf[0:4]),
		opcode:  uint16(word),
		payload: append([]byte(nil), c.buf[headerSize:size]...),
		fd:      -1,
	}
	c.buf = c.buf[size:]
	if len(c.fdQueue) > 0 {
		m.fd, c.fdQueue = c.fdQueue[0], c.fdQueue[1:]
	}
	return m, true
}

func (c *conn) fill() error {
	data := make([]byte, 4096)
	oob := make([]byte, syscall.CmsgSpace(8*4))
	n, oobn, _, _, err := syscall.Recvmsg(c.fd, data, oob, 0)
	if err != nil {
		return err
	}
	if n == 0 {
		return errClosed
	}
	c.buf = append(c.buf, data[:n]...)
	if oobn == 0 {
		return nil
	}
	msgs, err := syscall.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil
	}
	for i := range msgs {
		if fds, err := syscall.ParseUnixRights(&msgs[i]); err == nil {
			c.fdQueue = append(c.fdQueue, fds...)
		}
	}
	return nil
}

func uint32Arg(v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return b
}

// stringArg encodes length (with NUL), bytes, NUL, padding to 4 bytes.
func stringArg(s string) []byte {
	n := len(s) + 1
	b := make([]byte, 4+(n+3)&^3)
	order.PutUint32(b, uint32(n))
	copy(b[4:], s)
	return b
}

func readString(p []byte) (string, []byte, error) {
	if len(p) < 4 {
		return "", p, errors.New("wayland: short string header")
	}
	n := int(order.Uint32(p))
	p = p[4:]
	if n == 0 {
		return "", p, nil
	}
	padded := (n + 3) &^ 3
	if len(p) < padded {
		return "", p, errors.New("wayland: short string body")
	}
	return string(p[:n-1]), p[padded:], nil
}

func closeFD(fd int) {
	if fd >= 0 {
		syscall.Close(fd) //nolint:errcheck
	}
}
