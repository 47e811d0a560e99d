//go:build linux

package wayland

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Offers maps a MIME type to the bytes served for it.
type Offers map[string][]byte

// Object ids allocated by this client.
const (
	objDisplay uint32 = iota + 1
	objRegistry
	objSyncGlobals
	objSeat
	objManager
	objSource
	objDevice
	objSyncOwned
)

const (
	ifaceSeat    = "wl_seat"
	ifaceManager = "zwlr_data_control_manager_v1"
)

type session struct {
	c       *conn
	globals map[string]uint32
}

// Serve takes the selection and answers paste requests until another client
// replaces it or the compositor goes away.
func Serve(offers Offers) error {
	path, err := socketPath()
	if err != nil {
		return err
	}
	c, err := dial(path)
	if err != nil {
		return fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	defer c.Close()

	s := &session{c: c, globals: map[string]uint32{}}
	if err := s.discover(); err != nil {
		return err
	}
	if err := s.own(offers); err != nil {
		return err
	}
	return s.loop(offers)
}

func socketPath() (string, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", fmt.Errorf("wayland: XDG_RUNTIME_DIR not set")
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	return filepath.Join(dir, display), nil
}

// roundtrip sends wl_display.sync and handles events until it completes.
func (s *session) roundtrip(callback uint32, handle func(message)) error {
	if err := s.c.request(objDisplay, 0, uint32Arg(callback)); err != nil {
		return err
	}
	for {
		m, err := s.c.next()
		if err != nil {
			return err
		}
		closeFD(m.fd)
		if m.sender == callback && m.opcode == 0 {
			return nil
		}
		if handle != nil {
			handle(m)
		}
	}
}

func (s *session) discover() error {
	if err := s.c.request(objDisplay, 1, uint32Arg(objRegistry)); err != nil {
		return err
	}
	err := s.roundtrip(objSyncGlobals, func(m message) {
		if m.sender != objRegistry || m.opcode != 0 || len(m.payload) < 4 {
			return
		}
		iface, _, err := readString(m.payload[4:])
		if err != nil {
			return
		}
		if iface == ifaceSeat || iface == ifaceManager {
			s.globals[iface] = order.Uint32(m.payload)
		}
	})
	if err != nil {
		return err
	}
	if _, ok := s.globals[ifaceSeat]; !ok {
		return fmt.Errorf("wayland: %s not found", ifaceSeat)
	}
	if _, ok := s.globals[ifaceManager]; !ok {
		return fmt.Errorf("wayland: %s not found (compositor may not support wlr-data-control)", ifaceManager)
	}
	return nil
}

func (s *session) bind(iface string, version, id uint32) error {
	return s.c.request(objRegistry, 0,
		uint32Arg(s.globals[iface]),
		stringArg(iface),
		uint32Arg(version),
		uint32Arg(id),
	)
}

func (s *session) own(offers Offers) error {
	steps := []func() error{
		func() error { return s.bind(ifaceSeat, 1, objSeat) },
		func() error { return s.bind(ifaceManager, 2, objManager) },
		func() error { return s.c.request(objManager, 0, uint32Arg(objSource)) },
		func() error {
			for mime := range offers {
				if err := s.c.request(objSource, 0, stringArg(mime)); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return s.c.request(objManager, 1, uint32Arg(objDevice), uint32Arg(objSeat)) },
		func() error { return s.c.request(objDevice, 0, uint32Arg(objSource)) },
		func() error { return s.roundtrip(objSyncOwned, nil) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// loop serves data_control_source.send (0) until cancelled (1).
func (s *session) loop(offers Offers) error {
	for {
		m, err := s.c.next()
		if err != nil {
			// The compositor hung up; nothing left to own.
			return nil
		}
		if m.sender != objSource {
			closeFD(m.fd)
			continue
		}
		switch m.opcode {
		case 0:
			mime, _, _ := readString(m.payload)
			if data, ok := offers[mime]; ok && m.fd >= 0 {
				syscall.Write(m.fd, data) //nolint:errcheck
			}
			closeFD(m.fd)
		case 1:
			closeFD(m.fd)
			return nil
		default:
			closeFD(m.fd)
		}
	}
}
