package host

import (
	"context"
	"encoding/binary"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"formatlink/pkg/errors"
	"formatlink/pkg/logger"
)

const (
	// MaxInbound bounds one message from the extension.
	MaxInbound = 64 << 20
	// MaxOutbound is the largest reply the browser accepts.
	MaxOutbound = 1 << 20
)

// popupFlag records a CloseWindow request so it can ride on the reply.
type popupFlag struct {
	closed bool
}

func (p *popupFlag) CloseWindow(context.Context) error {
	p.closed = true
	return nil
}

// Serve reads length-prefixed JSON messages from in and writes one reply per
// message to out, until in is exhausted or ctx is done. A failing message
// produces an error reply and the loop continues.
func (r *Router) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := ReadFrame(in)
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				logger.Debug().Msg("native messaging stream closed")
				return nil
			}
			return err
		}

		reply := r.serveOne(ctx, frame)
		if err := WriteFrame(out, reply); err != nil {
			return err
		}
	}
}

func (r *Router) serveOne(ctx context.Context, frame []byte) (reply Reply) {
	var m Message
	if err := json.Unmarshal(frame, &m); err != nil {
		e := errors.NewWithError(errors.ExitCodeProtocol, "invalid message", err)
		logger.Error().Err(e).Msg("decoding native message")
		return Reply{Error: e.Error(), Code: int(e.Code)}
	}

	popup := &popupFlag{}
	defer func() {
		reply.CloseWindow = popup.closed
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("message handler panicked")
			reply.Error = fmt.Sprint(rec)
			reply.Code = int(errors.ExitCodeGeneral)
		}
	}()

	result, err := r.handle(ctx, m, popup)
	if err != nil {
		logger.Error().Err(err).Msg("handling native message")
		return Reply{Error: err.Error(), Code: int(errors.CodeOf(err))}
	}
	return Reply{Result: result}
}

// ReadFrame reads one message: a 4-byte little-endian length then the body.
func ReadFrame(in io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(in, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > MaxInbound {
		return nil, errors.ProtocolError(fmt.Sprintf("message of %d bytes exceeds limit", n))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(in, buf); err != nil {
		return nil, errors.NewWithError(errors.ExitCodeProtocol, "truncated message", err)
	}
	return buf, nil
}

// WriteFrame encodes v as JSON and writes it with its length prefix.
func WriteFrame(out io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if len(body) > MaxOutbound {
		body, err = json.Marshal(Reply{
			Error: fmt.Sprintf("reply of %d bytes exceeds limit", len(body)),
			Code:  int(errors.ExitCodeProtocol),
		})
		if err != nil {
			return err
		}
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(len(body))); err != nil {
		return err
	}
	_, err = out.Write(body)
	return err
}
