package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	readChunk     = 64
	maxLineLength = 256
)

// Consume reads newline-terminated lines from r and applies each to state
// until ctx is cancelled or r returns an error.
//
// Zero-byte reads are tolerated, so r may be a serial port with a read
// timeout; the timeout bounds how long cancellation takes to be noticed.
// Lines longer than 256 bytes are dropped. Returns nil on cancellation or
// io.EOF.
func Consume(ctx context.Context, r io.Reader, state *State, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	handleLine := func(raw []byte) {
		text := string(bytes.TrimRight(raw, "\r"))
		event := state.Apply(text)
		if event == EventNone {
			logger.Debug("controller line ignored", "line", text)
			return
		}
		logger.Info("controller event", "event", event.String(), "line", text)
	}

	var (
		line     bytes.Buffer
		overflow bool
		buf      = make([]byte, readChunk)
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				if overflow {
					logger.Warn("controller line too long, dropped", "limit", maxLineLength)
				} else {
					handleLine(line.Bytes())
				}
				line.Reset()
				overflow = false
				continue
			}
			if line.Len() >= maxLineLength {
				overflow = true
				continue
			}
			line.WriteByte(b)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if line.Len() > 0 && !overflow {
					handleLine(line.Bytes())
				}
				return nil
			}
			if ctx.Err() != nil {
				// the reader was closed to unblock us
				return nil
			}
			return fmt.Errorf("reading controller output: %w", err)
		}
	}
}
