package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

const maxLineBytes = 4 << 20

// ServeStdio reads newline-delimited requests from in and writes
// responses to out. Blocks until in is exhausted or ctx is cancelled.
// After cancellation the reader goroutine stays parked in Read until in
// is closed or yields a line.
func ServeStdio(ctx context.Context, s *Server, in io.Reader, out io.Writer) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read requests: %w", err)
				}
				return nil
			}
			line = l
		}

		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := WriteResponse(out, ParseErrorResponse(err)); err != nil {
				return err
			}
			continue
		}

		resp := s.Handle(ctx, req)
		if resp == nil {
			continue
		}
		if err := WriteResponse(out, resp); err != nil {
			return err
		}
	}
}
