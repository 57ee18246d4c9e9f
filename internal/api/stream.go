package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/vxpredict/predict-tui/internal/logger"
)

const dataPrefix = "data: "

// SubscribeToStream opens the event stream for streamID and returns a channel
// of decoded events. The stream is read with a plain response body rather
// than a native event-stream connection so the bearer token can travel in a
// header.
//
// The channel is closed after a terminal event (done or error), after the
// reader hits end of input, or when ctx is cancelled. Transport failures
// mid-stream surface as a synthesized error event before the close, so a
// consumer that finalizes on terminal events or on close never hangs on a
// perpetual streaming indicator. There is no retry, reconnection or
// resume-from-offset.
func (c *Client) SubscribeToStream(ctx context.Context, streamID string) (<-chan StreamEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/streams/"+streamID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setAuthHeader(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.handleUnauthorized()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	events := make(chan StreamEvent, 64)

	go func() {
		defer close(events)
		defer resp.Body.Close()
		c.readStream(ctx, resp.Body, events)
	}()

	return events, nil
}

// readStream consumes the response body chunk by chunk, splits the rolling
// buffer on newlines and dispatches each complete data frame in arrival
// order. The trailing fragment after the last newline stays in the buffer
// until more bytes arrive, so frames split across chunk reads (including
// multi-byte characters straddling a boundary) are reassembled before
// decoding.
func (c *Client) readStream(ctx context.Context, body io.Reader, events chan<- StreamEvent) {
	buf := make([]byte, 4096)
	var pending []byte

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				idx := bytes.IndexByte(pending, '\n')
				if idx < 0 {
					break
				}
				line := pending[:idx]
				pending = pending[idx+1:]

				ev, ok := decodeLine(line)
				if !ok {
					continue
				}
				if !emit(ctx, events, ev) {
					return
				}
				if ev.Terminal() {
					return
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				c.flush(ctx, pending, events)
			} else {
				emit(ctx, events, StreamEvent{Type: EventError, Message: err.Error()})
			}
			return
		}
	}
}

// flush handles end of input: a leftover fragment that already looks like a
// complete data frame is dispatched, and unless the stream already said so
// a done event is synthesized so consumers always see a terminal event.
func (c *Client) flush(ctx context.Context, pending []byte, events chan<- StreamEvent) {
	if ev, ok := decodeLine(pending); ok {
		if !emit(ctx, events, ev) {
			return
		}
		if ev.Terminal() {
			return
		}
	}
	emit(ctx, events, StreamEvent{Type: EventDone})
}

// decodeLine parses one line of the stream. Blank lines, comment lines and
// anything without the data marker produce no event. A frame whose JSON does
// not parse is logged and dropped; it never aborts the stream.
func decodeLine(line []byte) (StreamEvent, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] == ':' {
		return StreamEvent{}, false
	}
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return StreamEvent{}, false
	}

	ev, err := parseEvent(line[len(dataPrefix):])
	if err != nil {
		logger.Debugf("dropping malformed stream frame: %v", err)
		return StreamEvent{}, false
	}
	return ev, true
}

// emit delivers one event unless the context has been cancelled.
func emit(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
