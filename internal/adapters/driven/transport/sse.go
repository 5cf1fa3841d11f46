package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// Event is one server-sent event.
type Event struct {
	Type string
	Data []byte
}

// EventReader parses server-sent events from a stream.
type EventReader struct {
	reader *bufio.Reader
}

// NewEventReader creates an event reader over r.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{reader: bufio.NewReader(r)}
}

// Next returns the next event. Multiple data lines are joined with "\n".
// Returns io.EOF when the stream ends with no pending event.
func (r *EventReader) Next() (Event, error) {
	var ev Event
	var data [][]byte

	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			if errors.Is(err, io.EOF) && len(data) > 0 {
				ev.Data = bytes.Join(data, []byte("\n"))
				return ev, nil
			}
			return Event{}, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(data) > 0 {
				ev.Data = bytes.Join(data, []byte("\n"))
				return ev, nil
			}
			// Blank line without data resets the event type.
			ev.Type = ""
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte(":")):
			// comment
		case bytes.HasPrefix(line, []byte("event:")):
			ev.Type = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			value := line[len("data:"):]
			if len(value) > 0 && value[0] == ' ' {
				value = value[1:]
			}
			data = append(data, append([]byte(nil), value...))
		}
		// id: and retry: are not used.
	}
}
