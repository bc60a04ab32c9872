package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// eventPrefix marks lines that carry an event payload. Anything else on
// the wire (keep-alives, blank lines) is ignored.
const eventPrefix = "data: "

// Decoder turns the raw body of a streamed advisor response into a
// sequence of Events, preserving arrival order. An incomplete trailing
// line is buffered across reads, so chunk boundaries falling inside a
// frame never lose or corrupt events.
type Decoder struct {
	s *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	return &Decoder{s: s}
}

// Next returns the next decoded event. It returns io.EOF when the
// underlying transport closes cleanly. Lines that carry the event prefix
// but fail to parse as JSON are dropped: partial frames are expected at
// chunk boundaries and must not abort the stream.
func (d *Decoder) Next() (Event, error) {
	for d.s.Scan() {
		line := strings.TrimSpace(d.s.Text())
		if !strings.HasPrefix(line, eventPrefix) {
			continue
		}
		payload := line[len(eventPrefix):]
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}
		return ev, nil
	}
	if err := d.s.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// Decode drains the stream and returns every event in order. Mostly a
// convenience for tests and non-interactive callers.
func Decode(r io.Reader) ([]Event, error) {
	d := NewDecoder(r)
	var out []Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
}
