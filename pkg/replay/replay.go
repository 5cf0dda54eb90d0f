// Package replay reads and writes landmark recordings: one
// landmark.Payload JSON object per line.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

// maxLine fits a 478-point face with generous float precision.
const maxLine = 1 << 20

// LineError reports a malformed recording line.
type LineError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("replay: line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Reader decodes a recording.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	return &Reader{sc: sc}
}

// Next returns the next frame. Blank lines and lines starting with '#'
// are skipped. It returns io.EOF at the end of the recording.
func (r *Reader) Next() (landmark.Payload, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var p landmark.Payload
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return landmark.Payload{}, &LineError{Line: r.line, Err: err}
		}
		return p, nil
	}
	if err := r.sc.Err(); err != nil {
		return landmark.Payload{}, &LineError{Line: r.line + 1, Err: err}
	}
	return landmark.Payload{}, io.EOF
}

// ReadAll decodes every frame.
func ReadAll(r io.Reader) ([]landmark.Payload, error) {
	rd := NewReader(r)
	var out []landmark.Payload
	for {
		p, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
}

// Writer appends frames to a recording.
type Writer struct {
	enc *json.Encoder
}

// NewWriter creates a writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends one frame.
func (w *Writer) Write(p landmark.Payload) error {
	return w.enc.Encode(p)
}

// Delays returns the wait before each frame given their timestamps.
// Frames without timestamps, or going backwards, use fallback.
func Delays(frames []landmark.Payload, fallback time.Duration) []time.Duration {
	out := make([]time.Duration, len(frames))
	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1].TimestampMS, frames[i].TimestampMS
		if prev > 0 && cur > prev {
			out[i] = time.Duration(cur-prev) * time.Millisecond
		} else {
			out[i] = fallback
		}
	}
	return out
}
