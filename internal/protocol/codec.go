package protocol

import (
	"bytes"
	"encoding/json"
	"io"

	"chatd/internal/constants"
)

// LineReader extracts newline-delimited frames from a byte stream. It keeps
// a rolling buffer, reads in fixed-size chunks, and skips blank lines.
// Deciding whether a line is valid JSON is the caller's business.
type LineReader struct {
	r   io.Reader
	buf []byte
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r}
}

// Next returns the next non-blank line without its trailing newline. The
// returned slice is only valid until the following call.
func (lr *LineReader) Next() ([]byte, error) {
	for {
		if i := bytes.IndexByte(lr.buf, '\n'); i >= 0 {
			line := lr.buf[:i]
			lr.buf = lr.buf[i+1:]
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			return line, nil
		}

		chunk := make([]byte, constants.ReadChunkSize)
		n, err := lr.r.Read(chunk)
		if n > 0 {
			lr.buf = append(lr.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

// DecodeAction pulls the action field out of a raw request line. It reports
// false for unparseable JSON and for frames without an action, both of
// which the broker discards.
func DecodeAction(line []byte) (string, bool) {
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return "", false
	}
	if envelope.Action == "" {
		return "", false
	}
	return envelope.Action, true
}
