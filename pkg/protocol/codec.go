package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Frames are JSON documents terminated by a single '\n'. The size cap matches
// the server's decoder; an oversized frame is a fatal stream error because
// resynchronizing mid-stream is not possible with delimiter framing.
const MaxFrameSize = 64 * 1024

// WriteFrame encodes one envelope onto w, newline terminated.
func WriteFrame(w io.Writer, env *Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(b) > MaxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", len(b))
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// ReadFrame reads one newline-terminated envelope from r. The size cap is
// enforced while reading, so a stream that never sends the delimiter cannot
// buffer more than one frame's worth of bytes.
func ReadFrame(r *bufio.Reader) (*Envelope, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxFrameSize {
			return nil, fmt.Errorf("frame too large: %d bytes", len(line))
		}
		if err == nil {
			break
		}
		if err != bufio.ErrBufferFull {
			return nil, err
		}
	}
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &env, nil
}
