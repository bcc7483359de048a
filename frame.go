package sitebot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
)

// FrameType identifies the kind of a stream frame.
type FrameType string

// FrameType constants.
const (
	FrameChunk    FrameType = "chunk"
	FrameComplete FrameType = "complete"
	FrameError    FrameType = "error"
	FrameHandoff  FrameType = "handoff"
)

// DoneSentinel terminates every frame stream.
const DoneSentinel = "[DONE]"

// Frame is one event of a streamed chat response.
type Frame struct {
	Type         FrameType `json:"type"`
	Content      string    `json:"content"`
	FullResponse string    `json:"fullResponse,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// completeFrame is the wire form of a complete frame. fullResponse is
// always present, even for an empty stream.
type completeFrame struct {
	Type         FrameType `json:"type"`
	Content      string    `json:"content"`
	FullResponse string    `json:"fullResponse"`
}

// WriteFrame writes f as one "data: <json>" event.
func WriteFrame(w io.Writer, f Frame) error {
	var v any = f
	if f.Type == FrameComplete {
		v = completeFrame{Type: f.Type, Content: f.Content, FullResponse: f.FullResponse}
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", buf)
	return err
}

// WriteDone writes the terminal sentinel event.
func WriteDone(w io.Writer) error {
	_, err := io.WriteString(w, "data: "+DoneSentinel+"\n\n")
	return err
}

// ReadFrames decodes events from r until the sentinel or end of input.
// Lines without a "data:" prefix are ignored. A malformed event yields an
// EPARSE error and ends the sequence.
func ReadFrames(r io.Reader) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			data, ok := bytes.CutPrefix(line, []byte("data:"))
			if !ok {
				continue
			}
			data = bytes.TrimSpace(data)
			if string(data) == DoneSentinel {
				return
			}

			var f Frame
			if err := json.Unmarshal(data, &f); err != nil {
				yield(Frame{}, Errorf(EPARSE, "malformed frame: %s", truncate(string(data), 80)))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Frame{}, Errorf(EUNAVAILABLE, "read stream: %v", err))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
