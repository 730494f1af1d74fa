// Package command implements the self-delimiting record codec (§4.1):
// Set and Remove commands serialized as JSON values in a concatenated
// stream, decoded one at a time with the absolute byte offset of the
// next record reported after each one. The streaming shape mirrors
// the original implementation's use of a JSON deserializer that parses
// back-to-back values from a reader and reports the consumed offset —
// encoding/json's Decoder gives the same guarantee via InputOffset.
package command

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind distinguishes the two command variants.
type Kind string

const (
	KindSet    Kind = "Set"
	KindRemove Kind = "Remove"
)

// Command is a tagged Set{key,value} or Remove{key} record.
type Command struct {
	Kind  Kind
	Key   string
	Value string // unused when Kind == KindRemove
}

// NewSet builds a Set command.
func NewSet(key, value string) Command {
	return Command{Kind: KindSet, Key: key, Value: value}
}

// NewRemove builds a Remove command.
func NewRemove(key string) Command {
	return Command{Kind: KindRemove, Key: key}
}

// wireCommand is the on-disk/on-wire shape; Value is omitted for Remove
// so the serialized form matches what an internally-tagged enum would
// produce in the original implementation.
type wireCommand struct {
	Kind  Kind   `json:"Kind"`
	Key   string `json:"Key"`
	Value string `json:"Value,omitempty"`
}

// MarshalJSON encodes the command with an explicit Kind tag.
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCommand{Kind: c.Kind, Key: c.Key, Value: c.Value})
}

// UnmarshalJSON decodes a tagged command, rejecting unknown kinds so
// replay fails loudly on malformed or foreign data.
func (c *Command) UnmarshalJSON(data []byte) error {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindSet, KindRemove:
	default:
		return fmt.Errorf("command: unknown kind %q", w.Kind)
	}
	c.Kind = w.Kind
	c.Key = w.Key
	c.Value = w.Value
	return nil
}

// Writer encodes commands one after another into an append-only stream.
type Writer struct {
	enc *json.Encoder
}

// NewWriter wraps w for writing a stream of commands.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Encode writes one command to the stream.
func (w *Writer) Encode(cmd Command) error {
	return w.enc.Encode(cmd)
}

// Reader decodes commands one at a time from a stream, reporting the
// absolute byte offset immediately following each decoded record.
type Reader struct {
	dec *json.Decoder
}

// NewReader wraps r for streaming command decode.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Decode reads the next command from the stream and returns it along
// with the absolute offset of the first byte after it. It returns
// io.EOF (unwrapped) when the stream ends cleanly between records;
// any other error is a malformed-record error and is fatal to the
// caller's replay or connection.
func (r *Reader) Decode() (Command, int64, error) {
	var cmd Command
	if err := r.dec.Decode(&cmd); err != nil {
		if err == io.EOF {
			return Command{}, 0, io.EOF
		}
		return Command{}, 0, err
	}
	return cmd, r.dec.InputOffset(), nil
}
