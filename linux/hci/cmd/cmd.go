package cmd

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ErrTooLong is returned when variable length parameters exceed what the
// command can carry.
var ErrTooLong = errors.New("cmd: parameters too long")

// Command ...
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP ...
type CommandRP interface {
	Unmarshal(b []byte) error
}

// Opcode group fields.
const (
	ogfHostCtl = 0x03
	ogfLECtl   = 0x08
)

var names = map[int]string{}

// Name returns the name of an opcode for logging.
func Name(op int) string {
	if n, ok := names[op]; ok {
		return n
	}
	return "Unknown"
}

func marshal(c Command, b []byte) error {
	buf := bytes.NewBuffer(b)
	buf.Reset()
	if buf.Cap() < c.Len() {
		return io.ErrShortBuffer
	}
	return binary.Write(buf, binary.LittleEndian, c)
}

func unmarshal(c CommandRP, b []byte) error {
	buf := bytes.NewBuffer(b)
	return binary.Read(buf, binary.LittleEndian, c)
}
