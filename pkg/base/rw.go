package base

import (
	"bufio"
	"fmt"
)

// readBytesLimited reads from rb until delim is found, returning the bytes
// read including delim. It refuses to read past limit bytes, guarding
// against a peer that never sends the delimiter.
func readBytesLimited(rb *bufio.Reader, delim byte, limit int) ([]byte, error) {
	out := make([]byte, 0, 64)
	for {
		b, err := rb.ReadByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		if b == delim {
			return out, nil
		}
		if len(out) >= limit {
			return nil, fmt.Errorf("length exceeds %d bytes", limit)
		}
	}
}

func readByteEqual(rb *bufio.Reader, expected byte) error {
	b, err := rb.ReadByte()
	if err != nil {
		return err
	}
	if b != expected {
		return fmt.Errorf("expected 0x%.2x, got 0x%.2x", expected, b)
	}
	return nil
}
