package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Header layout. All multi-byte fields are network byte order.
const (
	HeaderSize = 16

	offType = 0
	offID   = 1
	offRole = 2
	offSize = 4
	offSec  = 8
	offNsec = 12
)

// MaxPayload is the largest payload a single packet can carry.
const MaxPayload = 1<<16 - 1

// ErrInvalidType reports a header whose type byte is outside the
// protocol's range. The connection cannot be resynchronized after it.
var ErrInvalidType = errors.New("invalid packet type")

// Timestamps are monotonic, relative to process start.
var start = time.Now()

// Packet is one protocol frame: a fixed-size header followed by an
// optional payload. Sec and Nsec are filled by WritePacket on send and
// carry the sender's values after ReadPacket.
type Packet struct {
	Type    Type
	ID      uint8
	Role    uint8
	Sec     uint32
	Nsec    uint32
	Payload []byte
}

// WritePacket marshals p into a fresh header, stamps the current
// monotonic time and writes header and payload as a single frame.
func WritePacket(w io.Writer, p *Packet) error {
	if len(p.Payload) > MaxPayload {
		return fmt.Errorf("payload too large: %d bytes", len(p.Payload))
	}

	elapsed := time.Since(start)
	p.Sec = uint32(elapsed / time.Second)
	p.Nsec = uint32(elapsed % time.Second)

	buf := make([]byte, HeaderSize+len(p.Payload))
	buf[offType] = byte(p.Type)
	buf[offID] = p.ID
	buf[offRole] = p.Role
	binary.BigEndian.PutUint16(buf[offSize:], uint16(len(p.Payload)))
	binary.BigEndian.PutUint32(buf[offSec:], p.Sec)
	binary.BigEndian.PutUint32(buf[offNsec:], p.Nsec)
	copy(buf[HeaderSize:], p.Payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

// ReadPacket reads one frame from r. A clean close between frames
// returns io.EOF unwrapped; a close mid-frame surfaces as
// io.ErrUnexpectedEOF.
func ReadPacket(r io.Reader) (*Packet, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading packet header: %w", err)
	}

	p := &Packet{
		Type: Type(header[offType]),
		ID:   header[offID],
		Role: header[offRole],
		Sec:  binary.BigEndian.Uint32(header[offSec:]),
		Nsec: binary.BigEndian.Uint32(header[offNsec:]),
	}
	if p.Type == TypeNone || p.Type > TypeEnded {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, header[offType])
	}

	size := binary.BigEndian.Uint16(header[offSize:])
	if size > 0 {
		p.Payload = make([]byte, size)
		if _, err := io.ReadFull(r, p.Payload); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("reading packet payload: %w", err)
		}
	}
	return p, nil
}
