package protocol

import (
	"bytes"
	"fmt"
	"io"
	"testing"
)

// BenchmarkWritePacket measures framing cost for typical payload sizes:
// empty control packets, a move, a rendered board, a long user list.
func BenchmarkWritePacket(b *testing.B) {
	sizes := []int{0, 4, 40, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			p := &Packet{Type: TypeMoved, Payload: make([]byte, size)}

			b.SetBytes(int64(HeaderSize + size))
			b.ResetTimer()

			for range b.N {
				if err := WritePacket(io.Discard, p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkReadPacket measures parsing cost for the same sizes.
func BenchmarkReadPacket(b *testing.B) {
	sizes := []int{0, 4, 40, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()

			var buf bytes.Buffer
			if err := WritePacket(&buf, &Packet{Type: TypeMoved, Payload: make([]byte, size)}); err != nil {
				b.Fatal(err)
			}
			frame := buf.Bytes()

			b.SetBytes(int64(len(frame)))
			b.ResetTimer()

			for range b.N {
				if _, err := ReadPacket(bytes.NewReader(frame)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
