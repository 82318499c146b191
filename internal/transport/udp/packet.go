// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"fmt"
	"time"

	"bandscope/internal/transport"
)

/*
Band-power packet layout (big-endian):

	| Field          | Type      | Size        |
	|----------------|-----------|-------------|
	| Sequence       | uint32    | 4           |
	| Timestamp      | int64     | 8 (ns)      |
	| Band count     | uint16    | 2           |
	| Powers         | []float32 | count * 4   |
	| Dominant index | uint8     | 1           |
*/

const packetHeaderSize = 4 + 8 + 2

// Packet is the decoded form of a band-power telemetry packet.
type Packet struct {
	Seq           uint32
	Timestamp     time.Time
	Powers        []float32
	DominantIndex uint8
}

// EncodeFrame packs the frame's powers into dst, growing it as needed, and
// returns the encoded slice.
func EncodeFrame(dst []byte, frame *transport.Frame) []byte {
	size := packetHeaderSize + len(frame.Bands)*4 + 1
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	binary.BigEndian.PutUint32(dst[0:4], frame.Seq)
	binary.BigEndian.PutUint64(dst[4:12], uint64(frame.Timestamp.UnixNano()))
	binary.BigEndian.PutUint16(dst[12:14], uint16(len(frame.Bands)))

	off := packetHeaderSize
	for _, b := range frame.Bands {
		binary.BigEndian.PutUint32(dst[off:off+4], floatBits(b.Power))
		off += 4
	}
	dst[off] = uint8(frame.DominantIndex)
	return dst
}

// DecodePacket parses a band-power packet, for consumers and tests.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < packetHeaderSize+1 {
		return Packet{}, fmt.Errorf("udp: packet too short: %d bytes", len(data))
	}

	count := int(binary.BigEndian.Uint16(data[12:14]))
	want := packetHeaderSize + count*4 + 1
	if len(data) != want {
		return Packet{}, fmt.Errorf("udp: packet size %d, want %d for %d bands",
			len(data), want, count)
	}

	p := Packet{
		Seq:       binary.BigEndian.Uint32(data[0:4]),
		Timestamp: time.Unix(0, int64(binary.BigEndian.Uint64(data[4:12]))),
		Powers:    make([]float32, count),
	}
	off := packetHeaderSize
	for i := range p.Powers {
		p.Powers[i] = bitsFloat(binary.BigEndian.Uint32(data[off : off+4]))
		off += 4
	}
	p.DominantIndex = data[off]
	return p, nil
}
