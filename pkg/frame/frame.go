// Package frame wraps a payload into the self describing message stored in an image:
//
//	| length: 32 bits, BE | payload: length*8 bits | crc32(payload): 32 bits, BE |
//
// The checksum uses the IEEE polynomial.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

const (
	LengthSize   = 4
	ChecksumSize = 4
	Overhead     = LengthSize + ChecksumSize

	// CapacityOverhead is the framing overhead counted against an image's capacity. It is 4 bytes above Overhead.
	CapacityOverhead = Overhead + 4

	MaxPayloadSize = math.MaxUint32
)

var (
	ErrPayloadTooLarge = errors.New("payload does not fit in the 32 bit length field")
)

// Encode returns the framed message for payload.
func Encode(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	framed := make([]byte, 0, Overhead+len(payload))
	framed = binary.BigEndian.AppendUint32(framed, uint32(len(payload)))
	framed = append(framed, payload...)
	framed = binary.BigEndian.AppendUint32(framed, Checksum(payload))
	return framed, nil
}

// BitLen is the number of bits a framed payload of payloadSize bytes occupies.
func BitLen(payloadSize uint64) uint64 {
	return (payloadSize + Overhead) * 8
}

// RequiredBits is the capacity, in bits, an image must have to accept a payload of payloadSize bytes.
func RequiredBits(payloadSize uint64) uint64 {
	return (payloadSize + CapacityOverhead) * 8
}

func Checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}
