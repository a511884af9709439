package frame

import (
	"errors"
	"fmt"
	"kiki/internal/bits"
)

// State is the position of a Reader within a framed message.
type State int

const (
	AwaitingLength State = iota
	AwaitingPayload
	AwaitingChecksum
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingLength:
		return "awaiting-length"
	case AwaitingPayload:
		return "awaiting-payload"
	case AwaitingChecksum:
		return "awaiting-checksum"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrOutOfOrder       = errors.New("frame field read out of order")
	ErrChecksumMismatch = errors.New("payload checksum does not match the stored checksum")
)

// Reader unframes a message directly off a bit source. The fields have to be read in order since the payload
// length is only known once the length field has been consumed.
type Reader struct {
	src   bits.Source
	state State

	length   uint32
	payload  []byte
	checksum uint32
}

func NewReader(src bits.Source) *Reader {
	return &Reader{src: src}
}

func (r *Reader) State() State {
	return r.state
}

func (r *Reader) ReadLength() (uint32, error) {
	if r.state != AwaitingLength {
		return 0, fmt.Errorf("%w: reading length while %s", ErrOutOfOrder, r.state)
	}

	length, err := bits.ReadUint(r.src, LengthSize*8)
	if err != nil {
		return 0, fmt.Errorf("reading length field: %w", err)
	}

	r.length = uint32(length)
	r.state = AwaitingPayload
	return r.length, nil
}

func (r *Reader) ReadPayload() ([]byte, error) {
	if r.state != AwaitingPayload {
		return nil, fmt.Errorf("%w: reading payload while %s", ErrOutOfOrder, r.state)
	}

	payload, err := bits.ReadBytes(r.src, int(r.length))
	if err != nil {
		return nil, fmt.Errorf("reading %d payload bytes: %w", r.length, err)
	}

	r.payload = payload
	r.state = AwaitingChecksum
	return payload, nil
}

func (r *Reader) ReadChecksum() (uint32, error) {
	if r.state != AwaitingChecksum {
		return 0, fmt.Errorf("%w: reading checksum while %s", ErrOutOfOrder, r.state)
	}

	checksum, err := bits.ReadUint(r.src, ChecksumSize*8)
	if err != nil {
		return 0, fmt.Errorf("reading checksum field: %w", err)
	}

	r.checksum = uint32(checksum)
	r.state = Done
	return r.checksum, nil
}

// Verify compares the stored checksum against the one computed over the payload. The payload is only handed out
// when both match.
func (r *Reader) Verify() ([]byte, error) {
	if r.state != Done {
		return nil, fmt.Errorf("%w: verifying while %s", ErrOutOfOrder, r.state)
	}

	if computed := Checksum(r.payload); computed != r.checksum {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, r.checksum, computed)
	}
	return r.payload, nil
}
