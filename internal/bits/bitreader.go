package bits

import "io"

// Source is anything bits can be pulled from one at a time. Implementations return io.EOF once exhausted.
type Source interface {
	ReadBit() (byte, error)
}

// BitReader implements methods to help with reading bits from an array of bytes. Bits are read from most significant
// to least significant within each byte
type BitReader struct {
	bytes         []byte
	currentBitIdx uint
}

func NewBitReader(bytes []byte) *BitReader {
	return &BitReader{
		bytes: bytes,
	}
}

func (br *BitReader) BytesLeftToRead() int {
	return len(br.bytes)
}

func (br *BitReader) BitsLeftToRead() int {
	if len(br.bytes) == 0 {
		return 0
	}
	return (len(br.bytes)-1)*8 + (8 - int(br.currentBitIdx))
}

func (br *BitReader) Reset() {
	br.bytes = nil
	br.currentBitIdx = 0
}

func (br *BitReader) ReadBit() (byte, error) {
	if len(br.bytes) == 0 {
		return 0, io.EOF
	}

	bit := (br.bytes[0] >> (7 - br.currentBitIdx)) & 1
	br.currentBitIdx++
	if br.currentBitIdx == 8 {
		br.bytes = br.bytes[1:]
		br.currentBitIdx = 0
	}
	return bit, nil
}

// ReadUint consumes exactly width bits from src and folds them, most significant first, into an unsigned integer.
// width must be at most 64. If src runs dry part way through, io.ErrUnexpectedEOF is returned.
func ReadUint(src Source, width uint) (uint64, error) {
	var value uint64
	for i := uint(0); i < width; i++ {
		bit, err := src.ReadBit()
		if err == io.EOF {
			if i == 0 {
				return 0, io.EOF
			}
			return 0, io.ErrUnexpectedEOF
		} else if err != nil {
			return 0, err
		}
		value = value<<1 | uint64(bit)
	}
	return value, nil
}

// ReadBytes fills a new slice of n bytes from src, 8 bits per byte.
func ReadBytes(src Source, n int) ([]byte, error) {
	readBytes := make([]byte, n)
	for i := range readBytes {
		b, err := ReadUint(src, 8)
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		} else if err != nil {
			return nil, err
		}
		readBytes[i] = byte(b)
	}
	return readBytes, nil
}
