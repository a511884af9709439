package bits

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10000000 00000111 11111111 01100101
var bytesToTestWith = []byte{128, 7, 255, 101}

func TestReadBit(t *testing.T) {
	expectedBits := []byte{
		1, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1,
		0, 1, 1, 0, 0, 1, 0, 1,
	}

	tBitReader := NewBitReader(bytesToTestWith)
	for iter, expectedBit := range expectedBits {
		assert.Equal(t, len(expectedBits)-iter, tBitReader.BitsLeftToRead())
		bit, err := tBitReader.ReadBit()
		require.NoError(t, err)
		if bit != expectedBit {
			t.Errorf("Failure reading bit %d, result was: %d, expected %d", iter+1, bit, expectedBit)
		}
	}

	_, err := tBitReader.ReadBit()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, tBitReader.BitsLeftToRead())
}

func TestReadUint(t *testing.T) {
	t.Run("full width", func(t *testing.T) {
		value, err := ReadUint(NewBitReader(bytesToTestWith), 32)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x8007FF65), value)
	})

	t.Run("triplets", func(t *testing.T) {
		tBitReader := NewBitReader(bytesToTestWith)
		for iter, expected := range []uint64{4, 0, 0, 0, 3, 7, 7, 7, 3, 1} {
			value, err := ReadUint(tBitReader, 3)
			require.NoError(t, err)
			assert.Equal(t, expected, value, "triplet %d", iter+1)
		}

		_, err := ReadUint(tBitReader, 3)
		assert.Equal(t, io.ErrUnexpectedEOF, err)
	})

	t.Run("empty source", func(t *testing.T) {
		_, err := ReadUint(NewBitReader(nil), 8)
		assert.Equal(t, io.EOF, err)
	})
}

func TestReadBytes(t *testing.T) {
	readBytes, err := ReadBytes(NewBitReader(bytesToTestWith), 4)
	require.NoError(t, err)
	assert.Equal(t, bytesToTestWith, readBytes)

	_, err = ReadBytes(NewBitReader(bytesToTestWith), 5)
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	readBytes, err = ReadBytes(NewBitReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, readBytes)
}
