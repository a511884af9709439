package bits

import "io"

// Slot is one position of a batch. It either carries a data bit or is absent, which only happens in the final
// batch of a stream whose bit count is not a multiple of the batch size.
type Slot struct {
	bit     byte
	present bool
}

// Absent is the padding slot.
var Absent = Slot{}

func BitSlot(bit byte) Slot {
	return Slot{bit: bit & 1, present: true}
}

// Bit returns the carried bit and whether the slot holds data at all.
func (s Slot) Bit() (byte, bool) {
	return s.bit, s.present
}

// Batcher groups consecutive bits from a Source into fixed size batches.
type Batcher struct {
	src  Source
	size int
	err  error
}

func NewBatcher(src Source, size int) *Batcher {
	if size < 1 {
		size = 1
	}
	return &Batcher{src: src, size: size}
}

// Next returns the next batch. The final batch is padded with Absent slots; once the source is exhausted Next
// returns false. A source failure other than io.EOF also ends the sequence and is reported by Err.
func (b *Batcher) Next() ([]Slot, bool) {
	if b.err != nil {
		return nil, false
	}

	batch := make([]Slot, b.size)
	var filled int
	for ; filled < b.size; filled++ {
		bit, err := b.src.ReadBit()
		if err == io.EOF {
			break
		} else if err != nil {
			b.err = err
			return nil, false
		}
		batch[filled] = BitSlot(bit)
	}

	if filled == 0 {
		return nil, false
	}
	return batch, true
}

func (b *Batcher) Err() error {
	return b.err
}
