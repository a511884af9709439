package image

import (
	"errors"
	"fmt"
	"image"
	"io"
	"kiki/internal/bits"
	"kiki/pkg/config"
	"kiki/pkg/frame"
	"kiki/pkg/media"
	"kiki/pkg/model"
	"kiki/pkg/traversal"
	"time"
)

var (
	ErrImageTooSmall    = errors.New("supplied image has no room for a message")
	ErrCapacityExceeded = errors.New("supplied image not big enough to contain the payload, either choose a bigger image or a smaller payload")
)

// Embedder hides payloads in a private copy of a cover image.
type Embedder struct {
	image  *image.NRGBA
	config config.LSBConfig
	stats  model.EmbedStats
}

// NewImageEmbedder copies img, so the caller's image is never modified.
func NewImageEmbedder(img image.Image, lsbConfig config.LSBConfig) (*Embedder, error) {
	lsbConfig.PopulateUnsetConfigVars()
	if img.Bounds().Empty() {
		return nil, ErrImageTooSmall
	}

	return &Embedder{
		image:  toNRGBA(img),
		config: lsbConfig,
	}, nil
}

func (e *Embedder) Stats() model.EmbedStats {
	return e.stats
}

func (e *Embedder) Image() *image.NRGBA {
	return e.image
}

// Capacity is the largest payload, in bytes, that fits in the image.
func (e *Embedder) Capacity() int64 {
	return max(int64(capacityBits(e.image)/8)-frame.CapacityOverhead, 0)
}

// Embed frames payload and writes it into the channel LSBs of the pixels visited by the configured traversal. The
// capacity is checked before any pixel is modified.
func (e *Embedder) Embed(payload []byte) error {
	e.stats = model.EmbedStats{}
	setupStart := time.Now()

	availableBits := capacityBits(e.image)
	requiredBits := frame.RequiredBits(uint64(len(payload)))
	if requiredBits > availableBits {
		return fmt.Errorf("%w: %d bits required, image holds %d", ErrCapacityExceeded, requiredBits, availableBits)
	}

	framed, err := frame.Encode(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCapacityExceeded, err)
	}

	batches := bits.NewBatcher(bits.NewBitReader(framed), channelsToWrite)
	pixels := traversal.New(e.config.Mode, e.image.Rect.Dx(), e.image.Rect.Dy(), e.config.Key)
	e.stats.Setup = time.Since(setupStart)

	e.embedBatches(batches, pixels)
	return batches.Err()
}

func (e *Embedder) embedBatches(batches *bits.Batcher, pixels traversal.Traversal) {
	embedStart := time.Now()
	var changedSamples int
	defer func() {
		e.stats.DataEmbedding = time.Since(embedStart)
		e.stats.PSNR = psnr(changedSamples, e.image.Rect.Dx()*e.image.Rect.Dy()*channelsToWrite)
	}()

	for batch, ok := batches.Next(); ok; batch, ok = batches.Next() {
		p, found := pixels.Next()
		if !found {
			// Unreachable after the capacity check
			return
		}
		e.stats.PixelsVisited++

		offset := pixelOffset(e.image, p)
		for c, slot := range batch {
			bit, present := slot.Bit()
			if !present {
				continue
			}
			modified := writeLSB(e.image.Pix[offset+c], bit)
			if modified != e.image.Pix[offset+c] {
				changedSamples++
			}
			e.image.Pix[offset+c] = modified
			e.stats.BitsWritten++
		}
	}
}

func (e *Embedder) WriteEncodedPNG(output io.Writer) error {
	return e.WriteEncoded(output, media.PNG)
}

func (e *Embedder) WriteEncoded(output io.Writer, format media.Format) error {
	imageEncodeStart := time.Now()
	defer func() {
		e.stats.OutputImageEncoding = time.Since(imageEncodeStart)
	}()
	return media.Encode(output, e.image, format, e.config.PngCompressionLevel)
}

// Embed hides payload in a copy of img and returns the copy.
func Embed(img image.Image, payload []byte, lsbConfig config.LSBConfig) (*image.NRGBA, error) {
	embedder, err := NewImageEmbedder(img, lsbConfig)
	if err != nil {
		return nil, err
	}
	if err = embedder.Embed(payload); err != nil {
		return nil, err
	}
	return embedder.Image(), nil
}
