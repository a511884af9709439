package image

import (
	"errors"
	"fmt"
	"image"
	"io"
	"kiki/pkg/config"
	"kiki/pkg/frame"
	"kiki/pkg/model"
	"kiki/pkg/traversal"
	"time"
)

var (
	ErrIntegrityMismatch = errors.New("extracted data does not match its checksum, the key or traversal option is likely wrong")
	ErrCorruptLength     = fmt.Errorf("%w: decoded message length exceeds what the image can hold", ErrIntegrityMismatch)
	ErrUserAborted       = errors.New("extraction stopped by user")
)

// Confirmer decides whether a message longer than the configured threshold should be read. It stands in for the
// operator, so the CLI prompts while the server answers on its own.
type Confirmer interface {
	ConfirmLargePayload(length uint32) (bool, error)
}

type ConfirmFunc func(length uint32) (bool, error)

func (f ConfirmFunc) ConfirmLargePayload(length uint32) (bool, error) {
	return f(length)
}

// AlwaysConfirm accepts any message length.
var AlwaysConfirm = ConfirmFunc(func(uint32) (bool, error) { return true, nil })

type Extractor struct {
	image     *image.NRGBA
	config    config.LSBConfig
	confirmer Confirmer
	stats     model.ExtractStats
}

// NewImageExtractor prepares extraction from img. A nil confirmer declines every message above the large payload
// threshold.
func NewImageExtractor(img image.Image, lsbConfig config.LSBConfig, confirmer Confirmer) (*Extractor, error) {
	lsbConfig.PopulateUnsetConfigVars()
	if capacityBits(img) < frame.RequiredBits(0) {
		return nil, ErrImageTooSmall
	}

	nrgbaImage, ok := img.(*image.NRGBA)
	if !ok {
		nrgbaImage = toNRGBA(img)
	}

	return &Extractor{
		image:     nrgbaImage,
		config:    lsbConfig,
		confirmer: confirmer,
	}, nil
}

func (d *Extractor) Stats() model.ExtractStats {
	return d.stats
}

// Extract reads the framed message back out of the image. The payload is only returned once its checksum matches.
func (d *Extractor) Extract() ([]byte, error) {
	d.stats = model.ExtractStats{}
	extractStart := time.Now()
	source := &channelSource{
		image:  d.image,
		pixels: traversal.New(d.config.Mode, d.image.Rect.Dx(), d.image.Rect.Dy(), d.config.Key),
		next:   channelsToWrite,
	}
	defer func() {
		d.stats.DataExtraction = time.Since(extractStart)
		d.stats.PixelsVisited = source.visited
	}()

	reader := frame.NewReader(source)
	length, err := reader.ReadLength()
	if err != nil {
		return nil, err
	}
	d.stats.PayloadSize = int(length)

	if frame.RequiredBits(uint64(length)) > capacityBits(d.image) {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptLength, length)
	}

	if d.config.RequiresConfirmation(length) {
		if err = d.confirm(length); err != nil {
			return nil, err
		}
	}

	if _, err = reader.ReadPayload(); err != nil {
		return nil, err
	}
	if _, err = reader.ReadChecksum(); err != nil {
		return nil, err
	}

	payload, err := reader.Verify()
	if errors.Is(err, frame.ErrChecksumMismatch) {
		return nil, fmt.Errorf("%w: %w", ErrIntegrityMismatch, err)
	}
	return payload, err
}

func (d *Extractor) confirm(length uint32) error {
	if d.confirmer == nil {
		return fmt.Errorf("%w: message of %d bytes is above the %d byte limit", ErrUserAborted, length, d.config.LargePayloadThreshold)
	}

	confirmed, err := d.confirmer.ConfirmLargePayload(length)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrUserAborted
	}
	return nil
}

// channelSource yields the R, G and B LSBs of every visited pixel, in that order
type channelSource struct {
	image   *image.NRGBA
	pixels  traversal.Traversal
	pending [channelsToWrite]byte
	next    int
	visited int
}

func (s *channelSource) ReadBit() (byte, error) {
	if s.next == channelsToWrite {
		p, ok := s.pixels.Next()
		if !ok {
			return 0, io.EOF
		}
		s.visited++

		offset := pixelOffset(s.image, p)
		for c := range s.pending {
			s.pending[c] = readLSB(s.image.Pix[offset+c])
		}
		s.next = 0
	}

	bit := s.pending[s.next]
	s.next++
	return bit, nil
}

// Extract recovers the payload hidden in img with the same configuration it was embedded with.
func Extract(img image.Image, lsbConfig config.LSBConfig, confirmer Confirmer) ([]byte, error) {
	extractor, err := NewImageExtractor(img, lsbConfig, confirmer)
	if err != nil {
		return nil, err
	}
	return extractor.Extract()
}
