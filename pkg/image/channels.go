package image

import (
	"image"
	"image/draw"

	"github.com/zedseven/binmani"
)

const (
	// R, G and B carry one bit each, alpha is never touched
	channelsToWrite = 3
	bytesPerPixel   = 4
)

func writeLSB(channel, bit byte) byte {
	return byte(binmani.WriteTo(uint16(channel), 0, 1, uint16(bit)))
}

func readLSB(channel byte) byte {
	return byte(binmani.ReadFrom(uint16(channel), 0, 1))
}

// toNRGBA returns a copy of img with non premultiplied 8 bit channels. Premultiplied storage would round away the
// LSBs of translucent pixels, so *image.RGBA is not used here.
func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(bounds)

	if src, ok := img.(*image.NRGBA); ok {
		rowLength := bounds.Dx() * bytesPerPixel
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			srcOffset := src.PixOffset(bounds.Min.X, y)
			dstOffset := dst.PixOffset(bounds.Min.X, y)
			copy(dst.Pix[dstOffset:dstOffset+rowLength], src.Pix[srcOffset:srcOffset+rowLength])
		}
		return dst
	}

	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// pixelOffset converts a traversal coordinate, relative to the image bounds, to an index into Pix
func pixelOffset(img *image.NRGBA, p image.Point) int {
	return img.PixOffset(img.Rect.Min.X+p.X, img.Rect.Min.Y+p.Y)
}

// capacityBits is how many data bits img can carry
func capacityBits(img image.Image) uint64 {
	return uint64(img.Bounds().Dx()) * uint64(img.Bounds().Dy()) * channelsToWrite
}
