package media

import (
	"fmt"
	"image"
	// lossy formats are only accepted as covers
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// Decode reads any registered image format and returns it along with the format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, format, nil
}

func DecodeFile(filePath string) (image.Image, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := Decode(f)
	return img, err
}

// Encode writes img as format. compressionLevel only applies to PNG.
func Encode(w io.Writer, img image.Image, format Format, compressionLevel png.CompressionLevel) error {
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: compressionLevel}
		return enc.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
