package test

import (
	"image"
	"image/color"
	"math/rand"
)

func GenerateRandomBytes(numOfBytesToGenerate int) []byte {
	return GenerateSeededBytes(rand.Int63(), numOfBytesToGenerate)
}

// GenerateSeededBytes is like GenerateRandomBytes, but returns the same bytes for the same seed
func GenerateSeededBytes(seed int64, numOfBytesToGenerate int) []byte {
	generatedBytes := make([]byte, numOfBytesToGenerate)
	_, err := rand.New(rand.NewSource(seed)).Read(generatedBytes)
	if err != nil {
		panic(err)
	}
	return generatedBytes
}

// GenerateImage builds a width x height image filled with noise derived from seed. When translucent is set, roughly a
// quarter of the pixels get a random alpha value instead of being fully opaque
func GenerateImage(seed int64, width, height int, translucent bool) *image.NRGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			alpha := uint8(255)
			if translucent && r.Intn(4) == 0 {
				alpha = uint8(r.Intn(256))
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: alpha})
		}
	}
	return img
}
