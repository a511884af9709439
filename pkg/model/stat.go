package model

import (
	"time"

	"github.com/dustin/go-humanize"
)

type EmbedStats struct {
	Setup               time.Duration `json:"setup"`
	DataEmbedding       time.Duration `json:"data_embedding"`
	OutputImageEncoding time.Duration `json:"output_image_encoding"`
	PixelsVisited       int           `json:"pixels_visited"`
	BitsWritten         int           `json:"bits_written"`
	// PSNR between the cover and the modified image in dB, +Inf when nothing changed
	PSNR float64 `json:"-"`
}

type ExtractStats struct {
	DataExtraction time.Duration `json:"data_extraction"`
	PixelsVisited  int           `json:"pixels_visited"`
	PayloadSize    int           `json:"payload_size"`
}

// HumanizedPSNR formats PSNR with two decimals, e.g. "51.14 dB".
func (s EmbedStats) HumanizedPSNR() string {
	return humanize.FtoaWithDigits(s.PSNR, 2) + " dB"
}
