package server

import (
	"kiki/pkg/model"

	"github.com/dustin/go-humanize"
)

type humanizedEmbedStats struct {
	model.EmbedStats
	SetupHuman               string `json:"setup_human"`
	DataEmbeddingHuman       string `json:"data_embedding_human"`
	OutputImageEncodingHuman string `json:"output_image_encoding_human"`
	PSNRHuman                string `json:"psnr_human"`
}

type humanizedExtractStats struct {
	model.ExtractStats
	DataExtractionHuman string `json:"data_extraction_human"`
	PayloadSizeHuman    string `json:"payload_size_human"`
}

func toHumanizedEmbedStats(embedStats model.EmbedStats) humanizedEmbedStats {
	return humanizedEmbedStats{
		EmbedStats:               embedStats,
		SetupHuman:               embedStats.Setup.String(),
		DataEmbeddingHuman:       embedStats.DataEmbedding.String(),
		OutputImageEncodingHuman: embedStats.OutputImageEncoding.String(),
		PSNRHuman:                embedStats.HumanizedPSNR(),
	}
}

func toHumanizedExtractStats(extractStats model.ExtractStats) humanizedExtractStats {
	return humanizedExtractStats{
		ExtractStats:        extractStats,
		DataExtractionHuman: extractStats.DataExtraction.String(),
		PayloadSizeHuman:    humanize.IBytes(uint64(extractStats.PayloadSize)),
	}
}
