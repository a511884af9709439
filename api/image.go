package api

type EmbedImageRequest struct {
	Image   []byte `json:"image" binding:"required"`
	Payload []byte `json:"payload"`
	Key     string `json:"key"`
	// Mode is SEQ or RNG, RNG when empty
	Mode string `json:"mode"`
	// OutputFormat is png or bmp, png when empty
	OutputFormat string `json:"output_format"`
}

type EmbedImageResponse struct {
	Image  []byte `json:"image"`
	Format string `json:"format"`
}

type ExtractImageRequest struct {
	Image []byte `json:"image" binding:"required"`
	Key   string `json:"key"`
	Mode  string `json:"mode"`
}

type ExtractImageResponse struct {
	Payload []byte `json:"payload"`
}
