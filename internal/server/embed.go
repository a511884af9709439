package server

import (
	"bytes"
	"fmt"
	"kiki/api"
	"kiki/internal/logging"
	kikiImage "kiki/pkg/image"
	"kiki/pkg/media"
	"kiki/pkg/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	octetStream = "application/octet-stream"
	psnrHeader  = "X-Kiki-PSNR"
)

// EmbedImageHandler godoc
//
// @Summary Hide a payload in the supplied image
// @Description This endpoint hides the payload in the image and returns the modified image as png or bmp. Requests sent as application/octet-stream carry a kiki.Image.EmbedRequest flatbuffer and are answered with a kiki.Image.EmbedResponse flatbuffer. All errors are returned as JSON
// @Tags image
// @Accept json,octet-stream
// @Produce json,octet-stream
// @Param requestBody body api.EmbedImageRequest true "Body with the cover image, the payload, and the key and mode to embed with"
// @Success 200 {object} api.EmbedImageResponse
// @Header 200 {string} X-Kiki-PSNR "PSNR between the cover and the returned image"
// @Failure 400 {object} api.Error
// @Failure 413 {object} api.Error
// @Failure 415 {object} api.Error
// @Failure 500 {object} api.Error
// @Router /embed/image [post]
func (s *Server) EmbedImageHandler(ctx *gin.Context) {
	logger := logging.BuildLoggerFromCtx(s.logger, ctx)
	logger.Debug("Processing image embed request")

	var requestBody api.EmbedImageRequest
	var err error
	binary := ctx.ContentType() == octetStream
	if binary {
		requestBody, err = readFlatbuffer(ctx.Request.Body, parseEmbedRequest)
	} else if err = ctx.ShouldBindJSON(&requestBody); err != nil {
		err = fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	if err != nil {
		abortWithError(ctx, logger, err)
		return
	}

	stegoImage, format, stats, err := s.embed(requestBody)
	if err != nil {
		abortWithError(ctx, logger, err)
		return
	}

	logger.With("stats", toHumanizedEmbedStats(stats)).Info("Image embedding was successful")

	ctx.Header(psnrHeader, stats.HumanizedPSNR())
	if binary {
		ctx.Data(http.StatusOK, octetStream, buildEmbedResponse(stegoImage, format))
		return
	}
	ctx.JSON(http.StatusOK, api.EmbedImageResponse{Image: stegoImage, Format: format.String()})
}

func (s *Server) embed(req api.EmbedImageRequest) ([]byte, media.Format, model.EmbedStats, error) {
	format := media.PNG
	if req.OutputFormat != "" {
		var err error
		if format, err = media.ParseFormat(req.OutputFormat); err != nil {
			return nil, format, model.EmbedStats{}, err
		}
	}

	lsbConfig, err := s.requestConfig(req.Mode, req.Key)
	if err != nil {
		return nil, format, model.EmbedStats{}, err
	}

	cover, _, err := media.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return nil, format, model.EmbedStats{}, fmt.Errorf("%w: %w", errInvalidImage, err)
	}

	embedder, err := kikiImage.NewImageEmbedder(cover, lsbConfig)
	if err != nil {
		return nil, format, model.EmbedStats{}, err
	}
	if err = embedder.Embed(req.Payload); err != nil {
		return nil, format, embedder.Stats(), err
	}

	// pre allocate with size of original, since it should be similar
	encoded := bytes.NewBuffer(make([]byte, 0, len(req.Image)))
	if err = embedder.WriteEncoded(encoded, format); err != nil {
		return nil, format, embedder.Stats(), err
	}
	return encoded.Bytes(), format, embedder.Stats(), nil
}

func abortWithError(ctx *gin.Context, logger *logging.Logger, err error) {
	status, body := toAPIError(err)
	logger.WithError(err).With("status", status).Error("Error processing request")
	ctx.AbortWithStatusJSON(status, body)
}
