package server

import (
	"bytes"
	"fmt"
	"kiki/api"
	"kiki/internal/logging"
	"kiki/pkg/config"
	kikiImage "kiki/pkg/image"
	"kiki/pkg/media"
	"kiki/pkg/model"
	"kiki/pkg/traversal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExtractImageHandler godoc
//
// @Summary Recover the payload hidden in an image
// @Description This endpoint recovers the payload hidden in the supplied image with the given key and mode. Messages above the server limit are refused with 413. Requests sent as application/octet-stream carry a kiki.Image.ExtractRequest flatbuffer and are answered with a kiki.Image.ExtractResponse flatbuffer. All errors are returned as JSON
// @Tags image
// @Accept json,octet-stream
// @Produce json,octet-stream
// @Param requestBody body api.ExtractImageRequest true "Body with the image and the key and mode it was embedded with"
// @Success 200 {object} api.ExtractImageResponse
// @Failure 400 {object} api.Error
// @Failure 413 {object} api.Error
// @Failure 422 {object} api.Error
// @Failure 500 {object} api.Error
// @Router /extract/image [post]
func (s *Server) ExtractImageHandler(ctx *gin.Context) {
	logger := logging.BuildLoggerFromCtx(s.logger, ctx)
	logger.Debug("Processing image extract request")

	var requestBody api.ExtractImageRequest
	var err error
	binary := ctx.ContentType() == octetStream
	if binary {
		requestBody, err = readFlatbuffer(ctx.Request.Body, parseExtractRequest)
	} else if err = ctx.ShouldBindJSON(&requestBody); err != nil {
		err = fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	if err != nil {
		abortWithError(ctx, logger, err)
		return
	}

	payload, stats, err := s.extract(requestBody)
	if err != nil {
		abortWithError(ctx, logger.With("stats", toHumanizedExtractStats(stats)), err)
		return
	}

	logger.With("stats", toHumanizedExtractStats(stats)).Info("Image extraction was successful")

	if binary {
		ctx.Data(http.StatusOK, octetStream, buildExtractResponse(payload))
		return
	}
	ctx.JSON(http.StatusOK, api.ExtractImageResponse{Payload: payload})
}

func (s *Server) extract(req api.ExtractImageRequest) ([]byte, model.ExtractStats, error) {
	lsbConfig, err := s.requestConfig(req.Mode, req.Key)
	if err != nil {
		return nil, model.ExtractStats{}, err
	}

	stego, _, err := media.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return nil, model.ExtractStats{}, fmt.Errorf("%w: %w", errInvalidImage, err)
	}

	// no operator to ask, so messages above the limit are declined
	extractor, err := kikiImage.NewImageExtractor(stego, lsbConfig, nil)
	if err != nil {
		return nil, model.ExtractStats{}, err
	}
	payload, err := extractor.Extract()
	return payload, extractor.Stats(), err
}

// requestConfig overrides the server defaults with the mode and key of a request.
func (s *Server) requestConfig(mode, key string) (config.LSBConfig, error) {
	c := s.lsbConfig
	if mode != "" {
		var err error
		if c.Mode, err = traversal.ParseMode(mode); err != nil {
			return c, err
		}
	}
	c.Key = key
	return c, nil
}
