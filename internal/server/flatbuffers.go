package server

import (
	"fmt"
	"io"
	"kiki/api"
	fbImage "kiki/api/kiki/Image"
	"kiki/pkg/media"

	flatbuffers "github.com/google/flatbuffers/go"
)

// readFlatbuffer reads body and hands it to parse. Accessors on a malformed buffer panic, so parse has to copy every
// field it needs and the panic is turned into errInvalidRequest.
func readFlatbuffer[T any](body io.Reader, parse func(buf []byte) T) (parsed T, err error) {
	buf, err := io.ReadAll(body)
	if err != nil {
		return parsed, err
	}
	if len(buf) < flatbuffers.SizeUOffsetT {
		return parsed, fmt.Errorf("%w: %d byte flatbuffer", errInvalidRequest, len(buf))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed flatbuffer: %v", errInvalidRequest, r)
		}
	}()
	return parse(buf), nil
}

func parseEmbedRequest(buf []byte) api.EmbedImageRequest {
	req := fbImage.GetRootAsEmbedRequest(buf, 0)
	return api.EmbedImageRequest{
		Image:        req.ImageBytes(),
		Payload:      req.PayloadBytes(),
		Key:          string(req.Key()),
		Mode:         string(req.Mode()),
		OutputFormat: string(req.OutputFormat()),
	}
}

func parseExtractRequest(buf []byte) api.ExtractImageRequest {
	req := fbImage.GetRootAsExtractRequest(buf, 0)
	return api.ExtractImageRequest{
		Image: req.ImageBytes(),
		Key:   string(req.Key()),
		Mode:  string(req.Mode()),
	}
}

func buildEmbedResponse(stegoImage []byte, format media.Format) []byte {
	builder := flatbuffers.NewBuilder(len(stegoImage) + 64)
	imageOffset := builder.CreateByteVector(stegoImage)
	formatOffset := builder.CreateString(format.String())

	fbImage.EmbedResponseStart(builder)
	fbImage.EmbedResponseAddImage(builder, imageOffset)
	fbImage.EmbedResponseAddFormat(builder, formatOffset)
	fbImage.FinishEmbedResponseBuffer(builder, fbImage.EmbedResponseEnd(builder))
	return builder.FinishedBytes()
}

func buildExtractResponse(payload []byte) []byte {
	builder := flatbuffers.NewBuilder(len(payload) + 32)
	payloadOffset := builder.CreateByteVector(payload)

	fbImage.ExtractResponseStart(builder)
	fbImage.ExtractResponseAddPayload(builder, payloadOffset)
	fbImage.FinishExtractResponseBuffer(builder, fbImage.ExtractResponseEnd(builder))
	return builder.FinishedBytes()
}
