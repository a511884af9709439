package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"kiki/api"
	fbImage "kiki/api/kiki/Image"
	"kiki/internal/logging"
	"kiki/pkg/config"
	"kiki/pkg/media"
	"kiki/test"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, file config.File) *Server {
	t.Helper()
	file.PopulateUnsetConfigVars()
	s, err := New(file, logging.BuildLogger(io.Discard, false))
	require.NoError(t, err)
	return s
}

func coverPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, test.GenerateImage(7, width, height, false)))
	return buf.Bytes()
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func postFlatbuffer(s *Server, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", octetStream)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.Error {
	t.Helper()
	var apiErr api.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestEmbedExtractJSON(t *testing.T) {
	s := newTestServer(t, config.File{})
	payload := []byte("meet me at the usual place")

	w := postJSON(t, s, "/api/v1/embed/image", api.EmbedImageRequest{
		Image:   coverPNG(t, 64, 64),
		Payload: payload,
		Key:     "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(psnrHeader))

	var embedResponse api.EmbedImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &embedResponse))
	assert.Equal(t, "png", embedResponse.Format)

	stego, format, err := image.Decode(bytes.NewReader(embedResponse.Image))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 64, 64), stego.Bounds())

	w = postJSON(t, s, "/api/v1/extract/image", api.ExtractImageRequest{
		Image: embedResponse.Image,
		Key:   "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var extractResponse api.ExtractImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &extractResponse))
	assert.Equal(t, payload, extractResponse.Payload)
}

func embedRequestFlatbuffer(img, payload []byte, key, mode, outputFormat string) []byte {
	builder := flatbuffers.NewBuilder(len(img) + len(payload))
	imageOffset := builder.CreateByteVector(img)
	payloadOffset := builder.CreateByteVector(payload)
	keyOffset := builder.CreateString(key)
	modeOffset := builder.CreateString(mode)
	formatOffset := builder.CreateString(outputFormat)

	fbImage.EmbedRequestStart(builder)
	fbImage.EmbedRequestAddImage(builder, imageOffset)
	fbImage.EmbedRequestAddPayload(builder, payloadOffset)
	fbImage.EmbedRequestAddKey(builder, keyOffset)
	fbImage.EmbedRequestAddMode(builder, modeOffset)
	fbImage.EmbedRequestAddOutputFormat(builder, formatOffset)
	fbImage.FinishEmbedRequestBuffer(builder, fbImage.EmbedRequestEnd(builder))
	return builder.FinishedBytes()
}

func extractRequestFlatbuffer(img []byte, key, mode string) []byte {
	builder := flatbuffers.NewBuilder(len(img))
	imageOffset := builder.CreateByteVector(img)
	keyOffset := builder.CreateString(key)
	modeOffset := builder.CreateString(mode)

	fbImage.ExtractRequestStart(builder)
	fbImage.ExtractRequestAddImage(builder, imageOffset)
	fbImage.ExtractRequestAddKey(builder, keyOffset)
	fbImage.ExtractRequestAddMode(builder, modeOffset)
	fbImage.FinishExtractRequestBuffer(builder, fbImage.ExtractRequestEnd(builder))
	return builder.FinishedBytes()
}

func TestEmbedExtractFlatbuffers(t *testing.T) {
	s := newTestServer(t, config.File{})
	payload := test.GenerateSeededBytes(3, 200)

	w := postFlatbuffer(s, "/api/v1/embed/image", embedRequestFlatbuffer(coverPNG(t, 48, 48), payload, "", "SEQ", "bmp"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, octetStream, w.Header().Get("Content-Type"))

	embedResponse := fbImage.GetRootAsEmbedResponse(w.Body.Bytes(), 0)
	assert.Equal(t, "bmp", string(embedResponse.Format()))
	stegoImage := embedResponse.ImageBytes()
	_, format, err := media.Decode(bytes.NewReader(stegoImage))
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)

	w = postFlatbuffer(s, "/api/v1/extract/image", extractRequestFlatbuffer(stegoImage, "", "SEQ"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	extractResponse := fbImage.GetRootAsExtractResponse(w.Body.Bytes(), 0)
	assert.Equal(t, payload, extractResponse.PayloadBytes())
}

func TestErrorResponses(t *testing.T) {
	cover := coverPNG(t, 32, 32)

	s := newTestServer(t, config.File{})
	embedded := postJSON(t, s, "/api/v1/embed/image", api.EmbedImageRequest{Image: cover, Payload: make([]byte, 100), Key: "right"})
	require.Equal(t, http.StatusOK, embedded.Code)
	var embedResponse api.EmbedImageResponse
	require.NoError(t, json.Unmarshal(embedded.Body.Bytes(), &embedResponse))

	t.Run("missing image", func(t *testing.T) {
		w := postJSON(t, s, "/api/v1/embed/image", api.EmbedImageRequest{Payload: []byte("x")})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errRequestBodyDecode, decodeError(t, w))
	})

	t.Run("invalid image", func(t *testing.T) {
		w := postJSON(t, s, "/api/v1/embed/image", api.EmbedImageRequest{Image: []byte("not an image")})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errImageDecode, decodeError(t, w))
	})

	t.Run("unknown mode", func(t *testing.T) {
		w := postJSON(t, s, "/api/v1/extract/image", api.ExtractImageRequest{Image: cover, Mode: "SPIRAL"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errInvalidMode, decodeError(t, w))
	})

	t.Run("unsupported output format", func(t *testing.T) {
		w := postJSON(t, s, "/api/v1/embed/image", api.EmbedImageRequest{Image: cover, OutputFormat: "jpg"})
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Equal(t, errUnsupportedFormat, decodeError(t, w))
	})

	t.Run("payload above capacity", func(t *testing.T) {
		// 32x32 holds 32*32*3/8 - 12 = 372 bytes
		w := postJSON(t, s, "/api/v1/embed/image", api.EmbedImageRequest{Image: cover, Payload: make([]byte, 373)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errCapacityExceeded, decodeError(t, w))
	})

	t.Run("wrong key", func(t *testing.T) {
		w := postJSON(t, s, "/api/v1/extract/image", api.ExtractImageRequest{Image: embedResponse.Image, Key: "wrong"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, errIntegrity, decodeError(t, w))
	})

	t.Run("message above server limit", func(t *testing.T) {
		limited := newTestServer(t, config.File{Server: config.ServerConfig{MaxMessageSize: 50}})
		w := postJSON(t, limited, "/api/v1/extract/image", api.ExtractImageRequest{Image: embedResponse.Image, Key: "right"})
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, errMessageTooLarge, decodeError(t, w))
	})

	t.Run("request above size limit", func(t *testing.T) {
		limited := newTestServer(t, config.File{Server: config.ServerConfig{MaxRequestSize: 1024}})
		w := postJSON(t, limited, "/api/v1/embed/image", api.EmbedImageRequest{Image: cover})
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, errRequestTooLarge, decodeError(t, w))
	})

	t.Run("malformed flatbuffer", func(t *testing.T) {
		w := postFlatbuffer(s, "/api/v1/embed/image", []byte{0xff, 0xff, 0xff, 0x7f, 0x00, 0x00})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errRequestBodyDecode, decodeError(t, w))
	})

	t.Run("truncated flatbuffer", func(t *testing.T) {
		w := postFlatbuffer(s, "/api/v1/extract/image", []byte{0x01})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errRequestBodyDecode, decodeError(t, w))
	})
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, config.File{Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/embed/image", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSwaggerDoc(t *testing.T) {
	s := newTestServer(t, config.File{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/extract/image")
}

func TestLogFormatterProducesJSON(t *testing.T) {
	line := logFormatter(gin.LogFormatterParams{
		TimeStamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		StatusCode:   http.StatusUnprocessableEntity,
		Latency:      1500 * time.Millisecond,
		ClientIP:     "127.0.0.1",
		Method:       http.MethodPost,
		Path:         "/api/v1/extract/image",
		ErrorMessage: `bad "quote"`,
		BodySize:     2048,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "2.0 KiB", entry["response_size"])
	assert.Equal(t, "1.5s", entry["latency"])
	assert.Equal(t, `bad "quote"`, entry["error"])
	assert.EqualValues(t, http.StatusUnprocessableEntity, entry["status_code"])
}
