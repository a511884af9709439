package server

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"kiki/internal/logging"
	"kiki/pkg/config"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kiki/docs"
)

const (
	RFC3339Millis = "2006-01-02T15:04:05.000Z07:00"

	shutdownTimeout = 10 * time.Second
)

type Server struct {
	engine    *gin.Engine
	config    config.ServerConfig
	lsbConfig config.LSBConfig
	logger    *logging.Logger
}

// New builds the HTTP API. Extraction declines messages above config.Server.MaxMessageSize since there is nobody to
// confirm them.
//
// @title kiki API
// @version 1.0
// @description An API to hide messages in images and recover them
// @BasePath /api/v1
func New(file config.File, logger *logging.Logger) (*Server, error) {
	file.PopulateUnsetConfigVars()
	lsbConfig, err := file.LSBConfig()
	if err != nil {
		return nil, err
	}
	lsbConfig.LargePayloadThreshold = file.Server.MaxMessageSize
	if file.PngCompression == "" {
		// lower compression results in huge responses
		lsbConfig.PngCompressionLevel = png.BestCompression
	}

	s := &Server{
		config:    file.Server,
		lsbConfig: lsbConfig,
		logger:    logger,
	}

	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{Formatter: logFormatter}), gin.Recovery())
	if len(file.Server.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = file.Server.AllowedOrigins
		corsConfig.AllowMethods = []string{http.MethodPost, http.MethodOptions}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		corsConfig.ExposeHeaders = []string{psnrHeader}
		r.Use(cors.New(corsConfig))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1", s.limitRequestSize)
	v1.POST("/embed/image", s.EmbedImageHandler)
	v1.POST("/extract/image", s.ExtractImageHandler)

	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.config.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "port", s.config.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) limitRequestSize(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, s.config.MaxRequestSize)
	ctx.Next()
}

func logFormatter(param gin.LogFormatterParams) string {
	if param.Latency > time.Minute {
		param.Latency = param.Latency.Truncate(time.Second)
	}

	return fmt.Sprintf("{\"timestamp\":%q, \"status_code\": %d, \"latency\": %q, \"latency_raw\": %d, \"response_size\": %q, \"response_size_raw\": %d, \"client_ip\": %q, \"method\": %q, \"path\": %q, \"error\": %q}\n",
		param.TimeStamp.Format(RFC3339Millis),
		param.StatusCode,
		param.Latency.String(),
		param.Latency,
		humanize.IBytes(uint64(max(param.BodySize, 0))),
		param.BodySize,
		param.ClientIP,
		param.Method,
		param.Path,
		param.ErrorMessage,
	)
}
