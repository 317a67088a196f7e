// Package server HTTP-доступ к упорядочиванию: загрузка двух файлов и
// выдача готовой книги.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ryabkov82/xlsx-reorder/internal/config"
	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/ryabkov82/xlsx-reorder/internal/pipeline"
)

const (
	requestIDHeader = "X-Request-ID"
	xlsxMIME        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	downloadName    = "اکسل_مرتب.xlsx"
	version         = "1.0.0"
)

// Processor выполняет один запуск над двумя загруженными файлами
type Processor interface {
	Process(ctx context.Context, order, data pipeline.Input) (*pipeline.Output, error)
}

// Server HTTP-сервер
type Server struct {
	router    *gin.Engine
	processor Processor
	cfg       config.ServerConfig
}

// APIResponse ответ с ошибкой
type APIResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

func New(processor Processor, cfg config.ServerConfig) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestID())
	router.MaxMultipartMemory = cfg.MaxUpload

	s := &Server{router: router, processor: processor, cfg: cfg}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	api := s.router.Group("/api")
	api.POST("/reorder", s.reorder)
}

// Handler для встраивания и тестов
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run запускает сервер и останавливает его при отмене ctx
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] слушаю %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[Server] остановка")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
	})
}

func (s *Server) reorder(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUpload)

	order, err := s.formInput(c, "order")
	if err != nil {
		s.fail(c, err)
		return
	}
	data, err := s.formInput(c, "data")
	if err != nil {
		s.fail(c, err)
		return
	}

	out, err := s.processor.Process(c.Request.Context(), order, data)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(downloadName))
	c.Header("X-Run-ID", out.Stats.RunID)
	c.Header("X-Group-Count", strconv.Itoa(out.Stats.Groups))
	c.Header("X-Row-Count", strconv.Itoa(out.Stats.DataRows))
	c.Data(http.StatusOK, xlsxMIME, out.Data)
}

// formInput читает файл формы; отсутствие файла означает MISSING_INPUT
func (s *Server) formInput(c *gin.Context, field string) (pipeline.Input, error) {
	header, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return pipeline.Input{}, errors.MissingInput(fmt.Sprintf("не выбран файл %q", field))
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return pipeline.Input{}, errors.InputTooLarge(s.cfg.MaxUpload, err)
	}
	if err != nil {
		return pipeline.Input{}, errors.WithCode(errors.CodeDecodeError, err, "ошибка чтения формы")
	}
	data, err := readPart(header)
	if err != nil {
		return pipeline.Input{}, errors.DecodeError(header.Filename, err)
	}
	return pipeline.Input{Name: header.Filename, Data: data}, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) fail(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeMissingInput, errors.CodeDecodeError:
		status = http.StatusBadRequest
	case errors.CodeInputTooLarge:
		status = http.StatusRequestEntityTooLarge
	case errors.CodeProcessingError:
		status = http.StatusUnprocessableEntity
	}

	log.Printf("[Server] %s: %s %v", c.GetString(requestIDHeader), code, err)
	c.JSON(status, APIResponse{Success: false, Code: code, Error: err.Error()})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func contentDisposition(name string) string {
	return fmt.Sprintf("attachment; filename=\"sorted.xlsx\"; filename*=UTF-8''%s", url.PathEscape(name))
}
